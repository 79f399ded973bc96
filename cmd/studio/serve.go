package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/3-lines-studio/studio/internal/adapters/env"
	"github.com/3-lines-studio/studio/internal/adapters/fs"
	studiohttp "github.com/3-lines-studio/studio/internal/adapters/http"
	"github.com/3-lines-studio/studio/internal/adapters/store"
	"github.com/3-lines-studio/studio/internal/adapters/watch"
	"github.com/3-lines-studio/studio/internal/appconfig"
	"github.com/3-lines-studio/studio/internal/logx"
	"github.com/3-lines-studio/studio/internal/usecase"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	var addr string
	var document string
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live preview server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logx.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Preview.Addr = addr
			}
			if document != "" {
				cfg.Preview.Document = document
			}
			if noWatch {
				cfg.Preview.Watch = false
			}
			isDev := cfg.Dev || env.IsDev()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			osfs := fs.NewOSFileSystem()
			source := store.NewFileStore(cfg.Preview.Document, osfs)
			renders := usecase.NewRenderService(cfg.Render.RenderService())
			server := studiohttp.NewServer(source, usecase.NewPageService(renders), isDev)
			server.WithEdits(usecase.NewEditService(source, server))
			server.WithSessionTTL(time.Duration(cfg.Preview.SessionIdleMinutes) * time.Minute)
			if err := server.Reload(ctx); err != nil {
				return err
			}

			if cfg.Preview.Watch {
				watcher := watch.NewFileWatcher(source.Path(), func(ctx context.Context) error {
					renders.ClearCache()
					return server.Reload(ctx)
				})
				go func() {
					if err := watcher.Run(ctx); err != nil {
						logger.Warn("document watcher stopped", "err", err)
					}
				}()
			}

			httpServer := &http.Server{
				Addr:              cfg.Preview.Addr,
				Handler:           studiohttp.NewPublicHandler(osfs, cfg.Preview.Public, server.Handler()),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(stopCtx); err != nil {
					logger.Warn("preview server stop failed", "err", err)
				}
			}()

			logger.Info("preview server listening", "addr", cfg.Preview.Addr, "document", cfg.Preview.Document, "dev", isDev)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides preview.addr)")
	cmd.Flags().StringVarP(&document, "document", "d", "", "document file (overrides preview.document)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when the document changes")
	return cmd
}
