// Package studio turns free-text component definitions into rendered node
// trees and editable property schemas, with no build step in between.
package studio

import (
	"context"
	"embed"
	"net/http"
	"time"

	"github.com/3-lines-studio/studio/internal/adapters/fs"
	studiohttp "github.com/3-lines-studio/studio/internal/adapters/http"
	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/preview"
	"github.com/3-lines-studio/studio/internal/props"
	"github.com/3-lines-studio/studio/internal/style"
	"github.com/3-lines-studio/studio/internal/usecase"
)

type (
	ComponentDefinition = core.ComponentDefinition
	PageDefinition      = core.PageDefinition
	Document            = core.Document
	PropertySchema      = core.PropertySchema
	PropertyRecord      = core.PropertyRecord
	StyleMap            = core.StyleMap
	RenderError         = core.RenderError

	StyleResolution = style.Resolution
	RenderResult    = usecase.RenderResult
	RenderOption    = usecase.RenderOption
	RenderConfig    = usecase.RenderConfig
	PageRender      = usecase.PageRender
	DocumentSource  = usecase.DocumentSource
	Session         = preview.Session
)

var ErrNoPage = core.ErrNoPage

// Render options, re-exported for callers outside this module.
var (
	WithNavigate  = usecase.WithNavigate
	WithStepLimit = usecase.WithStepLimit
	WithTimeout   = usecase.WithTimeout
	WithoutCache  = usecase.WithoutCache
)

type Option func(*usecase.RenderConfig)

func WithRenderConfig(cfg RenderConfig) Option {
	return func(c *usecase.RenderConfig) { *c = cfg }
}

func WithCache(entries int, ttl time.Duration) Option {
	return func(c *usecase.RenderConfig) {
		c.CacheEntries = entries
		c.CacheTTL = ttl
	}
}

func WithDefaultStepLimit(n int) Option {
	return func(c *usecase.RenderConfig) { c.StepLimit = n }
}

type Engine struct {
	renders *usecase.RenderService
	pages   *usecase.PageService
}

func New(opts ...Option) *Engine {
	cfg := usecase.DefaultRenderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	renders := usecase.NewRenderService(cfg)
	return &Engine{
		renders: renders,
		pages:   usecase.NewPageService(renders),
	}
}

// RenderComponent renders def with overrides merged over its properties. It
// always returns a tree; failures are reported in the result, not returned.
func (e *Engine) RenderComponent(ctx context.Context, def ComponentDefinition, overrides map[string]any, opts ...RenderOption) RenderResult {
	return e.renders.RenderComponent(ctx, def, overrides, opts...)
}

func (e *Engine) ExtractPropertySchema(source string) PropertySchema {
	return props.Extract(source)
}

func (e *Engine) ResolveStyleTokens(styles StyleMap) StyleResolution {
	return style.Resolve(styles)
}

func (e *Engine) ResolvePage(doc Document, path string) (PageDefinition, error) {
	return core.ResolvePage(doc, path)
}

// RenderPage resolves path and renders every component of the page, each in
// its own failure boundary.
func (e *Engine) RenderPage(ctx context.Context, doc Document, path string, opts ...RenderOption) (PageRender, error) {
	return e.pages.AssemblePage(ctx, doc, path, opts...)
}

// NewSession starts an interactive preview of doc.
func (e *Engine) NewSession(doc Document) *Session {
	return preview.NewSession(e.pages, doc)
}

// ClearCache drops every cached component render.
func (e *Engine) ClearCache() {
	e.renders.ClearCache()
}

// PreviewHandler serves live previews of the document held by source. Edits
// posted to it are saved back through source.
func (e *Engine) PreviewHandler(ctx context.Context, source DocumentSource, isDev bool) (http.Handler, error) {
	server := studiohttp.NewServer(source, e.pages, isDev)
	server.WithEdits(usecase.NewEditService(source, server))
	if err := server.Reload(ctx); err != nil {
		return nil, err
	}
	return server.Handler(), nil
}

// PublicAssets serves files under root in assets ahead of next, for hosts
// that ship the project's public directory inside their binary.
func PublicAssets(assets embed.FS, root string, next http.Handler) http.Handler {
	return studiohttp.NewPublicHandler(fs.NewEmbedFileSystem(assets), root, next)
}
