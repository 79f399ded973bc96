// Package logx carries the pslog logger through contexts and adds the
// studio's common fields.
package logx

import (
	"context"

	"pkt.systems/pslog"
)

type contextKey int

const (
	pageKey contextKey = iota
	componentKey
	sessionKey
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithPage annotates the logger with the page id unless the context already
// carries it.
func WithPage(ctx context.Context, pageID string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if pageID != "" {
		if current, ok := ctx.Value(pageKey).(string); ok && current == pageID {
			return log
		}
		log = log.With("page", pageID)
	}
	return log
}

// WithComponent annotates the logger with component id and type.
func WithComponent(ctx context.Context, componentID, componentType string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if componentID != "" {
		if current, ok := ctx.Value(componentKey).(string); !ok || current != componentID {
			log = log.With("component", componentID)
		}
	}
	if componentType != "" {
		log = log.With("component_type", componentType)
	}
	return log
}

// WithSession annotates the logger with a preview session id when available.
func WithSession(log pslog.Logger, sessionID string) pslog.Logger {
	if sessionID != "" {
		log = log.With("session", sessionID)
	}
	return log
}

// ContextWithPage attaches the logger and page marker to the context.
func ContextWithPage(ctx context.Context, log pslog.Logger, pageID string) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	if pageID == "" {
		return ctx
	}
	return context.WithValue(ctx, pageKey, pageID)
}

// ContextWithSession attaches a session-annotated logger once per context.
func ContextWithSession(ctx context.Context, sessionID string) context.Context {
	if sessionID == "" {
		return ctx
	}
	if current, ok := ctx.Value(sessionKey).(string); ok && current == sessionID {
		return ctx
	}
	ctx = pslog.ContextWithLogger(ctx, WithSession(pslog.Ctx(ctx), sessionID))
	return context.WithValue(ctx, sessionKey, sessionID)
}

// ContextWithComponent attaches the logger and component marker to the context.
func ContextWithComponent(ctx context.Context, log pslog.Logger, componentID string) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	if componentID == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, componentID)
}

// CopyContextFields copies the page, component and session markers and the logger from src to dst.
func CopyContextFields(dst context.Context, src context.Context) context.Context {
	if src == nil {
		return dst
	}
	dst = pslog.ContextWithLogger(dst, pslog.Ctx(src))
	if page, ok := src.Value(pageKey).(string); ok && page != "" {
		dst = context.WithValue(dst, pageKey, page)
	}
	if comp, ok := src.Value(componentKey).(string); ok && comp != "" {
		dst = context.WithValue(dst, componentKey, comp)
	}
	if session, ok := src.Value(sessionKey).(string); ok && session != "" {
		dst = context.WithValue(dst, sessionKey, session)
	}
	return dst
}
