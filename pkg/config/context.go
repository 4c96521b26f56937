package config

import (
	"context"
)

// ContextKey is an alias used for storing values in context
type ContextKey string

const (
	// ResolvedCtxKey is the context key used to store the *Resolved instance
	ResolvedCtxKey ContextKey = "resolved_config"
)

// ContextWithResolved stores a resolved configuration in the context.
func ContextWithResolved(ctx context.Context, r *Resolved) context.Context {
	return context.WithValue(ctx, ResolvedCtxKey, r)
}

// FromContext returns the resolved configuration stored in ctx, or nil.
func FromContext(ctx context.Context) *Resolved {
	if ctx == nil {
		return nil
	}
	r, ok := ctx.Value(ResolvedCtxKey).(*Resolved)
	if !ok {
		return nil
	}
	return r
}
