// Package requestctx carries the identifier of the in-flight request.
//
// Go has no goroutine-local storage, so the identifier travels in the request's
// context.Context. Every request owns its own context chain, which gives each
// concurrently running request an independent copy: a handler running in one
// goroutine can never observe the identifier set by another.
//
//	ctx = requestctx.With(ctx, "4b2f…")
//	id := requestctx.ID(ctx) // "4b2f…"
//	ctx = requestctx.Clear(ctx)
//	requestctx.ID(ctx) // ""
package requestctx

import (
	"context"
	"net/http"
	"strings"
)

// DefaultHeader is the request header consulted by FromRequest when none is given.
const DefaultHeader = "X-Request-Id"

type contextKey struct{}

// With returns a copy of ctx carrying id as the request identifier.
func With(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// ID returns the request identifier carried by ctx, or "" when none is set.
func ID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Clear returns a copy of ctx whose request identifier is empty.
// It is safe to call any number of times, with or without a prior With.
func Clear(ctx context.Context) context.Context {
	return With(ctx, "")
}

// FromRequest reads the request identifier from the given header of r.
// An empty header name falls back to DefaultHeader.
func FromRequest(r *http.Request, header string) string {
	if r == nil {
		return ""
	}
	if header == "" {
		header = DefaultHeader
	}
	return strings.TrimSpace(r.Header.Get(header))
}
