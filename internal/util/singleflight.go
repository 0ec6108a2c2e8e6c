package util

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Group suppresses duplicate concurrent loads of the same key. It adds
// context-aware waiting on top of x/sync/singleflight.
type Group struct {
	g singleflight.Group
}

// Do executes fn once per key among concurrent callers. shared reports whether
// the result was handed to more than one caller.
func (g *Group) Do(key string, fn func() (interface{}, error)) (v interface{}, err error, shared bool) {
	return g.g.Do(key, fn)
}

// DoWithContext is Do, except the caller stops waiting when ctx ends. The
// load itself keeps running for the other callers and is not cancelled.
func (g *Group) DoWithContext(ctx context.Context, key string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error, bool) {
	loadCtx := context.WithoutCancel(ctx)
	ch := g.g.DoChan(key, func() (interface{}, error) {
		return fn(loadCtx)
	})

	select {
	case r := <-ch:
		return r.Val, r.Err, r.Shared
	case <-ctx.Done():
		return nil, ctx.Err(), false
	}
}

// DoWithTimeout is a convenience method that adds timeout support
func (g *Group) DoWithTimeout(key string, timeout time.Duration, fn func() (interface{}, error)) (interface{}, error, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return g.DoWithContext(ctx, key, func(context.Context) (interface{}, error) {
		return fn()
	})
}

// Forget drops key so the next call runs fn again instead of joining an
// earlier in-flight call.
func (g *Group) Forget(key string) {
	g.g.Forget(key)
}
