package scraper

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Deduper collapses concurrent fetches of the same key into one call.
type Deduper struct {
	group singleflight.Group
}

// NewDeduper creates an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{}
}

// Do runs fn once per in-flight key; concurrent callers share its result.
// shared reports whether the result was handed to more than one caller.
func (d *Deduper) Do(ctx context.Context, key string, fn func() (any, error)) (v any, shared bool, err error) {
	ch := d.group.DoChan(key, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fn()
	})

	select {
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Forget lets the next Do for key start a fresh call.
func (d *Deduper) Forget(key string) {
	d.group.Forget(key)
}
