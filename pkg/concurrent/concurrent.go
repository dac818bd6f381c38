// Package concurrent runs a function over a slice with bounded parallelism.
package concurrent

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ForEach calls action for every item with at most limit calls in flight.
// It waits for all calls and returns the first error. A limit of zero or
// less means no bound.
func ForEach[T any](items []T, limit int, action func(T) error) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, item := range items {
		g.Go(func() error {
			return action(item)
		})
	}

	return g.Wait()
}

// ForEachMute is ForEach that ignores errors. It returns how many calls
// succeeded.
func ForEachMute[T any](items []T, limit int, action func(T) error) int {
	var succeeded atomic.Int64

	_ = ForEach(items, limit, func(item T) error {
		if action(item) == nil {
			succeeded.Add(1)
		}
		return nil
	})

	return int(succeeded.Load())
}
