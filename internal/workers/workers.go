// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers aggregates the engine's background loops so a caller can
// start and stop them as one unit.
package workers

import (
	"context"
	"errors"
	"sync"
)

// Workers holds a collection of [Worker] instances and runs them together.
type Workers struct {
	workers []Worker
}

// New constructs a [Workers] aggregate over the given workers.
func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run starts every registered worker in its own goroutine and blocks until
// all of them have returned — which they do when ctx is cancelled. The
// returned error joins every non-context worker failure.
func (w *Workers) Run(ctx context.Context) error {
	errs := make([]error, len(w.workers))
	var wg sync.WaitGroup

	for i := range w.workers {
		worker := w.workers[i]
		idx := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errs[idx] = err
			}
		}()
	}

	wg.Wait()
	return errors.Join(errs...)
}
