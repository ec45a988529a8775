// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import "context"

// Worker is one long-running background loop of the sync engine: the
// scheduler's trigger loop, the queue's dispatch loop, the signal pump
// between them. A Worker runs until its context is cancelled.
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerFunc adapts a plain function to the [Worker] interface.
type WorkerFunc func(ctx context.Context) error

// Run implements [Worker].
func (f WorkerFunc) Run(ctx context.Context) error { return f(ctx) }
