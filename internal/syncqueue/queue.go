// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package syncqueue owns the serial queue of sync operations: at most one
// [syncoperation.Operation] executes at any moment, successive
// start-sync requests serialize behind it, and three observable channels
// publish progress, completion, and HTTP status errors to the rest of the
// application.
//
// The queue is also the provider arena: DataProviders register
// here, keyed by feature name, and every scheduled operation works on a
// snapshot of the registry taken at scheduling time.
package syncqueue

import (
	"context"
	"fmt"
	"sync"

	"github.com/duckduckgo/sync-engine-go/dataprovider"
	"github.com/duckduckgo/sync-engine-go/internal/httpclient"
	"github.com/duckduckgo/sync-engine-go/internal/logger"
	"github.com/duckduckgo/sync-engine-go/internal/requestmaker"
	"github.com/duckduckgo/sync-engine-go/internal/securestore"
	"github.com/duckduckgo/sync-engine-go/internal/syncoperation"
)

//go:generate mockgen -source=queue.go -destination=../mock/syncqueue_mock.go -package=mock

// Queue schedules and serializes sync operations.
type Queue interface {
	// RegisterProvider adds dp to the provider arena. Registering two
	// providers for the same feature is a caller bug and returns an error.
	RegisterProvider(dp dataprovider.Provider) error

	// PrepareDataModelsForSync walks the arena and first-sync-initializes
	// every provider that is not registered with the engine yet: calls
	// PrepareForFirstSync, then RegisterFeature. New providers are marked
	// needing a remote data fetch when needsRemoteDataFetch is set or when
	// other providers are already registered (a mixed arena means this
	// device has to catch up on the new features).
	PrepareDataModelsForSync(ctx context.Context, needsRemoteDataFetch bool) error

	// SetDataSyncingEnabled gates StartSync. Disabling cancels the running
	// operation and drops everything still queued.
	SetDataSyncingEnabled(enabled bool)

	// StartSync schedules exactly one sync operation. No-op while disabled.
	StartSync()

	// CancelOngoingAndSuspend cancels the running operation (if any) and
	// stops dispatching queued ones until Resume.
	CancelOngoingAndSuspend()

	// Resume re-enables dispatch after CancelOngoingAndSuspend.
	Resume()

	// IsSyncInProgress emits true when an operation starts executing and
	// false when it finishes. Starts false; never emits duplicates.
	IsSyncInProgress() <-chan bool

	// SyncDidFinish emits one value per completed operation: nil on
	// success, the operation's error otherwise. Cancellation counts as
	// success.
	SyncDidFinish() <-chan error

	// SyncHTTPRequestError is the dedicated channel for
	// *httpclient.StatusCodeError values encountered mid-operation,
	// published in addition to the regular SyncDidFinish event.
	SyncHTTPRequestError() <-chan error

	// Run drains the queue until ctx is cancelled.
	Run(ctx context.Context) error
}

// Deps carries the collaborators handed to every scheduled operation.
type Deps struct {
	Store   securestore.SecureStore
	Crypter dataprovider.Crypter
	Maker   *requestmaker.Maker
	HTTP    httpclient.Client
	Logger  *logger.Logger
}

type queue struct {
	deps Deps

	mu        sync.Mutex
	cond      *sync.Cond
	providers []dataprovider.Provider
	pending   []*syncoperation.Operation
	current   *syncoperation.Operation
	suspended bool
	enabled   bool

	progressMu sync.Mutex
	inProgress bool
	progressCh chan bool
	finishCh   chan error
	httpErrCh  chan error
}

// New constructs an enabled, empty [Queue]. Nothing executes until Run is
// called.
func New(deps Deps) Queue {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	q := &queue{
		deps:       deps,
		enabled:    true,
		progressCh: make(chan bool, 4),
		finishCh:   make(chan error, 16),
		httpErrCh:  make(chan error, 16),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// RegisterProvider implements [Queue].
func (q *queue) RegisterProvider(dp dataprovider.Provider) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	name := dp.Feature().Name
	for _, existing := range q.providers {
		if existing.Feature().Name == name {
			return fmt.Errorf("syncqueue: provider for feature %q already registered", name)
		}
	}
	q.providers = append(q.providers, dp)
	return nil
}

// PrepareDataModelsForSync implements [Queue].
func (q *queue) PrepareDataModelsForSync(ctx context.Context, needsRemoteDataFetch bool) error {
	providers := q.snapshotProviders()

	var unregistered []dataprovider.Provider
	anyRegistered := false
	for _, dp := range providers {
		state, err := dp.FeatureSyncSetupState(ctx)
		if err != nil {
			return fmt.Errorf("syncqueue: read setup state of %q: %w", dp.Feature().Name, err)
		}
		if state == dataprovider.SetupStateUnknown {
			unregistered = append(unregistered, dp)
		} else {
			anyRegistered = true
		}
	}

	state := dataprovider.SetupStateReadyToSync
	if needsRemoteDataFetch || anyRegistered {
		state = dataprovider.SetupStateNeedsRemoteDataFetch
	}

	for _, dp := range unregistered {
		if err := dp.PrepareForFirstSync(ctx); err != nil {
			return fmt.Errorf("syncqueue: prepare %q for first sync: %w", dp.Feature().Name, err)
		}
		if err := dp.RegisterFeature(ctx, state); err != nil {
			return fmt.Errorf("syncqueue: register feature %q: %w", dp.Feature().Name, err)
		}
		q.deps.Logger.Debug().
			Str("feature", dp.Feature().Name).
			Str("state", state.String()).
			Msg("registered feature for sync")
	}
	return nil
}

func (q *queue) snapshotProviders() []dataprovider.Provider {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]dataprovider.Provider(nil), q.providers...)
}

// SetDataSyncingEnabled implements [Queue].
func (q *queue) SetDataSyncingEnabled(enabled bool) {
	q.mu.Lock()
	q.enabled = enabled

	if !enabled {
		if q.current != nil {
			q.current.Cancel()
		}
		for _, op := range q.pending {
			op.Cancel()
		}
		q.pending = nil
	}
	q.mu.Unlock()
	q.cond.Broadcast()
}

// StartSync implements [Queue].
func (q *queue) StartSync() {
	q.mu.Lock()
	if !q.enabled {
		q.mu.Unlock()
		return
	}

	op := syncoperation.New(syncoperation.Deps{
		Store:           q.deps.Store,
		Crypter:         q.deps.Crypter,
		Providers:       append([]dataprovider.Provider(nil), q.providers...),
		Maker:           q.deps.Maker,
		HTTP:            q.deps.HTTP,
		NotifyHTTPError: q.publishHTTPError,
		Logger:          q.deps.Logger,
	})
	q.pending = append(q.pending, op)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// CancelOngoingAndSuspend implements [Queue].
func (q *queue) CancelOngoingAndSuspend() {
	q.mu.Lock()
	q.suspended = true
	if q.current != nil {
		q.current.Cancel()
	}
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Resume implements [Queue].
func (q *queue) Resume() {
	q.mu.Lock()
	q.suspended = false
	q.mu.Unlock()
	q.cond.Broadcast()
}

// IsSyncInProgress implements [Queue].
func (q *queue) IsSyncInProgress() <-chan bool { return q.progressCh }

// SyncDidFinish implements [Queue].
func (q *queue) SyncDidFinish() <-chan error { return q.finishCh }

// SyncHTTPRequestError implements [Queue].
func (q *queue) SyncHTTPRequestError() <-chan error { return q.httpErrCh }

// Run implements [Queue]. It dispatches pending operations one at a time;
// suspension pauses dispatch without dropping what is queued.
func (q *queue) Run(ctx context.Context) error {
	// Wake the dispatch loop when ctx dies, otherwise cond.Wait would block
	// forever on an idle queue.
	stop := context.AfterFunc(ctx, func() { q.cond.Broadcast() })
	defer stop()

	for {
		op, err := q.next(ctx)
		if err != nil {
			return err
		}

		q.setInProgress(true)
		opErr := op.Run(ctx)
		q.setInProgress(false)

		q.mu.Lock()
		q.current = nil
		q.mu.Unlock()

		q.publishFinish(opErr)
	}
}

// next blocks until an operation can be dispatched or ctx is cancelled.
func (q *queue) next(ctx context.Context) (*syncoperation.Operation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for (len(q.pending) == 0 || q.suspended) && ctx.Err() == nil {
		q.cond.Wait()
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	op := q.pending[0]
	q.pending = q.pending[1:]
	q.current = op
	return op, nil
}

func (q *queue) setInProgress(inProgress bool) {
	q.progressMu.Lock()
	defer q.progressMu.Unlock()

	if q.inProgress == inProgress {
		return
	}
	q.inProgress = inProgress

	select {
	case q.progressCh <- inProgress:
	default:
		q.deps.Logger.Warn().Bool("in_progress", inProgress).Msg("dropped is-sync-in-progress event, subscriber too slow")
	}
}

func (q *queue) publishFinish(err error) {
	select {
	case q.finishCh <- err:
	default:
		q.deps.Logger.Warn().Err(err).Msg("dropped sync-did-finish event, subscriber too slow")
	}
}

func (q *queue) publishHTTPError(err error) {
	select {
	case q.httpErrCh <- err:
	default:
		q.deps.Logger.Warn().Err(err).Msg("dropped sync-http-request-error event, subscriber too slow")
	}
}
