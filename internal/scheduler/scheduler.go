// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package scheduler turns the engine's raw sync triggers (data changed, app
// lifecycle event, explicit request) into a throttled start-sync signal, and
// relays cancel/resume requests to the sync queue.
//
// All trigger handling and signal emission happens on a single goroutine —
// the one running [Scheduler.Run] — so implementations of downstream
// consumers never observe two signals concurrently. Trigger methods may be
// called from any goroutine; they only perform a non-blocking channel send.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/duckduckgo/sync-engine-go/internal/logger"
)

//go:generate mockgen -source=scheduler.go -destination=../mock/scheduler_mock.go -package=mock

// Scheduler coalesces sync triggers into throttled start-sync signals.
type Scheduler interface {
	// NotifyDataChanged reports that local data changed and a sync should
	// happen soon. Debounced to one start-sync per immediate window.
	NotifyDataChanged()

	// NotifyAppLifecycleEvent reports an app foreground/background style
	// event. Debounced to one start-sync per lifecycle window (600s by
	// default, 60s in debug environments).
	NotifyAppLifecycleEvent()

	// RequestSyncImmediately asks for a sync as soon as the immediate window
	// allows. Shares the immediate debounce window with NotifyDataChanged.
	RequestSyncImmediately()

	// SetEnabled gates all three trigger inputs. When disabled, triggers are
	// silently dropped and no start-sync signals are emitted.
	SetEnabled(enabled bool)

	// CancelSync relays a cancel request to the CancelSyncSignal channel.
	CancelSync()

	// ResumeSync relays a resume request to the ResumeSyncSignal channel.
	ResumeSync()

	// StartSyncSignal emits one value per throttled start-sync decision.
	StartSyncSignal() <-chan struct{}

	// CancelSyncSignal emits one value per CancelSync call.
	CancelSyncSignal() <-chan struct{}

	// ResumeSyncSignal emits one value per ResumeSync call.
	ResumeSyncSignal() <-chan struct{}

	// Run drives the scheduler loop until ctx is cancelled. Must be running
	// for any trigger to produce a signal.
	Run(ctx context.Context) error
}

type scheduler struct {
	immediateWindow time.Duration
	lifecycleWindow time.Duration
	enabled         atomic.Bool
	logger          *logger.Logger

	immediateIn chan struct{}
	lifecycleIn chan struct{}
	cancelIn    chan struct{}
	resumeIn    chan struct{}

	startSync  chan struct{}
	cancelSync chan struct{}
	resumeSync chan struct{}
}

// New constructs a [Scheduler] with the given debounce windows
// (SYNC_IMMEDIATE_DEBOUNCE_SEC, SYNC_LIFECYCLE_DEBOUNCE_SEC). The scheduler
// starts enabled; nothing is emitted until Run is called.
func New(immediateWindow, lifecycleWindow time.Duration, log *logger.Logger) Scheduler {
	if log == nil {
		log = logger.Nop()
	}

	s := &scheduler{
		immediateWindow: immediateWindow,
		lifecycleWindow: lifecycleWindow,
		logger:          log,
		immediateIn:     make(chan struct{}, 1),
		lifecycleIn:     make(chan struct{}, 1),
		cancelIn:        make(chan struct{}, 1),
		resumeIn:        make(chan struct{}, 1),
		startSync:       make(chan struct{}, 1),
		cancelSync:      make(chan struct{}, 1),
		resumeSync:      make(chan struct{}, 1),
	}
	s.enabled.Store(true)
	return s
}

// NotifyDataChanged implements [Scheduler].
func (s *scheduler) NotifyDataChanged() {
	if !s.enabled.Load() {
		return
	}
	nudge(s.immediateIn)
}

// RequestSyncImmediately implements [Scheduler].
func (s *scheduler) RequestSyncImmediately() {
	if !s.enabled.Load() {
		return
	}
	nudge(s.immediateIn)
}

// NotifyAppLifecycleEvent implements [Scheduler].
func (s *scheduler) NotifyAppLifecycleEvent() {
	if !s.enabled.Load() {
		return
	}
	nudge(s.lifecycleIn)
}

// SetEnabled implements [Scheduler].
func (s *scheduler) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
}

// CancelSync implements [Scheduler].
func (s *scheduler) CancelSync() {
	nudge(s.cancelIn)
}

// ResumeSync implements [Scheduler].
func (s *scheduler) ResumeSync() {
	nudge(s.resumeIn)
}

// StartSyncSignal implements [Scheduler].
func (s *scheduler) StartSyncSignal() <-chan struct{} { return s.startSync }

// CancelSyncSignal implements [Scheduler].
func (s *scheduler) CancelSyncSignal() <-chan struct{} { return s.cancelSync }

// ResumeSyncSignal implements [Scheduler].
func (s *scheduler) ResumeSyncSignal() <-chan struct{} { return s.resumeSync }

// Run implements [Scheduler]. Each trigger class keeps one pending timer:
// the first trigger of a burst arms it, further triggers within the window
// coalesce into the same firing, and the firing emits exactly one start-sync
// signal. This is "emit the latest within the window" throttling, not
// periodic sampling — an idle scheduler emits nothing.
func (s *scheduler) Run(ctx context.Context) error {
	immediateTimer := newStoppedTimer()
	lifecycleTimer := newStoppedTimer()
	defer immediateTimer.Stop()
	defer lifecycleTimer.Stop()

	var immediatePending, lifecyclePending bool

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.immediateIn:
			if !immediatePending {
				immediatePending = true
				immediateTimer.Reset(s.immediateWindow)
			}

		case <-s.lifecycleIn:
			if !lifecyclePending {
				lifecyclePending = true
				lifecycleTimer.Reset(s.lifecycleWindow)
			}

		case <-immediateTimer.C:
			immediatePending = false
			s.emitStartSync("immediate")

		case <-lifecycleTimer.C:
			lifecyclePending = false
			s.emitStartSync("lifecycle")

		case <-s.cancelIn:
			nudge(s.cancelSync)

		case <-s.resumeIn:
			nudge(s.resumeSync)
		}
	}
}

func (s *scheduler) emitStartSync(trigger string) {
	if !s.enabled.Load() {
		return
	}

	s.logger.Debug().Str("trigger", trigger).Msg("scheduler emitting start-sync")
	nudge(s.startSync)
}

// nudge performs a non-blocking, coalescing send: a signal already waiting
// in the 1-buffered channel absorbs the new one.
func nudge(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		<-t.C
	}
	return t
}
