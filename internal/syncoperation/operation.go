// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package syncoperation implements one end-to-end sync pass: per registered
// feature, collect local changes, build and execute the HTTP
// request, decode the response, and hand the result back to the feature's
// DataProvider. Features run concurrently and fail independently; the
// operation aggregates their failures into one [OperationError].
package syncoperation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/duckduckgo/sync-engine-go/dataprovider"
	"github.com/duckduckgo/sync-engine-go/internal/httpclient"
	"github.com/duckduckgo/sync-engine-go/internal/logger"
	"github.com/duckduckgo/sync-engine-go/internal/requestmaker"
	"github.com/duckduckgo/sync-engine-go/internal/securestore"
	"github.com/duckduckgo/sync-engine-go/models"
)

// State is the lifecycle stage of an [Operation]: pending → executing →
// finished, with cancellation possible from either of the first two.
type State int

const (
	StatePending State = iota
	StateExecuting
	StateFinished
)

// Deps carries everything an [Operation] needs. All fields except
// NotifyHTTPError and Logger are required.
type Deps struct {
	Store     securestore.SecureStore
	Crypter   dataprovider.Crypter
	Providers []dataprovider.Provider
	Maker     *requestmaker.Maker
	HTTP      httpclient.Client

	// NotifyHTTPError, when set, receives every *httpclient.StatusCodeError
	// the operation encounters, in addition to the error being wrapped into
	// the operation result. The sync queue forwards it to its dedicated
	// HTTP-error publisher.
	NotifyHTTPError func(error)

	Logger *logger.Logger
}

// Operation is one scheduled sync pass. Create with [New], run once with
// [Operation.Run]; a cancelled or finished Operation is never reused.
type Operation struct {
	deps Deps

	mu        sync.Mutex
	state     State
	cancelled bool
	cancel    context.CancelFunc
}

// New constructs a pending [Operation].
func New(deps Deps) *Operation {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	return &Operation{deps: deps}
}

// State reports the operation's current lifecycle stage.
func (o *Operation) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Cancel requests cooperative cancellation. Valid from pending or executing;
// a no-op once the operation has finished. Any in-flight HTTP call is
// interrupted and every per-feature task stops at its next checkpoint
// without writing partial results to its provider.
func (o *Operation) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateFinished {
		return
	}
	o.cancelled = true
	if o.cancel != nil {
		o.cancel()
	}
}

// IsCancelled reports whether Cancel has been called.
func (o *Operation) IsCancelled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

// Run executes the operation:
//
//  1. Load the account; absent or inactive accounts finish with success.
//  2. Run a fetch-only pass over every provider still pending first sync.
//  3. Run a regular pass over all providers.
//  4. Aggregate per-feature errors; on full success, flip an
//     add-new-device account to active.
//
// Cancellation finishes the operation with success — it is not an error at
// the operation level.
func (o *Operation) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.mu.Lock()
	if o.cancelled {
		o.state = StateFinished
		o.mu.Unlock()
		return nil
	}
	o.state = StateExecuting
	o.cancel = cancel
	o.mu.Unlock()

	err := o.run(runCtx)

	o.mu.Lock()
	o.state = StateFinished
	o.mu.Unlock()

	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (o *Operation) run(ctx context.Context) error {
	account, err := o.deps.Store.LoadAccount(ctx)
	if errors.Is(err, securestore.ErrNoAccount) {
		o.deps.Logger.Debug().Msg("no account present, nothing to sync")
		return nil
	}
	if err != nil {
		return err
	}
	if account.State == models.StateInactive {
		o.deps.Logger.Debug().Msg("account inactive, nothing to sync")
		return nil
	}
	if account.Token == "" {
		return ErrNoToken
	}

	var perFeature []*FeatureError

	pendingFirstSync, stateErrs := o.providersPendingFirstSync(ctx)
	perFeature = append(perFeature, stateErrs...)

	if len(pendingFirstSync) > 0 {
		if err := o.checkCancelled(ctx); err != nil {
			return err
		}
		perFeature = append(perFeature, o.syncPhase(ctx, account.Token, pendingFirstSync, true)...)
	}

	if err := o.checkCancelled(ctx); err != nil {
		return err
	}
	perFeature = append(perFeature, o.syncPhase(ctx, account.Token, o.deps.Providers, false)...)

	if err := o.checkCancelled(ctx); err != nil {
		return err
	}
	if len(perFeature) > 0 {
		return &OperationError{PerFeature: perFeature}
	}

	if account.State == models.StateAddingNewDevice {
		account.State = models.StateActive
		if err := o.deps.Store.SaveAccount(ctx, *account); err != nil {
			return err
		}
	}
	return nil
}

func (o *Operation) providersPendingFirstSync(ctx context.Context) ([]dataprovider.Provider, []*FeatureError) {
	var pending []dataprovider.Provider
	var errs []*FeatureError

	for _, dp := range o.deps.Providers {
		state, err := dp.FeatureSyncSetupState(ctx)
		if err != nil {
			dp.HandleSyncError(ctx, err)
			errs = append(errs, &FeatureError{Feature: dp.Feature().Name, Err: err})
			continue
		}
		if state == dataprovider.SetupStateNeedsRemoteDataFetch {
			pending = append(pending, dp)
		}
	}
	return pending, errs
}

// syncPhase runs one pass over providers, each in its own goroutine.
// Failures are isolated per feature; cancellations are dropped silently.
func (o *Operation) syncPhase(ctx context.Context, token string, providers []dataprovider.Provider, fetchOnly bool) []*FeatureError {
	results := make(chan *FeatureError, len(providers))
	var wg sync.WaitGroup

	for i := range providers {
		dp := providers[i]
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := o.syncFeature(ctx, token, dp, fetchOnly)
			if err == nil || isCancellation(err) {
				return
			}
			dp.HandleSyncError(ctx, err)
			results <- &FeatureError{Feature: dp.Feature().Name, Err: err}
		}()
	}

	wg.Wait()
	close(results)

	var errs []*FeatureError
	for fe := range results {
		errs = append(errs, fe)
	}
	return errs
}

// syncFeature is the per-provider task: collect, build,
// execute, decode, hand over. Cancellation is checked around every
// suspension point (collect, HTTP, hand-over).
func (o *Operation) syncFeature(ctx context.Context, token string, dp dataprovider.Provider, fetchOnly bool) error {
	feature := dp.Feature().Name

	prevTimestamp, err := dp.LastSyncTimestamp(ctx)
	if err != nil {
		return err
	}

	var sent []dataprovider.Syncable
	if !fetchOnly {
		sent, err = dp.FetchChangedObjects(ctx, o.deps.Crypter)
		if err != nil {
			return err
		}
	}
	if err := o.checkCancelled(ctx); err != nil {
		return err
	}

	clientTimestamp := time.Now().Unix()

	resp, err := o.execute(ctx, token, feature, prevTimestamp, sent, dp)
	if err := o.checkCancelled(ctx); err != nil {
		return err
	}
	if err != nil {
		return err
	}

	received := []dataprovider.Syncable{}
	var serverTimestamp *string

	switch {
	case resp.NotModified || resp.StatusCode == http.StatusNoContent:
		// Empty received list, nil server timestamp; any body is ignored.
	case resp.StatusCode == http.StatusOK:
		result, err := requestmaker.DecodeResponse(resp.Body, feature)
		if err != nil {
			return err
		}
		received = result.Received
		ts := result.SyncTimestamp
		serverTimestamp = &ts
	}

	if err := o.checkCancelled(ctx); err != nil {
		return err
	}

	if fetchOnly {
		return dp.HandleInitialSyncResponse(ctx, received, clientTimestamp, serverTimestamp, o.deps.Crypter)
	}
	return dp.HandleSyncResponse(ctx, received, clientTimestamp, serverTimestamp, o.deps.Crypter)
}

// execute builds and sends the feature's HTTP request: GET when there is
// nothing to send, PATCH (gzip first, uncompressed on gzip failure — one
// retry only) otherwise.
func (o *Operation) execute(ctx context.Context, token, feature, prevTimestamp string, sent []dataprovider.Syncable, dp dataprovider.Provider) (*httpclient.Response, error) {
	if len(sent) == 0 {
		req, err := o.deps.Maker.MakeGetRequest(token, []string{feature})
		if err != nil {
			return nil, err
		}
		resp, err := o.deps.HTTP.Execute(ctx, req)
		return resp, o.mapHTTPError(ctx, err)
	}

	batches := map[string]requestmaker.Batch{
		feature: {Updates: sent, ModifiedSince: prevTimestamp},
	}

	req, err := o.deps.Maker.MakePatchRequest(token, batches, true)
	var compErr *requestmaker.CompressionError
	if errors.As(err, &compErr) {
		dp.HandleSyncError(ctx, compErr)
		req, err = o.deps.Maker.MakePatchRequest(token, batches, false)
	}
	if err != nil {
		return nil, err
	}

	resp, err := o.deps.HTTP.Execute(ctx, req)

	// A 400 on a gzipped PATCH means the server could not take the
	// compressed body; fall back to the uncompressed form, once.
	var statusErr *httpclient.StatusCodeError
	if req.Headers["Content-Encoding"] == "gzip" && errors.As(err, &statusErr) && statusErr.Code == http.StatusBadRequest {
		fallbackErr := &requestmaker.CompressionError{Code: statusErr.Code, Err: err}
		dp.HandleSyncError(ctx, fallbackErr)

		if cancelErr := o.checkCancelled(ctx); cancelErr != nil {
			return nil, cancelErr
		}

		req, err = o.deps.Maker.MakePatchRequest(token, batches, false)
		if err != nil {
			return nil, err
		}
		resp, err = o.deps.HTTP.Execute(ctx, req)
	}

	return resp, o.mapHTTPError(ctx, err)
}

// mapHTTPError applies the status-code policy: every status error
// is forwarded to the dedicated HTTP-error channel, and a 403 removes the
// local account before the operation result surfaces.
func (o *Operation) mapHTTPError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var statusErr *httpclient.StatusCodeError
	if !errors.As(err, &statusErr) {
		return err
	}

	if o.deps.NotifyHTTPError != nil {
		o.deps.NotifyHTTPError(statusErr)
	}

	if statusErr.Code == http.StatusForbidden {
		o.deps.Logger.Warn().Int("status_code", statusErr.Code).Msg("server revoked access, removing local account")
		if removeErr := o.deps.Store.RemoveAccount(ctx); removeErr != nil {
			o.deps.Logger.Err(removeErr).Msg("failed to remove account after 403")
		}
		return fmt.Errorf("%w: %w", ErrAccountRemoved, err)
	}

	return err
}

func (o *Operation) checkCancelled(ctx context.Context) error {
	if o.IsCancelled() {
		return ErrCancelled
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
