// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package engine assembles the sync engine out of its parts — SecureStore,
// CryptoProvider, AccountManager, Scheduler, SyncQueue, connect flows — and
// runs their background loops as one unit. It is the composition root an
// application embeds; everything underneath stays independently testable.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/duckduckgo/sync-engine-go/dataprovider"
	"github.com/duckduckgo/sync-engine-go/internal/account"
	"github.com/duckduckgo/sync-engine-go/internal/config"
	"github.com/duckduckgo/sync-engine-go/internal/connect"
	"github.com/duckduckgo/sync-engine-go/internal/crypto"
	"github.com/duckduckgo/sync-engine-go/internal/endpoints"
	"github.com/duckduckgo/sync-engine-go/internal/httpclient"
	"github.com/duckduckgo/sync-engine-go/internal/logger"
	"github.com/duckduckgo/sync-engine-go/internal/requestmaker"
	"github.com/duckduckgo/sync-engine-go/internal/scheduler"
	"github.com/duckduckgo/sync-engine-go/internal/securestore"
	"github.com/duckduckgo/sync-engine-go/internal/syncqueue"
	"github.com/duckduckgo/sync-engine-go/internal/utils"
	"github.com/duckduckgo/sync-engine-go/internal/workers"
	"github.com/duckduckgo/sync-engine-go/models"
)

// Per-call timeouts: short for low-latency reads such as the connect poll,
// long for sync and account traffic.
const (
	fastTimeout = 4 * time.Second
	syncTimeout = 60 * time.Second
)

// Engine is the assembled sync engine.
type Engine struct {
	cfg    *config.EngineConfig
	logger *logger.Logger

	endpoints *endpoints.AtomicEndpoints
	store     securestore.SecureStore
	crypto    crypto.Provider
	crypter   *crypto.AccountCrypter
	accounts  account.AccountManager
	scheduler scheduler.Scheduler
	queue     syncqueue.Queue

	fastHTTP httpclient.Client
	syncHTTP httpclient.Client
}

// storeKeySource adapts SecureStore to [crypto.KeySource]: the account's
// secret key is fetched on demand, never cached by the crypto layer.
type storeKeySource struct {
	store securestore.SecureStore
}

func (s storeKeySource) SecretKey(ctx context.Context) ([]byte, error) {
	acct, err := s.store.LoadAccount(ctx)
	if err != nil {
		return nil, err
	}
	return acct.SecretKey, nil
}

// New wires a full [Engine] from cfg. The engine is idle until Run is
// called; account operations work immediately.
func New(ctx context.Context, cfg *config.EngineConfig, log *logger.Logger) (*Engine, error) {
	if log == nil {
		log = logger.Nop()
	}

	eps, err := endpoints.New(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	endpointsSource := endpoints.NewAtomic(eps)

	store, err := securestore.New(ctx, cfg.SecureStoreDSN, log)
	if err != nil {
		return nil, err
	}

	cryptoProvider := crypto.NewProvider()
	crypter := crypto.NewAccountCrypter(cryptoProvider, storeKeySource{store: store})

	fastHTTP := httpclient.New(fastTimeout, log)
	syncHTTP := httpclient.New(syncTimeout, log)

	e := &Engine{
		cfg:       cfg,
		logger:    log,
		endpoints: endpointsSource,
		store:     store,
		crypto:    cryptoProvider,
		crypter:   crypter,
		accounts:  account.New(endpointsSource, syncHTTP, cryptoProvider, log),
		scheduler: scheduler.New(cfg.ImmediateDebounce, cfg.LifecycleDebounce, log),
		fastHTTP:  fastHTTP,
		syncHTTP:  syncHTTP,
	}

	e.queue = syncqueue.New(syncqueue.Deps{
		Store:   store,
		Crypter: crypter,
		Maker:   requestmaker.New(endpointsSource),
		HTTP:    syncHTTP,
		Logger:  log,
	})

	return e, nil
}

// RegisterProvider adds a feature's DataProvider to the engine. All
// providers must be registered before the first sync is scheduled.
func (e *Engine) RegisterProvider(dp dataprovider.Provider) error {
	return e.queue.RegisterProvider(dp)
}

// Run drives the scheduler loop, the queue dispatch loop, and the signal
// pump between them until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	return workers.New(
		workers.WorkerFunc(e.scheduler.Run),
		workers.WorkerFunc(e.queue.Run),
		workers.WorkerFunc(e.pump),
	).Run(ctx)
}

// pump forwards the scheduler's output signals into queue operations.
func (e *Engine) pump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.scheduler.StartSyncSignal():
			e.queue.StartSync()
		case <-e.scheduler.CancelSyncSignal():
			e.queue.CancelOngoingAndSuspend()
		case <-e.scheduler.ResumeSyncSignal():
			e.queue.Resume()
		}
	}
}

// CreateAccount signs up a fresh account for this device, persists it, and
// first-sync-initializes every registered provider.
func (e *Engine) CreateAccount(ctx context.Context) (models.Account, error) {
	acct, err := e.accounts.CreateAccount(ctx, e.cfg.Device.Name, e.cfg.Device.Type)
	if err != nil {
		return models.Account{}, err
	}

	if err := e.store.SaveAccount(ctx, acct); err != nil {
		return models.Account{}, err
	}
	if err := e.queue.PrepareDataModelsForSync(ctx, false); err != nil {
		return models.Account{}, err
	}

	e.logger.Info().Str("user_id", acct.UserID).Msg("account created")
	return acct, nil
}

// LoginWithRecoveryKey joins an existing account on this device. Providers
// are registered as needing a remote data fetch, and an immediate sync is
// requested so the catch-up happens right away.
func (e *Engine) LoginWithRecoveryKey(ctx context.Context, rk models.RecoveryKey) (models.Account, []models.Device, error) {
	acct, devices, err := e.accounts.Login(ctx, rk, e.cfg.Device.Name, e.cfg.Device.Type)
	if err != nil {
		return models.Account{}, nil, err
	}

	if err := e.store.SaveAccount(ctx, acct); err != nil {
		return models.Account{}, nil, err
	}
	if err := e.queue.PrepareDataModelsForSync(ctx, true); err != nil {
		return models.Account{}, nil, err
	}

	e.scheduler.RequestSyncImmediately()
	e.logger.Info().Str("user_id", acct.UserID).Msg("logged in with recovery key")
	return acct, devices, nil
}

// LoginWithRecoveryCode is [Engine.LoginWithRecoveryKey] taking the
// base64-wrapped "sync code" form of the recovery key.
func (e *Engine) LoginWithRecoveryCode(ctx context.Context, code string) (models.Account, []models.Device, error) {
	rk, err := connect.DecodeRecoveryCode(code)
	if err != nil {
		return models.Account{}, nil, err
	}
	return e.LoginWithRecoveryKey(ctx, rk)
}

// RecoveryCode returns the current account's recovery key in its
// transportable sync-code form, for the user to write down or show as a QR
// code.
func (e *Engine) RecoveryCode(ctx context.Context) (string, error) {
	acct, err := e.store.LoadAccount(ctx)
	if err != nil {
		return "", err
	}
	return connect.EncodeRecoveryCode(models.RecoveryKey{UserID: acct.UserID, PrimaryKey: acct.PrimaryKey})
}

// Logout signs this device out on the server and clears the local account.
func (e *Engine) Logout(ctx context.Context) error {
	acct, err := e.store.LoadAccount(ctx)
	if err != nil {
		return err
	}

	if err := e.accounts.Logout(ctx, *acct); err != nil {
		return err
	}
	return e.store.RemoveAccount(ctx)
}

// DeleteAccount deletes the whole account on the server and clears the
// local copy.
func (e *Engine) DeleteAccount(ctx context.Context) error {
	acct, err := e.store.LoadAccount(ctx)
	if err != nil {
		return err
	}

	if err := e.accounts.DeleteAccount(ctx, *acct); err != nil {
		return err
	}
	return e.store.RemoveAccount(ctx)
}

// FetchDevices lists the account's device fleet.
func (e *Engine) FetchDevices(ctx context.Context) ([]models.Device, error) {
	acct, err := e.store.LoadAccount(ctx)
	if err != nil {
		return nil, err
	}
	return e.accounts.FetchDevices(ctx, *acct)
}

// RefreshTokenIfNeeded peeks (without verifying) at the stored token's JWT
// expiry and refreshes it when it lapses within the given window. Tokens
// that are not JWTs or carry no expiry are left alone — the token stays
// opaque and the server remains the authority on validity.
func (e *Engine) RefreshTokenIfNeeded(ctx context.Context, within time.Duration) error {
	acct, err := e.store.LoadAccount(ctx)
	if err != nil {
		return err
	}

	expiry, err := utils.TokenExpiresAt(acct.Token)
	if err != nil || expiry.IsZero() {
		return nil
	}
	if time.Until(expiry) > within {
		return nil
	}

	refreshed, _, err := e.accounts.RefreshToken(ctx, *acct)
	if err != nil {
		return fmt.Errorf("engine: refresh token: %w", err)
	}

	e.logger.Debug().Time("expiry", expiry).Msg("refreshed sync token")
	return e.store.SaveAccount(ctx, refreshed)
}

// StartConnect begins the joining side of a device-to-device handoff: it
// returns a connector holding a fresh ephemeral key pair, ready to publish
// its connect code and poll for the sealed recovery key.
func (e *Engine) StartConnect() (*connect.RemoteConnector, error) {
	return connect.NewRemoteConnector(e.crypto, e.fastHTTP, e.endpoints, e.logger)
}

// TransmitRecoveryKey is the signed-in side of the handoff: it seals this
// account's recovery key to the public key in connectCode and submits it.
func (e *Engine) TransmitRecoveryKey(ctx context.Context, connectCode string) error {
	acct, err := e.store.LoadAccount(ctx)
	if err != nil {
		return err
	}

	transmitter := connect.NewRecoveryKeyTransmitter(e.crypto, e.syncHTTP, e.endpoints, e.logger)
	return transmitter.Send(ctx, connectCode, models.RecoveryKey{UserID: acct.UserID, PrimaryKey: acct.PrimaryKey})
}

// SetSyncEnabled gates the whole pipeline: scheduler triggers and queue
// dispatch.
func (e *Engine) SetSyncEnabled(enabled bool) {
	e.scheduler.SetEnabled(enabled)
	e.queue.SetDataSyncingEnabled(enabled)
}

// SwitchEnvironment rebuilds the endpoint set against a new base URL at
// runtime (the debug environment switch) without tearing
// down any dependent component.
func (e *Engine) SwitchEnvironment(baseURL string) error {
	eps, err := endpoints.New(baseURL)
	if err != nil {
		return err
	}
	e.endpoints.Swap(eps)
	e.logger.Info().Str("base_url", baseURL).Msg("switched sync environment")
	return nil
}

// Scheduler exposes the trigger surface applications call into.
func (e *Engine) Scheduler() scheduler.Scheduler { return e.scheduler }

// Queue exposes the queue's observable channels and manual controls.
func (e *Engine) Queue() syncqueue.Queue { return e.queue }

// Store exposes the account store, read-mostly for callers.
func (e *Engine) Store() securestore.SecureStore { return e.store }

// Close releases the engine's persistent resources.
func (e *Engine) Close() error {
	return e.store.Close()
}
