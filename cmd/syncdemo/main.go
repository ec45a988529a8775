// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Command syncdemo is a reference wiring of the sync engine: it creates (or
// reuses) an account, registers the example bookmarks provider, and keeps
// syncing until interrupted. Point SYNC_BASE_URL at a sync server, or set
// SYNC_ENVIRONMENT to pick a default one.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duckduckgo/sync-engine-go/examples/bookmarks"
	"github.com/duckduckgo/sync-engine-go/internal/config"
	"github.com/duckduckgo/sync-engine-go/internal/engine"
	"github.com/duckduckgo/sync-engine-go/internal/logger"
	"github.com/duckduckgo/sync-engine-go/internal/securestore"
	"github.com/duckduckgo/sync-engine-go/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "syncdemo error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	log := logger.NewLogger("syncdemo")
	log.Info().
		Str("build_version", buildInfo.BuildVersion()).
		Str("build_date", buildInfo.BuildDate()).
		Str("build_commit", buildInfo.BuildCommit()).
		Msg("starting sync demo")

	cfg, err := config.GetEngineConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := engine.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer e.Close()

	store := bookmarks.New()
	if err := e.RegisterProvider(store); err != nil {
		return err
	}

	if err := ensureAccount(ctx, e, log); err != nil {
		return err
	}

	if err := e.RefreshTokenIfNeeded(ctx, 10*time.Minute); err != nil {
		log.Warn().Err(err).Msg("token refresh failed, continuing with the stored token")
	}

	if len(store.Bookmarks()) == 0 {
		store.Add("DuckDuckGo", "https://duckduckgo.com")
	}
	e.Scheduler().RequestSyncImmediately()

	go reportSyncEvents(ctx, e, log)

	log.Info().Str("base_url", cfg.BaseURL).Msg("sync engine running, interrupt to stop")
	if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ensureAccount reuses the persisted account when there is one and signs up
// a fresh one otherwise, printing the recovery code the user needs to keep.
func ensureAccount(ctx context.Context, e *engine.Engine, log *logger.Logger) error {
	_, err := e.Store().LoadAccount(ctx)
	if err == nil {
		return e.Queue().PrepareDataModelsForSync(ctx, false)
	}
	if !errors.Is(err, securestore.ErrNoAccount) {
		return err
	}

	acct, err := e.CreateAccount(ctx)
	if err != nil {
		return err
	}

	code, err := e.RecoveryCode(ctx)
	if err != nil {
		return err
	}

	log.Info().Str("user_id", acct.UserID).Msg("created a new sync account")
	fmt.Printf("Recovery code (store it somewhere safe):\n%s\n", code)
	return nil
}

func reportSyncEvents(ctx context.Context, e *engine.Engine, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case inProgress := <-e.Queue().IsSyncInProgress():
			log.Debug().Bool("in_progress", inProgress).Msg("sync progress changed")
		case err := <-e.Queue().SyncDidFinish():
			if err != nil {
				log.Err(err).Msg("sync finished with errors")
			} else {
				log.Info().Msg("sync finished")
			}
		case err := <-e.Queue().SyncHTTPRequestError():
			log.Err(err).Msg("sync server rejected a request")
		}
	}
}
