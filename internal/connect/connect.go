// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package connect implements the device-to-device recovery-key handoff.
// The joining ("new") device generates an ephemeral key pair
// and publishes a short connect code; the already-signed-in ("source")
// device seals the recovery key to that code's public key and posts it; the
// new device polls until the sealed payload arrives and opens it locally.
// The server only ever holds ciphertext it cannot read.
package connect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/duckduckgo/sync-engine-go/internal/crypto"
	"github.com/duckduckgo/sync-engine-go/internal/endpoints"
	"github.com/duckduckgo/sync-engine-go/internal/httpclient"
	"github.com/duckduckgo/sync-engine-go/internal/logger"
	"github.com/duckduckgo/sync-engine-go/models"
)

// defaultPollInterval is the pause between poll attempts on the new device.
const defaultPollInterval = 5 * time.Second

// EndpointsSource supplies the currently active [endpoints.Endpoints],
// satisfied by [endpoints.AtomicEndpoints].
type EndpointsSource interface {
	Load() *endpoints.Endpoints
}

// Wire bodies of the two connect endpoints.
type connectSubmitRequest struct {
	DeviceID             string `json:"device_id"`
	EncryptedRecoveryKey []byte `json:"encrypted_recovery_key"`
}

type connectPollResponse struct {
	EncryptedRecoveryKey []byte `json:"encrypted_recovery_key"`
}

// RemoteConnector is the joining device's half of the handoff. Create one
// per attempt; the ephemeral key pair is discarded with it.
type RemoteConnector struct {
	crypto       crypto.Provider
	http         httpclient.Client
	endpoints    EndpointsSource
	pollInterval time.Duration
	logger       *logger.Logger

	info models.ConnectInfo
}

// NewRemoteConnector generates a fresh ephemeral key pair and device id for
// one connect attempt.
func NewRemoteConnector(cryptoProvider crypto.Provider, httpClient httpclient.Client, endpointsSource EndpointsSource, log *logger.Logger) (*RemoteConnector, error) {
	if log == nil {
		log = logger.Nop()
	}

	info, err := cryptoProvider.PrepareForConnect()
	if err != nil {
		return nil, err
	}

	return &RemoteConnector{
		crypto:       cryptoProvider,
		http:         httpClient,
		endpoints:    endpointsSource,
		pollInterval: defaultPollInterval,
		logger:       log,
		info:         info,
	}, nil
}

// ConnectCode returns the short code the user transfers out-of-band to the
// signed-in device (QR code, copy-paste). It carries only the device id and
// the public half of the ephemeral pair.
func (c *RemoteConnector) ConnectCode() (string, error) {
	return EncodeConnectCode(c.info)
}

// PollForRecoveryKey polls GET sync/connect/{device_id} until the sealed
// recovery key shows up, then unseals it locally. A 404 means "not yet" and
// schedules another attempt after the poll interval; cancellation via ctx
// stops the loop between sleeps and during the HTTP call.
func (c *RemoteConnector) PollForRecoveryKey(ctx context.Context) (models.RecoveryKey, error) {
	for {
		rk, found, err := c.pollOnce(ctx)
		if err != nil {
			return models.RecoveryKey{}, err
		}
		if found {
			return rk, nil
		}

		select {
		case <-ctx.Done():
			return models.RecoveryKey{}, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *RemoteConnector) pollOnce(ctx context.Context) (models.RecoveryKey, bool, error) {
	resp, err := c.http.Execute(ctx, httpclient.Request{
		Method: httpclient.MethodGet,
		URL:    c.endpoints.Load().ConnectPoll(c.info.DeviceID),
	})

	var statusErr *httpclient.StatusCodeError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		c.logger.Debug().Str("device_id", c.info.DeviceID).Msg("recovery key not published yet")
		return models.RecoveryKey{}, false, nil
	}
	if err != nil {
		return models.RecoveryKey{}, false, fmt.Errorf("connect: poll for recovery key: %w", err)
	}

	if len(resp.Body) == 0 {
		return models.RecoveryKey{}, false, ErrNoResponseBody
	}

	var poll connectPollResponse
	if err := json.Unmarshal(resp.Body, &poll); err != nil {
		return models.RecoveryKey{}, false, fmt.Errorf("connect: decode poll response: %w", err)
	}

	opened, err := c.crypto.Unseal(poll.EncryptedRecoveryKey, c.info.PublicKey, c.info.SecretKey)
	if err != nil {
		return models.RecoveryKey{}, false, err
	}

	rk, err := recoveryKeyFromJSON(opened)
	if err != nil {
		return models.RecoveryKey{}, false, err
	}
	return rk, true, nil
}

// RecoveryKeyTransmitter is the signed-in device's half of the handoff.
type RecoveryKeyTransmitter struct {
	crypto    crypto.Provider
	http      httpclient.Client
	endpoints EndpointsSource
	logger    *logger.Logger
}

// NewRecoveryKeyTransmitter constructs a [RecoveryKeyTransmitter].
func NewRecoveryKeyTransmitter(cryptoProvider crypto.Provider, httpClient httpclient.Client, endpointsSource EndpointsSource, log *logger.Logger) *RecoveryKeyTransmitter {
	if log == nil {
		log = logger.Nop()
	}
	return &RecoveryKeyTransmitter{crypto: cryptoProvider, http: httpClient, endpoints: endpointsSource, logger: log}
}

// Send seals rk to the public key carried in connectCode and posts the
// sealed payload to sync/connect, addressed to the joining device's id. The
// server holds it until picked up or its TTL expires.
func (t *RecoveryKeyTransmitter) Send(ctx context.Context, connectCode string, rk models.RecoveryKey) error {
	deviceID, publicKey, err := DecodeConnectCode(connectCode)
	if err != nil {
		return err
	}

	payload, err := recoveryKeyJSON(rk)
	if err != nil {
		return err
	}

	sealed, err := t.crypto.Seal(payload, publicKey)
	if err != nil {
		return err
	}

	body, err := json.Marshal(connectSubmitRequest{DeviceID: deviceID, EncryptedRecoveryKey: sealed})
	if err != nil {
		return fmt.Errorf("connect: encode submit request: %w", err)
	}

	_, err = t.http.Execute(ctx, httpclient.Request{
		Method:      httpclient.MethodPost,
		URL:         t.endpoints.Load().Connect(),
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("connect: submit recovery key: %w", err)
	}

	t.logger.Debug().Str("device_id", deviceID).Msg("sealed recovery key submitted")
	return nil
}
