// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package account

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/duckduckgo/sync-engine-go/internal/crypto"
	"github.com/duckduckgo/sync-engine-go/internal/httpclient"
	"github.com/duckduckgo/sync-engine-go/internal/logger"
	"github.com/duckduckgo/sync-engine-go/models"
)

type accountManager struct {
	endpoints EndpointsSource
	http      httpclient.Client
	crypto    crypto.Provider
	logger    *logger.Logger
}

// New constructs an [AccountManager] wired to the given endpoints source,
// HTTP client, and crypto provider.
func New(endpointsSource EndpointsSource, httpClient httpclient.Client, cryptoProvider crypto.Provider, log *logger.Logger) AccountManager {
	if log == nil {
		log = logger.Nop()
	}
	return &accountManager{endpoints: endpointsSource, http: httpClient, crypto: cryptoProvider, logger: log}
}

// CreateAccount implements [AccountManager].
//
// Key-derivation steps:
//  1. Generate random user_id and password (both UUID strings).
//  2. Derive the full account-key bundle from them via CryptoProvider.
//  3. POST the signup payload; the server never sees the password, only its
//     hash and the protected secret key.
func (a *accountManager) CreateAccount(ctx context.Context, deviceName, deviceType string) (models.Account, error) {
	userID := uuid.NewString()
	password := uuid.NewString()
	deviceID := uuid.NewString()

	keys, err := a.crypto.CreateAccountKeys(userID, password)
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %w", ErrRegisterOnServer, err)
	}

	reqBody, err := json.Marshal(signupRequest{
		UserID:                 userID,
		HashedPassword:         keys.PasswordHash,
		ProtectedEncryptionKey: keys.ProtectedSecretKey,
		DeviceID:               deviceID,
		DeviceName:             deviceName,
		DeviceType:             deviceType,
	})
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: encode signup request: %w", ErrRegisterOnServer, err)
	}

	resp, err := a.http.Execute(ctx, httpclient.Request{
		Method:      httpclient.MethodPost,
		URL:         a.endpoints.Load().Signup(),
		Body:        reqBody,
		ContentType: "application/json",
	})
	if err != nil {
		a.logger.Err(err).Str("func", "AccountManager.CreateAccount").Msg("signup request failed")
		return models.Account{}, fmt.Errorf("%w: %w", ErrRegisterOnServer, err)
	}

	var signup signupResponse
	if err := json.Unmarshal(resp.Body, &signup); err != nil {
		return models.Account{}, fmt.Errorf("%w: decode signup response: %w", ErrRegisterOnServer, err)
	}

	return models.Account{
		UserID:     signup.UserID,
		PrimaryKey: keys.PrimaryKey,
		SecretKey:  keys.SecretKey,
		Token:      signup.Token,
		DeviceID:   deviceID,
		DeviceName: deviceName,
		DeviceType: deviceType,
		State:      models.StateActive,
	}, nil
}

// Login implements [AccountManager].
//
// Derives password_hash and stretched_primary_key locally from recoveryKey
// (no network round trip for that step), then POSTs login and unwraps the
// server-held protected secret key using the stretched primary key.
func (a *accountManager) Login(ctx context.Context, recoveryKey models.RecoveryKey, deviceName, deviceType string) (models.Account, []models.Device, error) {
	info, err := a.crypto.ExtractLoginInfo(recoveryKey)
	if err != nil {
		return models.Account{}, nil, fmt.Errorf("%w: %w", ErrLoginOnServer, err)
	}

	deviceID := uuid.NewString()

	account, devices, err := a.loginWithDevice(ctx, info, deviceID, deviceName, deviceType)
	if err != nil {
		return models.Account{}, nil, err
	}

	account.State = models.StateAddingNewDevice
	return account, devices, nil
}

// RefreshToken implements [AccountManager]. Identical wire call to Login,
// but account.DeviceID is reused rather than a fresh one generated, and the
// account's PrimaryKey is already known so no [models.RecoveryKey] is needed.
func (a *accountManager) RefreshToken(ctx context.Context, account models.Account) (models.Account, []models.Device, error) {
	info, err := a.crypto.ExtractLoginInfo(models.RecoveryKey{UserID: account.UserID, PrimaryKey: account.PrimaryKey})
	if err != nil {
		return models.Account{}, nil, fmt.Errorf("%w: %w", ErrRefreshTokenOnServer, err)
	}

	refreshed, devices, err := a.loginWithDevice(ctx, info, account.DeviceID, account.DeviceName, account.DeviceType)
	if err != nil {
		return models.Account{}, nil, fmt.Errorf("%w: %w", ErrRefreshTokenOnServer, err)
	}

	refreshed.State = account.State
	return refreshed, devices, nil
}

// loginWithDevice issues the login POST and unwraps the response's protected
// secret key. Shared by Login and RefreshToken, which differ only in
// whether deviceID is freshly generated or reused.
func (a *accountManager) loginWithDevice(ctx context.Context, info crypto.LoginInfo, deviceID, deviceName, deviceType string) (models.Account, []models.Device, error) {
	reqBody, err := json.Marshal(loginRequest{
		UserID:         info.UserID,
		HashedPassword: info.PasswordHash,
		DeviceID:       deviceID,
		DeviceName:     deviceName,
		DeviceType:     deviceType,
	})
	if err != nil {
		return models.Account{}, nil, fmt.Errorf("%w: encode login request: %w", ErrLoginOnServer, err)
	}

	resp, err := a.http.Execute(ctx, httpclient.Request{
		Method:      httpclient.MethodPost,
		URL:         a.endpoints.Load().Login(),
		Body:        reqBody,
		ContentType: "application/json",
	})
	if err != nil {
		a.logger.Err(err).Str("func", "AccountManager.loginWithDevice").Msg("login request failed")
		return models.Account{}, nil, fmt.Errorf("%w: %w", ErrLoginOnServer, err)
	}

	var login loginResponse
	if err := json.Unmarshal(resp.Body, &login); err != nil {
		return models.Account{}, nil, fmt.Errorf("%w: decode login response: %w", ErrLoginOnServer, err)
	}

	secretKey, err := a.crypto.ExtractSecretKey(login.ProtectedEncryptionKey, info.StretchedPrimaryKey)
	if err != nil {
		return models.Account{}, nil, fmt.Errorf("%w: %w", ErrLoginOnServer, err)
	}

	account := models.Account{
		UserID:     info.UserID,
		PrimaryKey: info.PrimaryKey,
		SecretKey:  secretKey,
		Token:      login.Token,
		DeviceID:   deviceID,
		DeviceName: deviceName,
		DeviceType: deviceType,
	}

	devices := make([]models.Device, 0, len(login.Devices))
	for _, d := range login.Devices {
		devices = append(devices, models.Device{DeviceID: d.DeviceID, DeviceName: d.DeviceName, DeviceType: d.DeviceType})
	}

	return account, devices, nil
}

// Logout implements [AccountManager].
func (a *accountManager) Logout(ctx context.Context, account models.Account) error {
	reqBody, err := json.Marshal(logoutRequest{DeviceID: account.DeviceID})
	if err != nil {
		return fmt.Errorf("%w: encode logout request: %w", ErrLogoutOnServer, err)
	}

	resp, err := a.http.Execute(ctx, httpclient.Request{
		Method:      httpclient.MethodPost,
		URL:         a.endpoints.Load().LogoutDevice(),
		Headers:     bearerHeader(account.Token),
		Body:        reqBody,
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLogoutOnServer, err)
	}

	var logout logoutResponse
	if err := json.Unmarshal(resp.Body, &logout); err != nil {
		return fmt.Errorf("%w: decode logout response: %w", ErrLogoutOnServer, err)
	}

	if logout.DeviceID != account.DeviceID {
		return ErrLogoutDeviceMismatch
	}

	return nil
}

// DeleteAccount implements [AccountManager].
func (a *accountManager) DeleteAccount(ctx context.Context, account models.Account) error {
	reqBody, err := json.Marshal(deleteAccountRequest{DeviceID: account.DeviceID})
	if err != nil {
		return fmt.Errorf("%w: encode delete-account request: %w", ErrDeleteAccountOnServer, err)
	}

	_, err = a.http.Execute(ctx, httpclient.Request{
		Method:      httpclient.MethodPost,
		URL:         a.endpoints.Load().DeleteAccount(),
		Headers:     bearerHeader(account.Token),
		Body:        reqBody,
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteAccountOnServer, err)
	}

	return nil
}

// FetchDevices implements [AccountManager] by reusing RefreshToken, since
// the wire protocol surfaces the device list only as part of a login-shaped
// response.
func (a *accountManager) FetchDevices(ctx context.Context, account models.Account) ([]models.Device, error) {
	_, devices, err := a.RefreshToken(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchDevicesOnServer, err)
	}
	return devices, nil
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
