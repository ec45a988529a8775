package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duckduckgo/sync-engine-go/internal/crypto"
	"github.com/duckduckgo/sync-engine-go/internal/endpoints"
	"github.com/duckduckgo/sync-engine-go/internal/httpclient"
	"github.com/duckduckgo/sync-engine-go/models"
)

func newManagerAgainst(t *testing.T, srv *httptest.Server) AccountManager {
	t.Helper()
	eps, err := endpoints.New(srv.URL)
	require.NoError(t, err)
	return New(endpoints.NewAtomic(eps), httpclient.New(4*time.Second, nil), crypto.NewProvider(), nil)
}

func TestCreateAccount(t *testing.T) {
	var seen signupRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sync/signup", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"), "signup carries no session state")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(signupResponse{UserID: seen.UserID, Token: "t1"})
	}))
	defer srv.Close()

	m := newManagerAgainst(t, srv)
	acct, err := m.CreateAccount(context.Background(), "phone", "mobile")
	require.NoError(t, err)

	require.Equal(t, seen.UserID, acct.UserID)
	require.Equal(t, "t1", acct.Token)
	require.Equal(t, models.StateActive, acct.State)
	require.Len(t, acct.PrimaryKey, 32)
	require.Len(t, acct.SecretKey, 32)
	require.Equal(t, "phone", acct.DeviceName)
	require.Equal(t, "mobile", acct.DeviceType)

	require.NotEmpty(t, seen.HashedPassword)
	require.NotEmpty(t, seen.ProtectedEncryptionKey)
	require.Equal(t, acct.DeviceID, seen.DeviceID)
}

// Login must recover exactly the secret key the original signup produced:
// the server only ever stores the protected (wrapped) form.
func TestLogin_RecoversSecretKey(t *testing.T) {
	cryptoProvider := crypto.NewProvider()
	keys, err := cryptoProvider.CreateAccountKeys("u1", "original-password")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sync/login", r.URL.Path)

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "u1", req.UserID)
		require.NotEmpty(t, req.HashedPassword)

		json.NewEncoder(w).Encode(loginResponse{
			Token:                  "t2",
			ProtectedEncryptionKey: keys.ProtectedSecretKey,
			Devices: []deviceWire{
				{DeviceID: "d1", DeviceName: "laptop", DeviceType: "desktop"},
			},
		})
	}))
	defer srv.Close()

	m := newManagerAgainst(t, srv)
	acct, devices, err := m.Login(context.Background(), models.RecoveryKey{UserID: "u1", PrimaryKey: keys.PrimaryKey}, "phone", "mobile")
	require.NoError(t, err)

	require.Equal(t, keys.SecretKey, acct.SecretKey)
	require.Equal(t, models.StateAddingNewDevice, acct.State)
	require.Equal(t, "t2", acct.Token)
	require.Len(t, devices, 1)
	require.Equal(t, "laptop", devices[0].DeviceName)
}

func TestRefreshToken_KeepsDeviceIDAndState(t *testing.T) {
	cryptoProvider := crypto.NewProvider()
	keys, err := cryptoProvider.CreateAccountKeys("u1", "pw")
	require.NoError(t, err)

	var seenDeviceID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seenDeviceID = req.DeviceID

		json.NewEncoder(w).Encode(loginResponse{Token: "t3", ProtectedEncryptionKey: keys.ProtectedSecretKey})
	}))
	defer srv.Close()

	m := newManagerAgainst(t, srv)
	original := models.Account{
		UserID:     "u1",
		PrimaryKey: keys.PrimaryKey,
		SecretKey:  keys.SecretKey,
		Token:      "t-old",
		DeviceID:   "d-fixed",
		DeviceName: "phone",
		DeviceType: "mobile",
		State:      models.StateActive,
	}

	refreshed, _, err := m.RefreshToken(context.Background(), original)
	require.NoError(t, err)
	require.Equal(t, "d-fixed", seenDeviceID)
	require.Equal(t, "d-fixed", refreshed.DeviceID)
	require.Equal(t, "t3", refreshed.Token)
	require.Equal(t, models.StateActive, refreshed.State)
}

func TestLogout_ServerMustEchoDeviceID(t *testing.T) {
	echo := "d1"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sync/logout-device", r.URL.Path)
		require.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(logoutResponse{DeviceID: echo})
	}))
	defer srv.Close()

	m := newManagerAgainst(t, srv)
	acct := models.Account{UserID: "u1", Token: "t1", DeviceID: "d1"}

	require.NoError(t, m.Logout(context.Background(), acct))

	echo = "d-other"
	require.ErrorIs(t, m.Logout(context.Background(), acct), ErrLogoutDeviceMismatch)
}

func TestCreateAccount_ServerErrorDoesNotYieldAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := newManagerAgainst(t, srv)
	_, err := m.CreateAccount(context.Background(), "phone", "mobile")
	require.ErrorIs(t, err, ErrRegisterOnServer)
}
