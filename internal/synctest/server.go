// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package synctest fakes the sync server's wire protocol for the module's
// own integration tests: signup, login, logout, delete,
// connect drop-box, and the per-feature GET/PATCH sync routes, all backed by
// in-memory state for a single user account. It speaks exactly the JSON
// shapes the client emits, gates the sync routes behind the bearer token it
// minted, and accepts gzip-compressed PATCH bodies.
package synctest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/duckduckgo/sync-engine-go/internal/utils"
)

const tokenIssuer = "synctest"

type userRecord struct {
	UserID         string
	HashedPassword []byte
	ProtectedKey   []byte
	Devices        []deviceRecord
}

type deviceRecord struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	DeviceType string `json:"device_type"`
}

type featureRecord struct {
	LastModified string
	Entries      []json.RawMessage
}

// Server is an in-memory fake sync server for one user account.
type Server struct {
	httpServer *httptest.Server
	signKey    []byte

	mu           sync.Mutex
	user         *userRecord
	features     map[string]*featureRecord
	connectDrops map[string][]byte
	modCounter   int
}

// NewServer starts the fake server. Callers own the returned value and must
// Close it.
func NewServer() *Server {
	s := &Server{
		signKey:      []byte("synctest-sign-key"),
		features:     make(map[string]*featureRecord),
		connectDrops: make(map[string][]byte),
	}

	r := chi.NewRouter()
	r.Route("/sync", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/connect", s.handleConnectSubmit)
		r.Get("/connect/{deviceID}", s.handleConnectPoll)

		r.Group(func(r chi.Router) {
			r.Use(s.withAuth, withGzipRequests)
			r.Post("/logout-device", s.handleLogout)
			r.Post("/delete-account", s.handleDeleteAccount)
			r.Patch("/data", s.handlePatch)
			r.Get("/{features}", s.handleGet)
		})
	})

	s.httpServer = httptest.NewServer(r)
	return s
}

// URL is the base URL clients point their Endpoints at.
func (s *Server) URL() string { return s.httpServer.URL }

// Close shuts the server down.
func (s *Server) Close() { s.httpServer.Close() }

// SeedFeature pre-populates one feature's remote state, as if another
// device had already synced it.
func (s *Server) SeedFeature(name, lastModified string, entries ...json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features[name] = &featureRecord{LastModified: lastModified, Entries: entries}
}

// FeatureEntries returns the raw records the server currently holds for a
// feature.
func (s *Server) FeatureEntries(name string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fr, ok := s.features[name]; ok {
		return append([]json.RawMessage(nil), fr.Entries...)
	}
	return nil
}

// HasAccount reports whether a signup or login has happened.
func (s *Server) HasAccount() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *Server) handleSignup(w http.ResponseWriter, req *http.Request) {
	var body struct {
		UserID                 string `json:"user_id"`
		HashedPassword         []byte `json:"hashed_password"`
		ProtectedEncryptionKey []byte `json:"protected_encryption_key"`
		DeviceID               string `json:"device_id"`
		DeviceName             string `json:"device_name"`
		DeviceType             string `json:"device_type"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := utils.GenerateToken(tokenIssuer, body.UserID, time.Hour, s.signKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	s.user = &userRecord{
		UserID:         body.UserID,
		HashedPassword: body.HashedPassword,
		ProtectedKey:   body.ProtectedEncryptionKey,
		Devices:        []deviceRecord{{body.DeviceID, body.DeviceName, body.DeviceType}},
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"user_id": body.UserID, "token": token})
}

func (s *Server) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body struct {
		UserID         string `json:"user_id"`
		HashedPassword []byte `json:"hashed_password"`
		DeviceID       string `json:"device_id"`
		DeviceName     string `json:"device_name"`
		DeviceType     string `json:"device_type"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.user.UserID != body.UserID || !bytes.Equal(s.user.HashedPassword, body.HashedPassword) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
		return
	}

	known := false
	for _, d := range s.user.Devices {
		if d.DeviceID == body.DeviceID {
			known = true
			break
		}
	}
	if !known {
		s.user.Devices = append(s.user.Devices, deviceRecord{body.DeviceID, body.DeviceName, body.DeviceType})
	}

	token, err := utils.GenerateToken(tokenIssuer, body.UserID, time.Hour, s.signKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":                    token,
		"protected_encryption_key": s.user.ProtectedKey,
		"devices":                  s.user.Devices,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, req *http.Request) {
	var body struct {
		DeviceID string `json:"device_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.user != nil {
		devices := s.user.Devices[:0]
		for _, d := range s.user.Devices {
			if d.DeviceID != body.DeviceID {
				devices = append(devices, d)
			}
		}
		s.user.Devices = devices
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"device_id": body.DeviceID})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.user = nil
	s.features = make(map[string]*featureRecord)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnectSubmit(w http.ResponseWriter, req *http.Request) {
	var body struct {
		DeviceID             string `json:"device_id"`
		EncryptedRecoveryKey []byte `json:"encrypted_recovery_key"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.connectDrops[body.DeviceID] = body.EncryptedRecoveryKey
	s.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleConnectPoll(w http.ResponseWriter, req *http.Request) {
	deviceID := chi.URLParam(req, "deviceID")

	s.mu.Lock()
	sealed, ok := s.connectDrops[deviceID]
	if ok {
		delete(s.connectDrops, deviceID)
	}
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]byte{"encrypted_recovery_key": sealed})
}

func (s *Server) handleGet(w http.ResponseWriter, req *http.Request) {
	names := splitFeatures(chi.URLParam(req, "features"))
	if len(names) == 0 {
		http.Error(w, "no features", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	anyData := false
	response := make(map[string]map[string]any, len(names))
	for _, name := range names {
		fr, ok := s.features[name]
		if !ok {
			response[name] = map[string]any{"last_modified": "0", "entries": []json.RawMessage{}}
			continue
		}
		anyData = true
		response[name] = map[string]any{"last_modified": fr.LastModified, "entries": fr.Entries}
	}

	if !anyData {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handlePatch(w http.ResponseWriter, req *http.Request) {
	var envelope map[string]struct {
		Updates       []json.RawMessage `json:"updates"`
		ModifiedSince *string           `json:"modified_since"`
	}
	if err := json.NewDecoder(req.Body).Decode(&envelope); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(envelope) == 0 {
		http.Error(w, "empty envelope", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	response := make(map[string]map[string]any, len(envelope))
	for name, patch := range envelope {
		fr, ok := s.features[name]
		if !ok {
			fr = &featureRecord{}
			s.features[name] = fr
		}
		fr.Entries = append(fr.Entries, patch.Updates...)

		s.modCounter++
		fr.LastModified = "mod-" + strconv.Itoa(s.modCounter)

		// Changes made by other devices since modified_since would be
		// returned here; with a single fake client there are none.
		response[name] = map[string]any{"last_modified": fr.LastModified, "entries": []json.RawMessage{}}
	}

	writeJSON(w, http.StatusOK, response)
}

func splitFeatures(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
