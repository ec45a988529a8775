// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package dataprovider

import "encoding/json"

// Syncable is one opaque record of one feature. The core never interprets
// its Fields beyond reading ID and Deleted; everything user-text arrives
// here already encrypted and base64-encoded by the Provider, so the server
// never sees plaintext titles, URLs, or similar strings.
type Syncable struct {
	// ID is the stable, never-encrypted identifier of the record.
	ID string `json:"id"`

	// Deleted marks a tombstone. Present (and true) only when the record
	// represents a deletion; omitted otherwise.
	Deleted bool `json:"deleted,omitempty"`

	// Fields carries the remaining, feature-specific payload. Any string
	// value that originated as user text must already be encrypted by the
	// Provider before it is placed here.
	Fields map[string]json.RawMessage `json:"-"`
}

// MarshalJSON flattens ID, Deleted and Fields into a single JSON object, so
// a Syncable round-trips exactly as the sync wire format expects:
// `{"id": "...", "deleted": true, <other fields>...}`.
func (s Syncable) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Fields)+2)
	for k, v := range s.Fields {
		out[k] = v
	}

	idJSON, err := json.Marshal(s.ID)
	if err != nil {
		return nil, err
	}
	out["id"] = idJSON

	if s.Deleted {
		out["deleted"] = json.RawMessage("true")
	}

	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON: it extracts "id" and
// "deleted" into their typed fields and keeps the rest in Fields untouched.
func (s *Syncable) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if idRaw, ok := raw["id"]; ok {
		if err := json.Unmarshal(idRaw, &s.ID); err != nil {
			return err
		}
		delete(raw, "id")
	}

	if delRaw, ok := raw["deleted"]; ok {
		if err := json.Unmarshal(delRaw, &s.Deleted); err != nil {
			return err
		}
		delete(raw, "deleted")
	}

	s.Fields = raw
	return nil
}
