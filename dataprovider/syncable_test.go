package dataprovider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncableMarshal_FlattensFields(t *testing.T) {
	s := Syncable{
		ID: "b1",
		Fields: map[string]json.RawMessage{
			"title": json.RawMessage(`"Y2lwaGVy"`),
			"page":  json.RawMessage(`{"url":"dXJs"}`),
		},
	}

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b1","title":"Y2lwaGVy","page":{"url":"dXJs"}}`, string(out))
}

func TestSyncableMarshal_DeletedOnlyWhenTombstone(t *testing.T) {
	out, err := json.Marshal(Syncable{ID: "b1", Deleted: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b1","deleted":true}`, string(out))

	out, err = json.Marshal(Syncable{ID: "b2"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b2"}`, string(out))
}

func TestSyncableUnmarshal_KeepsUnknownFieldsOpaque(t *testing.T) {
	var s Syncable
	require.NoError(t, json.Unmarshal([]byte(`{"id":"b1","deleted":true,"title":"Y3Q=","folder":{"children":["a","b"]}}`), &s))

	assert.Equal(t, "b1", s.ID)
	assert.True(t, s.Deleted)
	assert.NotContains(t, s.Fields, "id")
	assert.NotContains(t, s.Fields, "deleted")
	assert.JSONEq(t, `"Y3Q="`, string(s.Fields["title"]))
	assert.JSONEq(t, `{"children":["a","b"]}`, string(s.Fields["folder"]))
}

func TestSyncableRoundTrip(t *testing.T) {
	original := []byte(`{"id":"b1","title":"Y3Q=","page":{"url":"dXJs"}}`)

	var s Syncable
	require.NoError(t, json.Unmarshal(original, &s))
	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, string(original), string(out))
}
