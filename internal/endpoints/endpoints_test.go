package endpoints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FixedPaths(t *testing.T) {
	e, err := New("https://s.example")
	require.NoError(t, err)

	assert.Equal(t, "https://s.example/sync/signup", e.Signup())
	assert.Equal(t, "https://s.example/sync/login", e.Login())
	assert.Equal(t, "https://s.example/sync/logout-device", e.LogoutDevice())
	assert.Equal(t, "https://s.example/sync/delete-account", e.DeleteAccount())
	assert.Equal(t, "https://s.example/sync/connect", e.Connect())
	assert.Equal(t, "https://s.example/sync/connect/d1", e.ConnectPoll("d1"))
	assert.Equal(t, "https://s.example/sync/data", e.SyncPatch())
}

func TestSyncGet_JoinsFeatureNames(t *testing.T) {
	e, err := New("https://s.example")
	require.NoError(t, err)

	assert.Equal(t, "https://s.example/sync/bookmarks", e.SyncGet([]string{"bookmarks"}))
	assert.Equal(t, "https://s.example/sync/bookmarks,settings,credentials", e.SyncGet([]string{"bookmarks", "settings", "credentials"}))
}

func TestNew_NormalizesInput(t *testing.T) {
	e, err := New("  s.example/base/ ")
	require.NoError(t, err)
	assert.Equal(t, "https://s.example/base/sync/signup", e.Signup())
}

func TestNew_RejectsInvalidInput(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("   ")
	assert.Error(t, err)
}

func TestAtomicEndpoints_Swap(t *testing.T) {
	prod, err := New("https://s.example")
	require.NoError(t, err)
	debug, err := New("https://debug.example")
	require.NoError(t, err)

	a := NewAtomic(prod)
	assert.Equal(t, "https://s.example/sync/data", a.Load().SyncPatch())

	a.Swap(debug)
	assert.Equal(t, "https://debug.example/sync/data", a.Load().SyncPatch())
}
