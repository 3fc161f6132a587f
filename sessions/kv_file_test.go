package sessions_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/articulink/admin-dashboard/sessions"
	"github.com/stretchr/testify/require"
)

func TestFileKV_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	kv, err := sessions.NewFileKV(path)
	require.NoError(t, err)
	store := sessions.NewStore(kv)
	require.NoError(t, store.SetToken("T1"))
	require.NoError(t, store.SetRefreshToken("T2"))
	require.NoError(t, store.SetUser(sampleProfile()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := sessions.NewFileKV(path)
	require.NoError(t, err)
	snap := sessions.Snapshot(sessions.NewStore(reopened))
	require.Equal(t, "T1", snap.AccessToken)
	require.Equal(t, "T2", snap.RefreshToken)
	require.Equal(t, sampleProfile(), *snap.User)

	require.NoError(t, sessions.NewStore(reopened).Clear())
	again, err := sessions.NewFileKV(path)
	require.NoError(t, err)
	require.False(t, sessions.Snapshot(sessions.NewStore(again)).Authenticated())
}

func TestFileKV_Errors(t *testing.T) {
	_, err := sessions.NewFileKV("  ")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))
	_, err = sessions.NewFileKV(path)
	require.ErrorContains(t, err, "decode session file")
}

func TestFileKV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	kv, err := sessions.NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Delete(sessions.KeyAccessToken))
	_, ok, err := kv.Get(sessions.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileKV_FailedWriteKeepsPreviousValues(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	kv, err := sessions.NewFileKV(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	store := sessions.NewStore(kv)
	require.NoError(t, store.SetToken("T1"))

	// A regular file where the directory should be makes every write fail.
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, nil, 0o600))

	require.Error(t, store.SetToken("T2"))
	token, ok := store.Token()
	require.True(t, ok)
	require.Equal(t, "T1", token)

	require.Error(t, store.Clear())
	token, ok = store.Token()
	require.True(t, ok)
	require.Equal(t, "T1", token)
}
