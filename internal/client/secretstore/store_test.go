package secretstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
)

func newSealer(t *testing.T, kind, keyFile string) cryptox.Sealer {
	t.Helper()
	s, err := cryptox.NewSealer(kind, keyFile)
	require.NoError(t, err)
	return s
}

type storeFactory func(t *testing.T) Store

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file-age": func(t *testing.T) Store {
			dir := t.TempDir()
			return NewFileStore(filepath.Join(dir, "session"), newSealer(t, cryptox.SealerAge, filepath.Join(dir, "key")))
		},
		"file-aes": func(t *testing.T) Store {
			dir := t.TempDir()
			return NewFileStore(filepath.Join(dir, "session"), newSealer(t, cryptox.SealerAESGCM, filepath.Join(dir, "key")))
		},
		"sqlite": func(t *testing.T) Store {
			dir := t.TempDir()
			db, err := InitDatabase(context.Background(), filepath.Join(dir, "local.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			return NewSQLiteStore(db, newSealer(t, cryptox.SealerAESGCM, filepath.Join(dir, "key")))
		},
	}
}

func TestStore_Contract(t *testing.T) {
	for name, mk := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := mk(t)

			_, err := s.Load(ctx)
			require.ErrorIs(t, err, common.ErrorNotFound)

			require.NoError(t, s.Save(ctx, []byte("first")))
			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []byte("first"), got)

			require.NoError(t, s.Save(ctx, []byte("second")))
			got, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []byte("second"), got)

			require.NoError(t, s.Delete(ctx))
			_, err = s.Load(ctx)
			require.ErrorIs(t, err, common.ErrorNotFound)

			require.NoError(t, s.Delete(ctx))
		})
	}
}

func TestStore_ConcurrentSaveAndLoad(t *testing.T) {
	for name, mk := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := mk(t)
			values := [][]byte{[]byte("token-a"), []byte("token-b")}
			require.NoError(t, s.Save(ctx, values[0]))

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(2)
				go func(i int) {
					defer wg.Done()
					assert.NoError(t, s.Save(ctx, values[i%2]))
				}(i)
				go func() {
					defer wg.Done()
					got, err := s.Load(ctx)
					if assert.NoError(t, err) {
						assert.Contains(t, values, got)
					}
				}()
			}
			wg.Wait()
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	in := []byte("secret")
	require.NoError(t, s.Save(ctx, in))
	in[0] = 'X'

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), got)
	got[0] = 'Y'

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), again)
}

func TestMemoryStore_EmptyValueIsStored(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, []byte{}))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	require.NoError(t, s.Save(ctx, nil))
	_, err = s.Load(ctx)
	require.NoError(t, err, "saving replaces the value, even with an empty one")

	require.NoError(t, s.Delete(ctx))
	_, err = s.Load(ctx)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFileStore_SavedAt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "session"), newSealer(t, cryptox.SealerAge, filepath.Join(dir, "key")))

	_, err := s.SavedAt(ctx)
	require.ErrorIs(t, err, common.ErrorNotFound)

	before := time.Now().Add(-time.Minute)
	require.NoError(t, s.Save(ctx, []byte("v")))
	at, err := s.SavedAt(ctx)
	require.NoError(t, err)
	assert.True(t, at.After(before))

	require.NoError(t, s.Delete(ctx))
	_, err = s.SavedAt(ctx)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestStores_HonourCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	require.ErrorIs(t, s.Save(ctx, []byte("x")), context.Canceled)
	_, err := s.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Delete(ctx), context.Canceled)
}

func TestFileStore_NoPlaintextOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "session")
	s := NewFileStore(path, newSealer(t, cryptox.SealerAge, filepath.Join(dir, "key")))

	secret := []byte("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJhbGljZSJ9.sig")
	require.NoError(t, s.Save(ctx, secret))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, secret))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".session-", "temp file left behind")
	}
}

func TestFileStore_WrongKeyIsUnreadable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "session")

	require.NoError(t, NewFileStore(path, newSealer(t, cryptox.SealerAESGCM, filepath.Join(dir, "k1"))).Save(ctx, []byte("x")))

	_, err := NewFileStore(path, newSealer(t, cryptox.SealerAESGCM, filepath.Join(dir, "k2"))).Load(ctx)
	require.ErrorIs(t, err, ErrUnreadable)
}

func TestSQLiteStore_NoPlaintextInDatabaseAndSavedAt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db, err := InitDatabase(ctx, filepath.Join(dir, "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLiteStore(db, newSealer(t, cryptox.SealerAge, filepath.Join(dir, "key")))
	secret := []byte("plain-token-value")
	require.NoError(t, s.Save(ctx, secret))

	var raw []byte
	require.NoError(t, db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, common.SessionCredentialKey).Scan(&raw))
	assert.False(t, bytes.Contains(raw, secret))

	at, err := s.SavedAt(ctx)
	require.NoError(t, err)
	assert.False(t, at.IsZero())

	require.NoError(t, s.Delete(ctx))
	_, err = s.SavedAt(ctx)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

// isolateConfigDir points os.UserConfigDir at a temp dir for the test.
func isolateConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("AppData", dir)
	return dir
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()
	isolateConfigDir(t)

	for _, backend := range []string{BackendFile, BackendSQLite, BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			s, closeFn, err := Open(ctx, Options{Backend: backend, DataDir: dir, Sealer: cryptox.SealerAge})
			require.NoError(t, err)
			t.Cleanup(func() { _ = closeFn() })

			require.NoError(t, s.Save(ctx, []byte("v")))
			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)

			_, err = os.Stat(filepath.Join(dir, keyFileName))
			require.True(t, os.IsNotExist(err), "no key next to the sealed data")
		})
	}
}

func TestDefaultKeyFile_OutsideDataDir(t *testing.T) {
	ctx := context.Background()
	configDir := isolateConfigDir(t)
	dataDir := t.TempDir()

	keyFile, err := DefaultKeyFile()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(keyFile, configDir), keyFile)

	rel, err := filepath.Rel(dataDir, keyFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, ".."), "default key must not live under the data dir")

	_, closeFn, err := Open(ctx, Options{Backend: BackendFile, DataDir: dataDir, Sealer: cryptox.SealerAESGCM})
	require.NoError(t, err)
	defer closeFn()

	fi, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestOpen_RejectsKeyInsideDataDir(t *testing.T) {
	dataDir := t.TempDir()

	for _, keyFile := range []string{
		filepath.Join(dataDir, "secret.key"),
		filepath.Join(dataDir, "keys", "secret.key"),
	} {
		_, closeFn, err := Open(context.Background(), Options{Backend: BackendFile, DataDir: dataDir, KeyFile: keyFile})
		require.ErrorIs(t, err, ErrKeyInDataDir)
		require.NotNil(t, closeFn)

		_, err = os.Stat(keyFile)
		require.True(t, os.IsNotExist(err), "rejected key must not be created")
	}
}

func TestOpen_SeparateKeyFile(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	keyFile := filepath.Join(t.TempDir(), "elsewhere.key")

	s, closeFn, err := Open(ctx, Options{Backend: BackendFile, DataDir: dataDir, Sealer: cryptox.SealerAESGCM, KeyFile: keyFile})
	require.NoError(t, err)
	defer closeFn()
	require.NoError(t, s.Save(ctx, []byte("v")))

	_, err = os.Stat(keyFile)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dataDir, keyFileName))
	require.True(t, os.IsNotExist(err))
}

func TestOpen_UnknownBackend(t *testing.T) {
	configDir := isolateConfigDir(t)

	_, closeFn, err := Open(context.Background(), Options{Backend: "keychain", DataDir: t.TempDir()})
	require.ErrorIs(t, err, ErrUnknownBackend)
	require.NotNil(t, closeFn)

	entries, err := os.ReadDir(configDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no key is created for an unknown backend")
}
