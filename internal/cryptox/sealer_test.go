package cryptox

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSealers(t *testing.T) map[string]func(keyFile string) Sealer {
	t.Helper()
	return map[string]func(string) Sealer{
		SealerAge: func(keyFile string) Sealer {
			s, err := NewSealer(SealerAge, keyFile)
			require.NoError(t, err)
			return s
		},
		SealerAESGCM: func(keyFile string) Sealer {
			s, err := NewSealer(SealerAESGCM, keyFile)
			require.NoError(t, err)
			return s
		},
	}
}

func TestSealer_RoundTrip(t *testing.T) {
	for name, mk := range newSealers(t) {
		t.Run(name, func(t *testing.T) {
			s := mk(filepath.Join(t.TempDir(), "key"))
			plaintext := []byte("eyJhbGciOiJIUzI1NiJ9.payload.sig")

			sealed, err := s.Seal(plaintext)
			require.NoError(t, err)
			assert.False(t, bytes.Contains(sealed, plaintext), "sealed blob must not contain plaintext")

			opened, err := s.Open(sealed)
			require.NoError(t, err)
			assert.Equal(t, plaintext, opened)
		})
	}
}

func TestSealer_SealIsRandomized(t *testing.T) {
	for name, mk := range newSealers(t) {
		t.Run(name, func(t *testing.T) {
			s := mk(filepath.Join(t.TempDir(), "key"))

			a, err := s.Seal([]byte("same"))
			require.NoError(t, err)
			b, err := s.Seal([]byte("same"))
			require.NoError(t, err)

			assert.NotEqual(t, a, b)
		})
	}
}

func TestSealer_WrongKeyFails(t *testing.T) {
	for name, mk := range newSealers(t) {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			s1 := mk(filepath.Join(dir, "key1"))
			s2 := mk(filepath.Join(dir, "key2"))

			sealed, err := s1.Seal([]byte("secret"))
			require.NoError(t, err)

			_, err = s2.Open(sealed)
			require.Error(t, err)
		})
	}
}

func TestSealer_TamperedFails(t *testing.T) {
	for name, mk := range newSealers(t) {
		t.Run(name, func(t *testing.T) {
			s := mk(filepath.Join(t.TempDir(), "key"))

			sealed, err := s.Seal([]byte("secret"))
			require.NoError(t, err)
			sealed[len(sealed)-1] ^= 0xFF

			_, err = s.Open(sealed)
			require.Error(t, err)
		})
	}
}

func TestSealer_KeyFileIsReused(t *testing.T) {
	for name, mk := range newSealers(t) {
		t.Run(name, func(t *testing.T) {
			keyFile := filepath.Join(t.TempDir(), "nested", "key")

			sealed, err := mk(keyFile).Seal([]byte("persisted"))
			require.NoError(t, err)

			opened, err := mk(keyFile).Open(sealed)
			require.NoError(t, err)
			assert.Equal(t, []byte("persisted"), opened)

			if runtime.GOOS != "windows" {
				fi, err := os.Stat(keyFile)
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
			}
		})
	}
}

func TestAESGCMSealer_ShortInput(t *testing.T) {
	s, err := NewAESGCMSealer(bytes.Repeat([]byte{1}, AESKeySize))
	require.NoError(t, err)

	_, err = s.Open([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrSealedTooShort)
}

func TestNewAESGCMSealer_BadKeyLength(t *testing.T) {
	_, err := NewAESGCMSealer([]byte("short"))
	require.ErrorIs(t, err, ErrBadKey)
}

func TestLoadOrCreateAESKey_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("not-hex"), 0o600))

	_, err := LoadOrCreateAESKey(path)
	require.ErrorIs(t, err, ErrBadKey)

	require.NoError(t, os.WriteFile(path, []byte("abcd"), 0o600))
	_, err = LoadOrCreateAESKey(path)
	require.ErrorIs(t, err, ErrBadKey)
}

func TestLoadOrCreateAgeIdentity_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("AGE-SECRET-KEY-garbage"), 0o600))

	_, err := LoadOrCreateAgeIdentity(path)
	require.ErrorIs(t, err, ErrBadKey)
}

func TestNewSealer_Unknown(t *testing.T) {
	_, err := NewSealer("rot13", filepath.Join(t.TempDir(), "key"))
	require.ErrorIs(t, err, ErrUnknownSealer)
}

func TestNewSealer_EmptyKeyPath(t *testing.T) {
	_, err := NewSealer(SealerAESGCM, "")
	require.ErrorIs(t, err, ErrBadKey)
}
