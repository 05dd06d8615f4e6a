// Package cryptox seals small secrets at rest. A Sealer encrypts and
// authenticates a byte slice with a key that lives outside the sealed data,
// typically in a key file next to the user's data directory.
package cryptox

import (
	"errors"
	"fmt"
	"strings"
)

// Sealer encrypts and decrypts opaque blobs. Open fails when the blob was
// produced with a different key or has been modified.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

const (
	SealerAge    = "age"
	SealerAESGCM = "aes"
)

var (
	ErrUnknownSealer  = errors.New("unknown sealer")
	ErrSealedTooShort = errors.New("sealed data too short")
	ErrBadKey         = errors.New("bad key")
)

// NewSealer builds a Sealer of the given kind whose key is kept in keyFile.
// The key file is created with mode 0600 on first use.
func NewSealer(kind, keyFile string) (Sealer, error) {
	switch strings.ToLower(kind) {
	case SealerAge, "":
		id, err := LoadOrCreateAgeIdentity(keyFile)
		if err != nil {
			return nil, err
		}
		return NewAgeSealer(id), nil
	case SealerAESGCM, "aes-gcm":
		key, err := LoadOrCreateAESKey(keyFile)
		if err != nil {
			return nil, err
		}
		return NewAESGCMSealer(key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSealer, kind)
	}
}
