package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// AESKeySize is the key length for AES-256.
const AESKeySize = 32

// AESGCMSealer seals with AES-256-GCM. The random nonce is prefixed to the
// ciphertext.
type AESGCMSealer struct {
	aead cipher.AEAD
}

func NewAESGCMSealer(key []byte) (*AESGCMSealer, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrBadKey, AESKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &AESGCMSealer{aead: aead}, nil
}

func (s *AESGCMSealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := common.GenerateRandByteArray(s.aead.NonceSize())
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *AESGCMSealer) Open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n+s.aead.Overhead() {
		return nil, ErrSealedTooShort
	}
	return s.aead.Open(nil, sealed[:n], sealed[n:], nil)
}

// LoadOrCreateAESKey reads a hex-encoded key from path, generating and
// writing a new random one if the file does not exist.
func LoadOrCreateAESKey(path string) ([]byte, error) {
	data, err := loadOrCreateKeyFile(path, func() (string, error) {
		return common.MakeRandHexString(AESKeySize)
	})
	if err != nil {
		return nil, err
	}

	key, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadKey, path, err)
	}
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: %s: want %d bytes, got %d", ErrBadKey, path, AESKeySize, len(key))
	}
	return key, nil
}
