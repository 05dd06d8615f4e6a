// Package password hashes and verifies user passwords with adaptive, salted
// one-way functions. Every Hash call draws a fresh random salt, so hashing
// the same password twice yields different records.
package password

import (
	"fmt"
)

// Hasher hashes passwords and checks plaintext against stored hashes.
type Hasher interface {
	// Hash returns a self-describing hash record including its salt.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches hash. A malformed or foreign
	// hash record yields false.
	Verify(plaintext, hash string) bool
}

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// New returns the Hasher for algorithm. bcryptCost is ignored for argon2id;
// zero selects the default cost.
func New(algorithm string, bcryptCost int) (Hasher, error) {
	switch algorithm {
	case "", AlgorithmBcrypt:
		if bcryptCost == 0 {
			return NewBcryptHasher(), nil
		}
		return NewBcryptHasher(WithCost(bcryptCost)), nil
	case AlgorithmArgon2id:
		return NewArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("unknown password hash algorithm %q", algorithm)
	}
}
