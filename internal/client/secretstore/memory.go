package secretstore

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// MemoryStore keeps the credential in process memory only.
type MemoryStore struct {
	mu     sync.Mutex
	secret []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, secret []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	common.WipeByteArray(s.secret)
	s.secret = make([]byte, len(secret))
	copy(s.secret, secret)
	return nil
}

func (s *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.secret == nil {
		return nil, common.ErrorNotFound
	}
	out := make([]byte, len(s.secret))
	copy(out, s.secret)
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	common.WipeByteArray(s.secret)
	s.secret = nil
	return nil
}
