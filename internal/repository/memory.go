package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"university-form-agent/internal/domain"
)

// MemoryStore keeps conversations for the lifetime of the process. There is
// no eviction. Turns are cloned on the way in and out.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]domain.Turn
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conversations: make(map[string][]domain.Turn)}
}

func (s *MemoryStore) Get(_ context.Context, conversationID string) ([]domain.Turn, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.conversations[conversationID]
	if !ok {
		return nil, false, nil
	}
	out := make([]domain.Turn, len(turns))
	for i, turn := range turns {
		out[i] = turn.Clone()
	}
	return out, true, nil
}

func (s *MemoryStore) Append(_ context.Context, conversationID string, turn domain.Turn) error {
	if strings.TrimSpace(conversationID) == "" {
		return errors.New("repository: conversation id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[conversationID] = append(s.conversations[conversationID], turn.Clone())
	return nil
}
