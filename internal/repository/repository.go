// Package repository holds the conversation store backends. A store maps a
// conversation id to its append-only list of turns; entries are created on
// first append and never removed.
package repository

import (
	"context"

	"university-form-agent/internal/domain"
)

// Store is implemented by MemoryStore and DynamoStore.
type Store interface {
	// Get returns the turns of a conversation in arrival order. The bool is
	// false when the id has never been appended to.
	Get(ctx context.Context, conversationID string) ([]domain.Turn, bool, error)
	// Append adds a turn, creating the conversation if needed.
	Append(ctx context.Context, conversationID string, turn domain.Turn) error
}
