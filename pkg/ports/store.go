package ports

import (
	"context"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// ThreadStore persists conversation state by thread id. The engine writes
// after every node execution, so a crash mid-turn loses at most one node's
// work. Last-write-wins per key is sufficient: there is never more than one
// writer per thread in the intended deployment.
type ThreadStore interface {
	// Save persists the latest snapshot for a thread.
	Save(ctx context.Context, threadID string, state *domain.State) error

	// Load retrieves the latest snapshot.
	// Returns domain.ErrThreadNotFound if the thread does not exist.
	Load(ctx context.Context, threadID string) (*domain.State, error)

	// Delete removes the thread's state.
	Delete(ctx context.Context, threadID string) error

	// List returns the ids of all known threads.
	List(ctx context.Context) ([]string, error)
}
