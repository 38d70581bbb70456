package export

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aarforge/aarforge/pkg/errors"
)

// Snapshot is a stored build-rule graph with provenance: which build file
// produced it and when.
type Snapshot struct {
	ID        string    `json:"id" bson:"_id"`
	BuildFile string    `json:"build_file" bson:"build_file"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Graph     Graph     `json:"graph" bson:"graph"`
}

// NewSnapshot creates a snapshot of the graph with a fresh ID.
func NewSnapshot(buildFile string, g Graph) Snapshot {
	return Snapshot{
		ID:        uuid.NewString(),
		BuildFile: buildFile,
		CreatedAt: time.Now().UTC(),
		Graph:     g,
	}
}

// SnapshotStore persists snapshots. Implementations must be safe for
// concurrent use.
type SnapshotStore interface {
	// Save stores a snapshot.
	Save(ctx context.Context, s Snapshot) error

	// Get retrieves a snapshot by ID. Returns a NOT_FOUND error when no
	// snapshot with that ID exists.
	Get(ctx context.Context, id string) (Snapshot, error)

	// List returns all snapshots, newest first.
	List(ctx context.Context) ([]Snapshot, error)

	// Close releases the store's resources.
	Close(ctx context.Context) error
}

// MemoryStore is an in-process SnapshotStore, used by tests and as the
// default when no MongoDB URI is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]Snapshot)}
}

// Save implements SnapshotStore.
func (s *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.ID] = snap
	return nil
}

// Get implements SnapshotStore.
func (s *MemoryStore) Get(_ context.Context, id string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[id]
	if !ok {
		return Snapshot{}, errors.New(errors.ErrCodeNotFound, "snapshot %s not found", id)
	}
	return snap, nil
}

// List implements SnapshotStore.
func (s *MemoryStore) List(_ context.Context) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	slices.SortFunc(out, func(a, b Snapshot) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Close implements SnapshotStore.
func (s *MemoryStore) Close(context.Context) error { return nil }
