package provider

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/soup/pkg/dag"
	"github.com/matzehuels/soup/pkg/deps"
)

// Snapshot is an immutable view of one resolution run.
type Snapshot struct {
	ID            string              `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	RootPath      string              `json:"root_path"`
	Graph         *dag.Graph          `json:"graph"`
	Provider      *Provider           `json:"provider"`
	Notifications []deps.Notification `json:"notifications"`
	Truncated     bool                `json:"truncated"`
}

// NewSnapshot converts a resolution result into a Snapshot with a fresh id.
func NewSnapshot(rootPath string, res *deps.Result) (*Snapshot, error) {
	p, err := FromResolution(res)
	if err != nil {
		return nil, err
	}
	notes := res.Notifications
	if notes == nil {
		notes = []deps.Notification{}
	}
	return &Snapshot{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		RootPath:      rootPath,
		Graph:         res.Graph,
		Provider:      p,
		Notifications: notes,
		Truncated:     res.Truncated,
	}, nil
}

// Store publishes snapshots to concurrent readers. Readers never block;
// Publish swaps the current snapshot atomically.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, or nil before the first Publish.
func (s *Store) Load() *Snapshot { return s.current.Load() }

// Publish makes snap the current snapshot and returns the previous one.
func (s *Store) Publish(snap *Snapshot) *Snapshot { return s.current.Swap(snap) }
