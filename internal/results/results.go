// Package results keeps the history of fan-out runs.
package results

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"majin/pkg/types"
)

// DefaultLimit is applied by List when limit <= 0.
const DefaultLimit = 50

// ErrInvalid is returned for batches that cannot be stored.
var ErrInvalid = errors.New("invalid result batch")

// Store persists result batches.
type Store interface {
	// Save stores b and returns its id. A missing id or timestamp is filled in.
	Save(ctx context.Context, b types.ResultBatch) (string, error)
	// List returns up to limit batches, newest first.
	List(ctx context.Context, limit int) ([]types.ResultBatch, error)
}

// prepare validates b and fills its id and timestamp.
func prepare(b types.ResultBatch, now func() time.Time) (types.ResultBatch, error) {
	if b.Prompt == "" {
		return b, fmt.Errorf("%w: prompt is required", ErrInvalid)
	}
	if len(b.Results) == 0 {
		return b, fmt.Errorf("%w: results are required", ErrInvalid)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now().UTC()
	}
	if b.ContentType == "" {
		b.ContentType = types.ContentText
	}
	return b, nil
}

var _ Store = (*Memory)(nil)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.Mutex
	batches []types.ResultBatch
	now     func() time.Time
}

// NewMemory returns an empty in-memory result store.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Save(_ context.Context, b types.ResultBatch) (string, error) {
	b, err := prepare(b, m.now)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.batches = append(m.batches, b)
	m.mu.Unlock()
	return b.ID, nil
}

func (m *Memory) List(_ context.Context, limit int) ([]types.ResultBatch, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m.mu.Lock()
	out := append([]types.ResultBatch(nil), m.batches...)
	m.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
