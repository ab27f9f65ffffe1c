package registry

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"majin/pkg/types"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store. Ids are ObjectID hex strings so callers see
// the same id shape as with the MongoDB store.
type Memory struct {
	mu      sync.RWMutex
	records map[string]types.ModelConfig
	// order preserves insertion order for List.
	order []string
}

// NewMemory returns an empty in-memory registry seeded with cfgs. Seeds that
// fail validation are returned as an error.
func NewMemory(cfgs ...types.ModelConfig) (*Memory, error) {
	m := &Memory{records: make(map[string]types.ModelConfig)}
	for _, c := range cfgs {
		if _, err := m.Insert(context.Background(), c); err != nil {
			return nil, fmt.Errorf("seed %q: %w", c.Name, err)
		}
	}
	return m, nil
}

func (m *Memory) Insert(_ context.Context, cfg types.ModelConfig) (string, error) {
	if err := Validate(cfg); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg.Active && m.activeNameTaken(cfg.Name, "") {
		return "", ErrDuplicateName
	}
	cfg.ID = primitive.NewObjectID().Hex()
	m.records[cfg.ID] = cfg
	m.order = append(m.order, cfg.ID)
	return cfg.ID, nil
}

func (m *Memory) Update(_ context.Context, id string, patch types.ModelPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	next := patch.Apply(cur)
	if err := Validate(next); err != nil {
		return err
	}
	if next.Active && m.activeNameTaken(next.Name, id) {
		return ErrDuplicateName
	}
	m.records[id] = next
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) List(_ context.Context) ([]types.ModelConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.ModelConfig, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id])
	}
	return out, nil
}

func (m *Memory) FindActive(_ context.Context, name string) (types.ModelConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if c := m.records[id]; c.Active && c.Name == name {
			return c, nil
		}
	}
	return types.ModelConfig{}, ErrNotFound
}

func (m *Memory) Ping(context.Context) error { return nil }

// activeNameTaken reports whether another active record (id != except) uses
// name. Callers hold m.mu.
func (m *Memory) activeNameTaken(name, except string) bool {
	for id, c := range m.records {
		if id != except && c.Active && c.Name == name {
			return true
		}
	}
	return false
}
