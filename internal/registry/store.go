// Package registry owns the stored model configurations. Two implementations
// share the Store interface: a MongoDB-backed store and an in-memory store
// used by tests and single-process deployments.
package registry

import (
	"context"
	"errors"

	"majin/pkg/types"
)

var (
	// ErrNotFound is returned when no record matches an id or active name.
	ErrNotFound = errors.New("model not found")
	// ErrInvalid wraps validation failures on insert and update.
	ErrInvalid = errors.New("invalid model config")
	// ErrDuplicateName is returned when a write would leave two active
	// configs with the same name.
	ErrDuplicateName = errors.New("an active model with this name already exists")
)

// Store is the model registry.
type Store interface {
	// Insert stores cfg and returns its generated id. cfg.ID is ignored.
	Insert(ctx context.Context, cfg types.ModelConfig) (string, error)
	// Update applies patch to the record with id.
	Update(ctx context.Context, id string, patch types.ModelPatch) error
	// Delete removes the record with id.
	Delete(ctx context.Context, id string) error
	// List returns every record, active or not.
	List(ctx context.Context) ([]types.ModelConfig, error)
	// FindActive returns the active record named name.
	FindActive(ctx context.Context, name string) (types.ModelConfig, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalid reports whether err is or wraps ErrInvalid.
func IsInvalid(err error) bool { return errors.Is(err, ErrInvalid) }

// IsDuplicateName reports whether err is or wraps ErrDuplicateName.
func IsDuplicateName(err error) bool { return errors.Is(err, ErrDuplicateName) }
