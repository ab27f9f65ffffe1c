// Package settings persists the local user profile and theme preference.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"majin/pkg/types"
)

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("invalid settings")

// Store reads and updates the settings document.
type Store interface {
	// Get returns the stored settings, or defaults when none are stored.
	Get(ctx context.Context) (types.Settings, error)
	// Update merges s into the stored settings and returns the result. A nil
	// profile or an empty theme leaves the stored value unchanged.
	Update(ctx context.Context, s types.Settings) (types.Settings, error)
}

// Defaults returns the settings used before anything is saved.
func Defaults() types.Settings {
	return types.Settings{Theme: types.ThemeSystem}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func merge(cur, in types.Settings) (types.Settings, error) {
	if in.Profile != nil {
		p := *in.Profile
		p.Name = strings.TrimSpace(p.Name)
		p.Email = strings.TrimSpace(p.Email)
		cur.Profile = &p
	}
	if in.Theme != "" {
		cur.Theme = in.Theme
	}
	if cur.Theme == "" {
		cur.Theme = types.ThemeSystem
	}
	if err := validate.Struct(cur); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return cur, fmt.Errorf("%w: %s failed %s", ErrInvalid, strings.ToLower(fe.Field()), fe.Tag())
		}
		return cur, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cur, nil
}

var _ Store = (*Memory)(nil)

// Memory keeps settings in process memory.
type Memory struct {
	mu sync.Mutex
	s  types.Settings
}

// NewMemory returns a Memory holding Defaults.
func NewMemory() *Memory { return &Memory{s: Defaults()} }

func (m *Memory) Get(context.Context) (types.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *Memory) Update(_ context.Context, s types.Settings) (types.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := merge(m.s, s)
	if err != nil {
		return m.s, err
	}
	m.s = next
	return next, nil
}
