package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"majin/pkg/types"
)

func TestMemoryDefaultsAndMerge(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	s, err := m.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, types.ThemeSystem, s.Theme)
	require.Nil(t, s.Profile)

	s, err = m.Update(ctx, types.Settings{Theme: types.ThemeDark})
	require.NoError(t, err)
	require.Equal(t, types.ThemeDark, s.Theme)

	s, err = m.Update(ctx, types.Settings{Profile: &types.Profile{Name: " Ada ", Email: "ada@example.com"}})
	require.NoError(t, err)
	require.Equal(t, types.ThemeDark, s.Theme)
	require.Equal(t, "Ada", s.Profile.Name)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.Update(ctx, types.Settings{Theme: "neon"})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = m.Update(ctx, types.Settings{Profile: &types.Profile{Name: "Ada"}})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = m.Update(ctx, types.Settings{Profile: &types.Profile{Name: "Ada", Email: "not-an-email"}})
	require.ErrorIs(t, err, ErrInvalid)

	s, _ := m.Get(ctx)
	require.Nil(t, s.Profile)
	require.Equal(t, types.ThemeSystem, s.Theme)
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.db")

	b, err := OpenBolt(path)
	require.NoError(t, err)
	s, err := b.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, Defaults(), s)

	_, err = b.Update(ctx, types.Settings{
		Profile: &types.Profile{Name: "Grace", Email: "grace@example.com"},
		Theme:   types.ThemeLight,
	})
	require.NoError(t, err)
	_, err = b.Update(ctx, types.Settings{Theme: "bogus"})
	require.Error(t, err)
	require.NoError(t, b.Close())

	b, err = OpenBolt(path)
	require.NoError(t, err)
	defer b.Close()
	s, err = b.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, types.ThemeLight, s.Theme)
	require.Equal(t, "grace@example.com", s.Profile.Email)
}
