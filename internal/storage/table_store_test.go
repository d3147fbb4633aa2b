package storage

import (
	"testing"

	"github.com/annel0/footstep-fx/internal/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTableStore(t *testing.T) *TableStore {
	t.Helper()
	store, err := NewTableStore(t.TempDir())
	require.NoError(t, err, "Не удалось создать хранилище")
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadTable(t *testing.T) {
	store := setupTableStore(t)

	require.NoError(t, store.SaveTable("demo", surface.DemoTable()))

	table, err := store.LoadTable("demo")
	require.NoError(t, err)
	assert.Equal(t, surface.DemoTable().Build().Entries(), table.Build().Entries())

	registry, err := store.LoadRegistry("demo")
	require.NoError(t, err)
	assert.Equal(t, "sfx/step_grass", registry.Resolve(surface.KindGrass).Sound)
	assert.Equal(t, "sfx/step_default", registry.Resolve(surface.KindMetal).Sound)
}

func TestLoadMissingTable(t *testing.T) {
	store := setupTableStore(t)

	_, err := store.LoadTable("nope")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestListAndDeleteTables(t *testing.T) {
	store := setupTableStore(t)

	require.NoError(t, store.SaveTable("winter", &surface.Table{Rows: []surface.Row{{Type: surface.KindSnow, Sound: "crunch"}}}))
	require.NoError(t, store.SaveTable("demo", surface.DemoTable()))

	names, err := store.ListTables()
	require.NoError(t, err)
	assert.Equal(t, []string{"demo", "winter"}, names)

	require.NoError(t, store.DeleteTable("winter"))
	names, err = store.ListTables()
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, names)
}

func TestClosedStore(t *testing.T) {
	store, err := NewTableStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "повторное закрытие не должно падать")

	assert.ErrorIs(t, store.SaveTable("x", surface.DemoTable()), ErrStoreClosed)
	_, err = store.LoadTable("x")
	assert.ErrorIs(t, err, ErrStoreClosed)
}
