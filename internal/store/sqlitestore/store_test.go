package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
	"github.com/idilsaglam/shoplist/internal/store/storetest"
)

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Opener {
		path := filepath.Join(t.TempDir(), "state.db")
		return func() (store.Gateway, error) { return Open(context.Background(), path) }
	})
}

func TestSQLiteStoreCreatesTables(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "sub", "state.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	for _, table := range []string{"items", "prefs"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		require.NoError(t, err)
		assert.Equal(t, table, name)
	}
}

func TestSQLiteStoreCorruptDisplayMode(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.db.Exec(`INSERT INTO prefs(key,value) VALUES('display_mode','BROWSING')`)
	require.NoError(t, err)
	_, err = s.LoadDisplayMode(ctx)
	assert.ErrorIs(t, err, model.ErrInvalidDisplayMode)
}

func TestSQLiteStoreRejectsBadPayload(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.db.Exec(`INSERT INTO items(id,payload) VALUES(1,'{"description":"x","state":"LOST"}')`)
	require.NoError(t, err)
	_, err = s.LoadItems(ctx)
	assert.ErrorIs(t, err, model.ErrInvalidState)
}
