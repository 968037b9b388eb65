// Package sqlitestore keeps the list in a single SQLite file through the
// pure-Go modernc driver. Items are JSON payloads keyed by id; the id
// high-water mark and the view preferences live in a small prefs table.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
)

const DefaultFileName = "shoplist.db"

const (
	prefMaxItemID   = "max_item_id"
	prefDisplayMode = "display_mode"
	prefStoreFilter = "store_filter"
)

type Store struct {
	mu   sync.Mutex
	db  *sql.DB
	ids store.IDAllocator
}

var _ store.Gateway = (*Store)(nil)

// Open creates the schema if needed and rebuilds id holes from the rows present.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = DefaultFileName
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time keeps SQLITE_BUSY out of the picture.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return fmt.Errorf("create items table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS prefs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create prefs table: %w", err)
	}

	raw, err := s.pref(ctx, prefMaxItemID)
	if err != nil {
		return err
	}
	mark := 0
	if raw != "" {
		if mark, err = strconv.Atoi(raw); err != nil {
			return fmt.Errorf("decode %s: %w", prefMaxItemID, err)
		}
	}
	present := map[int]bool{}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM items`)
	if err != nil {
		return fmt.Errorf("select ids: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		present[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("select ids: %w", err)
	}
	s.ids.Reset(mark, func(id int) bool { return present[id] })
	return nil
}

func (s *Store) pref(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select pref %s: %w", key, err)
	}
	return v, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putPref(ctx context.Context, db execer, key, value string) error {
	if _, err := db.ExecContext(ctx, `INSERT INTO prefs(key,value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value); err != nil {
		return fmt.Errorf("upsert pref %s: %w", key, err)
	}
	return nil
}

func (s *Store) LoadItems(ctx context.Context) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.Item
	for rows.Next() {
		var (
			id      int
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var it model.Item
		if err := json.Unmarshal(payload, &it); err != nil {
			return nil, fmt.Errorf("decode item %d: %w", id, err)
		}
		it.ID = id
		if it.StoreAisles == nil {
			it.StoreAisles = map[string]string{}
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return out, nil
}

func (s *Store) SaveItem(ctx context.Context, it model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("encode item %d: %w", it.ID, err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO items(id,payload) VALUES(?,?) ON CONFLICT(id) DO UPDATE SET payload=excluded.payload`, it.ID, payload); err != nil {
		return fmt.Errorf("upsert item %d: %w", it.ID, err)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, it model.Item) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, it.ID); err != nil {
		return fmt.Errorf("delete item %d: %w", it.ID, err)
	}
	before := s.ids.Clone()
	if s.ids.Release(it.ID) {
		if err := putPref(ctx, tx, prefMaxItemID, strconv.Itoa(s.ids.Max())); err != nil {
			s.ids = before
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		s.ids = before
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) UnusedItemID(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.ids.Clone()
	id, grew := s.ids.Next()
	if grew {
		if err := putPref(ctx, s.db, prefMaxItemID, strconv.Itoa(s.ids.Max())); err != nil {
			s.ids = before
			return 0, err
		}
	}
	return id, nil
}

func (s *Store) Clear(ctx context.Context) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	if err := putPref(ctx, tx, prefMaxItemID, "0"); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.ids.Clear()
	return nil
}

func (s *Store) LoadDisplayMode(ctx context.Context) (model.DisplayMode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.pref(ctx, prefDisplayMode)
	if err != nil {
		return 0, err
	}
	return store.ParseDisplayMode(raw)
}

func (s *Store) SaveDisplayMode(ctx context.Context, mode model.DisplayMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putPref(ctx, s.db, prefDisplayMode, mode.String())
}

func (s *Store) LoadStoreFilter(ctx context.Context) (model.StoreFilter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.pref(ctx, prefStoreFilter)
	if err != nil {
		return model.StoreFilter{}, err
	}
	return model.ParseStoreFilter(raw), nil
}

func (s *Store) SaveStoreFilter(ctx context.Context, f model.StoreFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putPref(ctx, s.db, prefStoreFilter, f.String())
}

func (s *Store) Close() error { return s.db.Close() }
