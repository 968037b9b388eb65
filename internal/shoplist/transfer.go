package shoplist

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/idilsaglam/shoplist/internal/model"
)

const maxLineBytes = 1 << 20

// Export writes one line per item, in collection order.
func (m *Manager) Export(ctx context.Context, w io.Writer) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bw := bufio.NewWriter(w)
	count := 0
	for _, it := range m.items {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if _, err := bw.WriteString(it.MarshalLine() + "\n"); err != nil {
			return count, fmt.Errorf("export: %w", err)
		}
		count++
	}
	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("export: %w", err)
	}
	m.log.Debug("exported items", zap.Int("count", count))
	return count, nil
}

type ImportResult struct {
	Imported int
	Skipped  int
	Elapsed  time.Duration
	// Err is set when reading or storing stopped the import early. Items
	// imported before that point are kept.
	Err error
}

// Import replaces the whole list with the items in r. Every imported item
// starts as not needed, the display goes back to planning with all stores,
// and lines without a description are skipped. The new collection becomes
// visible all at once when the import finishes.
func (m *Manager) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	if err := m.beginImport(); err != nil {
		return ImportResult{}, err
	}
	res := m.runImport(ctx, r)
	return res, res.Err
}

// StartImport runs Import in the background. The channel yields exactly one
// result and is then closed. Starting while another import runs fails with
// ErrImportInProgress.
func (m *Manager) StartImport(ctx context.Context, r io.Reader) (<-chan ImportResult, error) {
	if err := m.beginImport(); err != nil {
		return nil, err
	}
	done := make(chan ImportResult, 1)
	go func() {
		defer close(done)
		done <- m.runImport(ctx, r)
	}()
	return done, nil
}

func (m *Manager) beginImport() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.importing {
		return ErrImportInProgress
	}
	m.importing = true
	return nil
}

func (m *Manager) runImport(ctx context.Context, r io.Reader) (res ImportResult) {
	start := time.Now()
	if err := m.gw.Clear(ctx); err != nil {
		m.mu.Lock()
		m.importing = false
		m.mu.Unlock()
		res.Err = fmt.Errorf("clear store: %w", err)
		m.log.Error("import aborted", zap.Error(res.Err))
		return res
	}

	var items []model.Item
	defer func() {
		m.finishImport(context.WithoutCancel(ctx), items)
		res.Elapsed = time.Since(start)
	}()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}
		id, err := m.gw.UnusedItemID(ctx)
		if err != nil {
			res.Err = fmt.Errorf("allocate id: %w", err)
			break
		}
		it, err := model.ParseLine(id, line)
		if err != nil {
			m.log.Warn("unable to import item", zap.Int("line", lineNo), zap.String("text", line), zap.Error(err))
			res.Skipped++
			if err := m.gw.DeleteItem(ctx, model.Item{ID: id}); err != nil {
				res.Err = fmt.Errorf("release id: %w", err)
				break
			}
			continue
		}
		it.State = model.DontNeed
		if err := m.gw.SaveItem(ctx, it); err != nil {
			res.Err = fmt.Errorf("save item: %w", err)
			break
		}
		items = append(items, it)
		res.Imported++
	}
	if res.Err == nil {
		if err := sc.Err(); err != nil {
			res.Err = fmt.Errorf("read: %w", err)
		}
	}
	if res.Err != nil {
		m.log.Error("import stopped early", zap.Int("imported", res.Imported), zap.Error(res.Err))
	} else {
		m.log.Info("imported items", zap.Int("imported", res.Imported), zap.Int("skipped", res.Skipped))
	}
	return res
}

// finishImport swaps in the imported collection and releases the import guard.
func (m *Manager) finishImport(ctx context.Context, items []model.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.importing = false
	m.items = items
	m.reindex()
	m.mode = model.Planning
	m.filter = model.AllStores()
	if err := m.gw.SaveDisplayMode(ctx, m.mode); err != nil {
		m.log.Warn("save display mode", zap.Error(err))
	}
	if err := m.gw.SaveStoreFilter(ctx, m.filter); err != nil {
		m.log.Warn("save store filter", zap.Error(err))
	}
}
