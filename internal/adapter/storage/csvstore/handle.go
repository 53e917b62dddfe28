package csvstore

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/observability/telemetry"
	"github.com/seu-repo/voice-banking/internal/ports"
)

// Handle owns the process-wide snapshot. The first caller loads the CSV
// directory; concurrent first callers wait for that single load and everyone
// afterwards gets the cached result, including a cached load error.
type Handle struct {
	dir  string
	log  *zap.Logger
	load func(dir string) (*Store, error)

	once  sync.Once
	store *Store
	err   error
}

func NewHandle(dir string, log *zap.Logger) *Handle {
	return &Handle{
		dir:  dir,
		log:  log,
		load: FromDirectory,
	}
}

// Dir is the resolved data directory this handle reads from.
func (h *Handle) Dir() string {
	return h.dir
}

// Store returns the snapshot, loading it on first use.
func (h *Handle) Store() (*Store, error) {
	h.once.Do(func() {
		start := time.Now()
		h.store, h.err = h.load(h.dir)
		elapsed := time.Since(start)
		telemetry.DataStoreLoadSeconds.Observe(elapsed.Seconds())

		if h.err != nil {
			h.log.Error("Failed to load data store", zap.String("dir", h.dir), zap.Error(h.err))
			return
		}
		for table, n := range h.store.Counts() {
			telemetry.DataStoreRows.WithLabelValues(table).Set(float64(n))
		}
		h.log.Info("Data store loaded",
			zap.String("dir", h.dir),
			zap.Duration("elapsed", elapsed),
			zap.Any("rows", h.store.Counts()),
		)
	})
	return h.store, h.err
}

// DataStore implements ports.DataStoreProvider.
func (h *Handle) DataStore(ctx context.Context) (ports.DataStore, error) {
	store, err := h.Store()
	if err != nil {
		return nil, err
	}
	return store, nil
}
