package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/makrx/realtime/internal/realtime"
)

// Config holds journal batching settings.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
}

// Metrics contains journal counters.
type Metrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}

// eventRow is the database representation of a received event.
type eventRow struct {
	EventID    string
	EventType  string
	Source     string
	Payload    []byte
	EventTs    time.Time
	ReceivedAt time.Time
}

// Journal records received events into Postgres in batches. Record is
// safe to register as a dispatch handler: it only appends; all database
// I/O happens on the flush goroutine.
type Journal struct {
	cfg    Config
	logger *slog.Logger
	db     *pgxpool.Pool

	batch   []eventRow
	batchMu sync.Mutex
	kick    chan struct{}

	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics Metrics
}

// New creates a Journal writing through the given pool.
func New(cfg Config, db *pgxpool.Pool, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{
		cfg:    cfg,
		db:     db,
		logger: logger,
		batch:  make([]eventRow, 0, cfg.BatchSize),
		kick:   make(chan struct{}, 1),
	}
}

// Start begins the flush loop.
func (j *Journal) Start(ctx context.Context) error {
	j.ctx, j.cancel = context.WithCancel(ctx)
	j.flushTicker = time.NewTicker(j.cfg.FlushInterval)

	j.wg.Add(1)
	go j.flushLoop()

	j.logger.Info("event journal started",
		"batch_size", j.cfg.BatchSize,
		"flush_interval", j.cfg.FlushInterval,
	)
	return nil
}

// Stop shuts the journal down, flushing whatever is buffered.
func (j *Journal) Stop(ctx context.Context) error {
	j.logger.Info("stopping event journal")

	if j.cancel != nil {
		j.cancel()
	}
	if j.flushTicker != nil {
		j.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.logger.Info("event journal stopped")
	case <-ctx.Done():
		j.logger.Warn("event journal stop timed out")
	}

	// Final flush
	j.flush(context.Background())

	return nil
}

// Record buffers one event. Registered on the wildcard dispatch key.
func (j *Journal) Record(evt realtime.Event) {
	row := eventRow{
		EventID:    evt.ID,
		EventType:  evt.Type,
		Source:     evt.Source,
		Payload:    evt.Payload,
		EventTs:    evt.Timestamp,
		ReceivedAt: time.Now(),
	}

	j.batchMu.Lock()
	j.batch = append(j.batch, row)
	full := len(j.batch) >= j.cfg.BatchSize
	j.batchMu.Unlock()

	if full {
		select {
		case j.kick <- struct{}{}:
		default:
		}
	}
}

// Stats returns current metrics.
func (j *Journal) Stats() Metrics {
	j.batchMu.Lock()
	defer j.batchMu.Unlock()
	return j.metrics
}

// flushLoop flushes on the interval or when a batch fills.
func (j *Journal) flushLoop() {
	defer j.wg.Done()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-j.flushTicker.C:
			j.flush(j.ctx)
		case <-j.kick:
			j.flush(j.ctx)
		}
	}
}

// flush writes the current batch to the database.
func (j *Journal) flush(ctx context.Context) {
	j.batchMu.Lock()
	if len(j.batch) == 0 {
		j.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := j.batch
	j.batch = make([]eventRow, 0, j.cfg.BatchSize)
	j.batchMu.Unlock()

	start := time.Now()

	conflicts, err := j.batchInsert(ctx, batch)
	if err != nil {
		j.logger.Error("batch insert failed", "error", err, "count", len(batch))
		j.batchMu.Lock()
		j.metrics.Errors++
		j.batchMu.Unlock()
		return
	}

	j.batchMu.Lock()
	j.metrics.Inserts += int64(len(batch) - conflicts)
	j.metrics.Conflicts += int64(conflicts)
	j.metrics.Flushes++
	j.batchMu.Unlock()

	j.logger.Debug("flushed events",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (j *Journal) batchInsert(ctx context.Context, rows []eventRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO realtime_events (event_id, event_type, source, payload, event_ts, received_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (event_id) DO NOTHING
		`, r.EventID, r.EventType, r.Source, r.Payload, r.EventTs, r.ReceivedAt)
	}

	results := j.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
