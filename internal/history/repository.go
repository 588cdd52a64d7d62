package history

import (
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/table"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db            *sql.DB
	logger        logger.Logger
	cfg           Config
	mu            sync.Mutex
	buffer        []*table.Snapshot
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
	closeOnce     sync.Once
}

func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2&_foreign_keys=1"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	if err := ValidateAndUpdateSchema(db, cfg.DBPath, cfg.BackupOnMigrate, log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Int("batch_size", cfg.BatchSize).
		Dur("batch_timeout", cfg.BatchTimeout).
		Msg("History repository initialized")

	repo := &repository{
		db:            db,
		logger:        log,
		cfg:           cfg,
		buffer:        make([]*table.Snapshot, 0, cfg.BatchSize),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	if cfg.BatchTimeout > 0 {
		repo.flushTicker = time.NewTicker(cfg.BatchTimeout)
		go repo.flusher()
	} else {
		close(repo.flushDoneChan)
	}

	return repo, nil
}

func (r *repository) Record(snap *table.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, snap)

	if len(r.buffer) >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

func (r *repository) Recent(ctx context.Context, limit int) ([]Poll, error) {
	if err := r.flushLocked(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, recentSQL, limit)
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageQuery, err)
	}
	defer rows.Close()

	var polls []Poll
	for rows.Next() {
		var (
			id         string
			capturedAt int64
			rec        table.Record
			value      sql.NullFloat64
		)
		if err := rows.Scan(&id, &capturedAt, &rec.Name, &rec.Offset, &rec.RawHex, &value, &rec.Unit); err != nil {
			return nil, errors.New().Wrap(ErrStorageQuery, err)
		}
		rec.Key = table.KeyForOffset(rec.Offset)
		rec.Value = fromNull(value)

		if n := len(polls); n == 0 || polls[n-1].ID != id {
			polls = append(polls, Poll{ID: id, CapturedAt: time.UnixMilli(capturedAt)})
		}
		last := &polls[len(polls)-1]
		last.Records = append(last.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New().Wrap(ErrStorageQuery, err)
	}

	return polls, nil
}

func (r *repository) Series(ctx context.Context, name string, limit int) ([]Point, error) {
	if err := r.flushLocked(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, seriesSQL, name, limit)
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageQuery, err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var (
			p          Point
			capturedAt int64
			value      sql.NullFloat64
		)
		if err := rows.Scan(&p.PollID, &capturedAt, &value, &p.Unit); err != nil {
			return nil, errors.New().Wrap(ErrStorageQuery, err)
		}
		p.CapturedAt = time.UnixMilli(capturedAt)
		p.Value = fromNull(value)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New().Wrap(ErrStorageQuery, err)
	}

	return points, nil
}

func (r *repository) Close() error {
	var closeErr error

	r.closeOnce.Do(func() {
		close(r.shutdownChan)
		if r.flushTicker != nil {
			r.flushTicker.Stop()
		}

		// Wait for the flusher to finish its final flush
		<-r.flushDoneChan

		r.mu.Lock()
		if err := r.flush(); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to flush history on close")
		}
		r.mu.Unlock()

		if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			closeErr = errors.New().WithData(ErrStorageClose, struct {
				Phase string
				Error string
			}{
				Phase: "checkpoint_wal",
				Error: err.Error(),
			})
			r.db.Close()
			return
		}

		if err := r.db.Close(); err != nil {
			closeErr = errors.New().WithData(ErrStorageClose, struct {
				Phase string
				Error string
			}{
				Phase: "close_database",
				Error: err.Error(),
			})
			return
		}

		r.logger.Info().Msg("History repository closed")
	})

	return closeErr
}

func (r *repository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				r.logger.Warn().Err(err).Msg("Periodic history flush failed")
			}
			r.mu.Unlock()
		case <-r.shutdownChan:
			return
		}
	}
}

func (r *repository) flushLocked() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

// flush writes the buffer in one transaction. Callers hold r.mu. On
// failure the buffer is kept so the next flush retries it.
func (r *repository) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to begin transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	rollback := func() {
		if err := tx.Rollback(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to roll back transaction")
		}
	}

	pollStmt, err := tx.Prepare(insertPollSQL)
	if err != nil {
		rollback()
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer pollStmt.Close()

	sampleStmt, err := tx.Prepare(insertSampleSQL)
	if err != nil {
		rollback()
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer sampleStmt.Close()

	for _, snap := range r.buffer {
		records := snap.Records()

		if _, err := pollStmt.Exec(snap.ID(), snap.CapturedAt().UnixMilli(), len(records)); err != nil {
			r.logger.Error().Err(err).Str("poll_id", snap.ID()).Msg("Failed to insert poll")
			rollback()
			return errFactory.Wrap(ErrTransactionFailed, err)
		}

		for i, rec := range records {
			if _, err := sampleStmt.Exec(snap.ID(), i, rec.Name, rec.Offset, rec.RawHex, toNull(rec.Value), rec.Unit); err != nil {
				r.logger.Error().Err(err).Str("poll_id", snap.ID()).Msg("Failed to insert sample")
				rollback()
				return errFactory.Wrap(ErrTransactionFailed, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to commit transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	r.logger.Debug().Int("polls", len(r.buffer)).Msg("Flushed history to database")
	r.buffer = r.buffer[:0]

	return nil
}

// SQLite has no NaN; unparsable readings are stored as NULL.
func toNull(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
