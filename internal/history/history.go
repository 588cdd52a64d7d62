// Package history keeps polled snapshots in a local SQLite database so
// readings can be inspected after the fact. Writes are buffered and
// flushed in batches.
package history

import (
	"context"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/table"
)

type service struct {
	repo   Repository
	cfg    Config
	logger logger.Logger
}

// No-op implementation
type noopStore struct{}

// NewService opens the history database, or returns a no-op store when
// history is disabled.
func NewService(cfg Config, log logger.Logger) (Store, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("History disabled, using no-op store")
		return &noopStore{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create history repository")
		return nil, err
	}

	return &service{
		repo:   repo,
		cfg:    cfg,
		logger: log.With("history"),
	}, nil
}

func (s *service) Record(ctx context.Context, snap *table.Snapshot) error {
	errFactory := errors.New()

	if snap == nil || snap.ID() == "" {
		return errFactory.New(ErrInvalidSnapshot)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Record(snap); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]Poll, error) {
	if limit < 1 {
		return nil, errors.New().WithData(errors.ErrInvalidArgument, limit)
	}
	return s.repo.Recent(ctx, limit)
}

func (s *service) Series(ctx context.Context, name string, limit int) ([]Point, error) {
	if limit < 1 {
		return nil, errors.New().WithData(errors.ErrInvalidArgument, limit)
	}
	return s.repo.Series(ctx, name, limit)
}

func (s *service) Close() error {
	if err := s.repo.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}

func (*service) Enabled() bool {
	return true
}

func (*noopStore) Record(_ context.Context, _ *table.Snapshot) error {
	return nil
}

func (*noopStore) Recent(_ context.Context, _ int) ([]Poll, error) {
	return nil, errors.New().New(ErrDisabled)
}

func (*noopStore) Series(_ context.Context, _ string, _ int) ([]Point, error) {
	return nil, errors.New().New(ErrDisabled)
}

func (*noopStore) Close() error {
	return nil
}

func (*noopStore) Enabled() bool {
	return false
}
