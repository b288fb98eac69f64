package sessions

import (
	"context"
	"log/slog"
	"time"
)

type Expirer interface {
	DeleteExpired(ctx context.Context) (int, error)
}

type SweeperConfig struct {
	Interval time.Duration
	// OnSwept, when set, receives the number of sessions removed by each pass.
	OnSwept func(removed int)
}

// Sweeper periodically prunes expired sessions from a store that does not
// expire keys on its own.
type Sweeper struct {
	cfg   SweeperConfig
	store Expirer
	log   *slog.Logger
}

func NewSweeper(cfg SweeperConfig, store Expirer, log *slog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Sweeper{cfg: cfg, store: store, log: log}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("session sweeper stopped")
			return nil

		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.log.Warn("session sweep failed", "err", err)
			}
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	removed, err := s.store.DeleteExpired(sweepCtx)
	if err != nil {
		return 0, err
	}

	if s.cfg.OnSwept != nil {
		s.cfg.OnSwept(removed)
	}
	if removed > 0 {
		s.log.Info("expired sessions pruned", "removed", removed)
	}
	return removed, nil
}
