package worker

import (
	"context"
	"log/slog"
	"time"

	"booking-service/internal/lock"
	"booking-service/pkg/sl"
)

const sweepLockKey = "sweep:bookings"

type ElapsedCompleter interface {
	CompleteElapsed(ctx context.Context) (int64, error)
}

// Sweeper periodically completes elapsed bookings. Across replicas only the
// holder of the sweep lock runs a given tick.
type Sweeper struct {
	log       *slog.Logger
	locker    lock.Locker
	completer ElapsedCompleter
	interval  time.Duration
	lockTTL   time.Duration
	held      bool
}

func NewSweeper(log *slog.Logger, locker lock.Locker, completer ElapsedCompleter, interval, lockTTL time.Duration) *Sweeper {
	return &Sweeper{
		log:       log.With(slog.String("component", "sweeper")),
		locker:    locker,
		completer: completer,
		interval:  interval,
		lockTTL:   lockTTL,
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("sweeper started", slog.Duration("interval", s.interval))

	for {
		s.RunOnce(ctx)

		select {
		case <-ctx.Done():
			s.release()
			s.log.Info("sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce reports whether this replica held the lock and swept.
func (s *Sweeper) RunOnce(ctx context.Context) bool {
	const op = "worker.Sweeper.RunOnce"

	log := s.log.With(slog.String("op", op))

	ok, err := s.locker.Lock(ctx, sweepLockKey, s.lockTTL)
	if err != nil {
		log.Error("failed to take sweep lock", sl.Err(err))
		return false
	}
	if !ok {
		log.Debug("sweep lock held elsewhere")
		return false
	}
	// the lease is left to expire so other replicas skip the rest of this tick
	s.held = true

	n, err := s.completer.CompleteElapsed(ctx)
	if err != nil {
		log.Error("sweep failed", sl.Err(err))
		return true
	}

	log.Debug("sweep done", slog.Int64("completed", n))
	return true
}

// release hands the lease back on shutdown so another replica can sweep
// without waiting for it to expire. A lease that already passed to another
// replica is left alone by the lock.
func (s *Sweeper) release() {
	if !s.held {
		return
	}
	s.held = false

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.locker.Unlock(ctx, sweepLockKey); err != nil {
		s.log.Warn("failed to release sweep lock", sl.Err(err))
	}
}
