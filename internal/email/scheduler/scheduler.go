package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mailsweep/internal/email/usecase"

	"go.uber.org/zap"
)

const (
	DefaultInterval = 1 * time.Minute
	triggerBuffer   = 32
	degradedBatch   = 20
)

// SyncScheduler runs the mailbox sync on a fixed interval. Push triggers are
// queued onto the same goroutine so accounts are never synced concurrently.
type SyncScheduler struct {
	sync     usecase.SyncUsecase
	interval time.Duration
	triggers chan string
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	log      *zap.Logger
}

// NewSyncScheduler creates a new scheduler
func NewSyncScheduler(syncUsecase usecase.SyncUsecase, interval time.Duration, log *zap.Logger) *SyncScheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &SyncScheduler{
		sync:     syncUsecase,
		interval: interval,
		triggers: make(chan string, triggerBuffer),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
		log:      log.Named("scheduler"),
	}
}

// Start begins the scheduler loop
func (s *SyncScheduler) Start(ctx context.Context) {
	s.log.Info("starting sync scheduler", zap.Duration("interval", s.interval))

	go func() {
		defer close(s.done)

		// Run immediately on start
		s.RunOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case email := <-s.triggers:
				s.syncOne(ctx, email)
			case <-ctx.Done():
				s.log.Info("scheduler stopped", zap.Error(ctx.Err()))
				return
			case <-s.stopChan:
				s.log.Info("scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler and waits for the current run to end.
func (s *SyncScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.done
}

// Trigger queues a single-account sync. It reports false when the queue is
// full; the next tick covers the account anyway.
func (s *SyncScheduler) Trigger(accountEmail string) bool {
	select {
	case s.triggers <- accountEmail:
		return true
	default:
		s.log.Warn("trigger queue full, dropping", zap.String("account", accountEmail))
		return false
	}
}

// RunOnce syncs every account, then retries degraded enrichment. Failures,
// panics included, are logged and never escape.
func (s *SyncScheduler) RunOnce(ctx context.Context) {
	s.guard("sync all", func() error {
		start := time.Now()
		if err := s.sync.SyncAll(ctx); err != nil {
			return err
		}
		s.log.Debug("sync pass finished", zap.Duration("took", time.Since(start)))
		s.sync.RetryDegraded(ctx, degradedBatch)
		return nil
	})
}

func (s *SyncScheduler) syncOne(ctx context.Context, email string) {
	s.guard("triggered sync", func() error {
		return s.sync.SyncAccountByEmail(ctx, email)
	})
}

func (s *SyncScheduler) guard(what string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(what+" panicked", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	if err := fn(); err != nil {
		s.log.Error(what+" failed", zap.Error(err))
	}
}
