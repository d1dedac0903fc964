package refresher

import (
	"context"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/rs/zerolog/log"
)

// TokenAcquirer forces credential refreshes. Satisfied by silent.Service.
type TokenAcquirer interface {
	Acquire(ctx context.Context, accountID string, scopes []string, forceRefresh bool) (*token.Record, error)
}

// Scheduler periodically sweeps the token cache and refreshes every
// credential within the buffer window of its expiry, so foreground
// acquisitions almost always hit a warm cache entry.
//
// The loop is single-threaded: one tick runs to completion before the next
// sleep begins, ticks never overlap, and shutdown takes effect between
// ticks, never mid-refresh.
type Scheduler struct {
	cache    token.Cache
	acquirer TokenAcquirer
	buffer   time.Duration
	interval time.Duration
	nowTime  func() time.Time // injectable for testing

	stopCh chan struct{}
	doneCh chan struct{}
}

// SchedulerOption defines a function type to modify the Scheduler instance.
type SchedulerOption func(*Scheduler)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.nowTime = nowFunc
	}
}

// New creates a scheduler from the refresh configuration.
func New(cache token.Cache, acquirer TokenAcquirer, cfg config.RefreshConfig, options ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		cache:    cache,
		acquirer: acquirer,
		buffer:   cfg.GetRefreshBuffer(),
		interval: cfg.GetCheckInterval(),
		nowTime:  time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Start begins the background sweep loop. Non-blocking; call Stop to shut
// it down.
func (s *Scheduler) Start() {
	go s.run()
	log.Info().
		Dur("buffer", s.buffer).
		Dur("interval", s.interval).
		Msg("Proactive token refresh started")
}

// Stop shuts down the sweep loop, blocking until any in-progress tick has
// run to completion.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
	log.Info().Msg("Proactive token refresh stopped")
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one tick: every record expiring within the buffer window gets
// one forced refresh. A failure for one account is logged and does not
// abort the remaining accounts; nothing raised here ever terminates the
// loop.
func (s *Scheduler) Sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic during refresh sweep")
		}
	}()

	due, err := s.cache.ListExpiringBefore(s.nowTime().Add(s.buffer))
	if err != nil {
		log.Err(err).Msg("Failed to list expiring records")
		return
	}

	for _, record := range due {
		remaining := record.ExpiresAt.Sub(s.nowTime())
		if remaining <= 0 {
			log.Info().Str("account_id", record.AccountID).Msg("Access credential already expired, attempting silent refresh")
		} else {
			log.Info().
				Str("account_id", record.AccountID).
				Dur("remaining", remaining).
				Dur("buffer", s.buffer).
				Msg("Access credential nearing expiry, refreshing proactively")
		}

		if _, err := s.acquirer.Acquire(ctx, record.AccountID, record.Scopes, true); err != nil {
			log.Warn().Err(err).Str("account_id", record.AccountID).Msg("Proactive refresh failed")
			continue
		}
		log.Info().Str("account_id", record.AccountID).Msg("Proactively refreshed credential")
	}
}
