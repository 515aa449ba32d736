// Package scheduler drives the periodic probe loop: on each tick it scans
// for due targets and dispatches one probe goroutine per target, bounded by
// a counting semaphore, each persisting its result in its own transaction.
package scheduler

import (
	"context"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/semaphore"

	"github.com/last-emo-boy/uptime-core/internal/prober"
	"github.com/last-emo-boy/uptime-core/internal/store"
)

const defaultTick = 60 * time.Second

// Scheduler periodically probes every due target.
type Scheduler struct {
	store       *store.Store
	concurrency int64
	tick        time.Duration

	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// New builds a Scheduler. concurrency is the maximum number of probes
// in flight at once across all targets.
func New(s *store.Store, concurrency int) *Scheduler {
	return &Scheduler{
		store:       s,
		concurrency: int64(concurrency),
		tick:        defaultTick,
		sem:         semaphore.NewWeighted(int64(concurrency)),
	}
}

// Run blocks, ticking every s.tick until ctx is cancelled. On cancellation
// it waits for in-flight probes to finish before returning, so a shutdown
// never truncates a probe mid-write.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("🔍 Starting probe scheduler (tick=%s, concurrency=%d)", s.tick, s.concurrency)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.runTick(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Scheduler stopping, waiting for in-flight probes...")
			s.wg.Wait()
			log.Println("✅ Scheduler stopped")
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// runTick scans for due targets and dispatches one probe goroutine per
// target, each gated by the semaphore.
func (s *Scheduler) runTick(ctx context.Context) {
	now := time.Now().UTC()
	due, err := s.store.Targets().ListDue(now)
	if err != nil {
		log.Printf("⚠️  failed to scan for due targets: %v", err)
		return
	}

	for _, t := range due {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			// Context cancelled while waiting for a slot; stop dispatching
			// this tick, the shutdown path in Run will drain in-flight work.
			return
		}

		s.wg.Add(1)
		go func(target *store.Target) {
			defer s.wg.Done()
			defer s.sem.Release(1)
			s.probeOne(ctx, target)
		}(t)
	}
}

// probeOne executes a single probe and persists its result inside a scoped
// transaction, so a failure writing one target's check can never affect
// another target's session.
func (s *Scheduler) probeOne(ctx context.Context, target *store.Target) {
	timeout := time.Duration(target.TimeoutS) * time.Second
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := prober.NewClient(timeout, target.VerifyTLS)
	result := prober.Probe(probeCtx, target.URL, client)

	checkedAt := time.Now().UTC()
	check := &store.Check{
		TargetID:     target.ID,
		CheckedAt:    checkedAt,
		Up:           result.Up,
		LatencyMs:    result.LatencyMs,
		HTTPStatus:   result.HTTPStatus,
		ErrorKind:    store.ErrorKind(result.ErrorKind),
		ErrorMessage: result.ErrorMessage,
	}
	if check.ErrorKind == "" {
		check.ErrorKind = store.ErrorKindUnknown
	}

	err := s.store.WithTx(func(tx *sqlx.Tx) error {
		return s.store.Checks().InsertTx(tx, check)
	})
	if err != nil {
		log.Printf("⚠️  failed to record check for target %s (%s): %v", target.Name, maskedURL(target.URL), err)
		return
	}

	if !result.Up {
		log.Printf("🔴 %s (%s) is down: %s", target.Name, maskedURL(target.URL), check.ErrorKind)
	}
}

// maskedURL is a best-effort host-only rendering for log lines, so a
// credentialed or query-bearing target URL never lands in plain logs.
func maskedURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Scheme + "://" + u.Host
}
