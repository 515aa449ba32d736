// Package retention periodically deletes checks older than the configured
// retention window. Failures are logged and retried on the next tick;
// targets are never touched.
package retention

import (
	"context"
	"log"
	"time"
)

const defaultPeriod = 6 * time.Hour

// deleter is the subset of store.CheckRepository the GC loop needs;
// narrowed to an interface so tests can inject a fake without a real DB.
type deleter interface {
	DeleteBefore(cutoff time.Time) (int64, error)
}

// GC periodically removes checks older than retentionDays.
type GC struct {
	checks        deleter
	retentionDays int
	period        time.Duration
}

// New builds a GC loop. retentionDays must be positive.
func New(checks deleter, retentionDays int) *GC {
	return &GC{
		checks:        checks,
		retentionDays: retentionDays,
		period:        defaultPeriod,
	}
}

// Run blocks, sweeping every g.period until ctx is cancelled.
func (g *GC) Run(ctx context.Context) {
	log.Printf("🧹 Starting retention GC (period=%s, retention=%dd)", g.period, g.retentionDays)

	ticker := time.NewTicker(g.period)
	defer ticker.Stop()

	g.sweep()

	for {
		select {
		case <-ctx.Done():
			log.Println("✅ Retention GC stopped")
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

func (g *GC) sweep() {
	cutoff := time.Now().UTC().AddDate(0, 0, -g.retentionDays)
	count, err := g.checks.DeleteBefore(cutoff)
	if err != nil {
		log.Printf("⚠️  retention sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("🧹 retention sweep removed %d checks older than %s", count, cutoff.Format(time.RFC3339))
	}
}
