// Package queryapi composes store reads into the aggregated views the HTTP
// layer serves: latest status per target, filtered history, rolling
// uptime, and daily uptime.
package queryapi

import (
	"fmt"
	"math"
	"time"

	"github.com/last-emo-boy/uptime-core/internal/store"
)

// Status is one row of the latest-check-per-target view. Up is nil when the
// target has never been probed.
type Status struct {
	TargetID     string
	Name         string
	URL          string
	Up           *bool
	LastChecked  *time.Time
	LatencyMs    *int
	HTTPStatus   *int
	ErrorKind    *string
	ErrorMessage *string
}

// Uptime is the rolling-uptime aggregate for a single target over a window.
type Uptime struct {
	TotalChecks int
	UpChecks    int
	DownChecks  int
	Percentage  float64
}

// DailyUptime is one UTC calendar-day bucket of a daily-uptime series.
type DailyUptime struct {
	Day         string
	TotalChecks int
	UpChecks    int
	Percentage  float64
}

// API composes store reads into the views above.
type API struct {
	store *store.Store
}

// New builds an API over s.
func New(s *store.Store) *API {
	return &API{store: s}
}

// Status returns one row per target, joining in its latest check if any.
func (a *API) Status() ([]Status, error) {
	targets, err := a.store.Targets().List()
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	latest, err := a.store.Checks().LatestPerTarget()
	if err != nil {
		return nil, fmt.Errorf("failed to load latest checks: %w", err)
	}

	rows := make([]Status, 0, len(targets))
	for _, t := range targets {
		row := Status{TargetID: t.ID, Name: t.Name, URL: t.URL}

		if c, ok := latest[t.ID]; ok {
			up := c.Up
			checkedAt := c.CheckedAt
			kind := string(c.ErrorKind)
			row.Up = &up
			row.LastChecked = &checkedAt
			row.LatencyMs = c.LatencyMs
			row.HTTPStatus = c.HTTPStatus
			row.ErrorKind = &kind
			row.ErrorMessage = c.ErrorMessage
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// History returns checks since `since`, optionally scoped to one target
// and/or filtered by up/down state, newest first.
func (a *API) History(targetID *string, since time.Time, up *bool) ([]*store.Check, error) {
	checks, err := a.store.Checks().History(targetID, since, up)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return checks, nil
}

// RollingUptime computes the uptime percentage for a target over the last
// `days` days. Percentage is 0 when no checks were recorded in the window,
// never an error.
func (a *API) RollingUptime(targetID string, days int) (Uptime, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	total, up, err := a.store.Checks().AggregateUptime(targetID, since)
	if err != nil {
		return Uptime{}, fmt.Errorf("failed to aggregate uptime: %w", err)
	}

	var pct float64
	if total > 0 {
		pct = float64(up) / float64(total) * 100
	}

	return Uptime{
		TotalChecks: total,
		UpChecks:    up,
		DownChecks:  total - up,
		Percentage:  pct,
	}, nil
}

// DailyUptime returns exactly `days` entries, oldest to newest, one per UTC
// calendar day ending today. A day with no checks reports Percentage=100.0.
func (a *API) DailyUptime(targetID string, days int) ([]DailyUptime, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(days - 1))

	byDay, err := a.store.Checks().DailyUptime(targetID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily uptime: %w", err)
	}

	result := make([]DailyUptime, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i)
		key := day.Format("2006-01-02")

		entry := DailyUptime{Day: key, Percentage: 100.0}
		if agg, ok := byDay[key]; ok && agg.Total > 0 {
			entry.TotalChecks = agg.Total
			entry.UpChecks = agg.Up
			entry.Percentage = round2(float64(agg.Up) / float64(agg.Total) * 100)
		}
		result = append(result, entry)
	}
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
