package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTarget(t *testing.T, s *Store) *Target {
	t.Helper()
	target := newTestTarget()
	require.NoError(t, s.Targets().Create(target))
	return target
}

func intPtr(v int) *int { return &v }

func TestCheckInsertAssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	target := seedTarget(t, s)

	check := &Check{TargetID: target.ID, Up: true, ErrorKind: ErrorKindUnknown}
	require.NoError(t, s.Checks().Insert(check))

	assert.NotEmpty(t, check.ID)
	assert.False(t, check.CheckedAt.IsZero())
}

func TestLatestPerTargetReturnsMostRecent(t *testing.T) {
	s := newTestStore(t)
	target := seedTarget(t, s)

	older := &Check{TargetID: target.ID, CheckedAt: time.Now().UTC().Add(-time.Hour), Up: true, ErrorKind: ErrorKindUnknown}
	newer := &Check{TargetID: target.ID, CheckedAt: time.Now().UTC(), Up: false, HTTPStatus: intPtr(500), ErrorKind: ErrorKindHTTP}
	require.NoError(t, s.Checks().Insert(older))
	require.NoError(t, s.Checks().Insert(newer))

	latest, err := s.Checks().LatestPerTarget()
	require.NoError(t, err)
	require.Contains(t, latest, target.ID)
	assert.Equal(t, newer.ID, latest[target.ID].ID)
}

func TestLatestPerTargetOmitsNeverCheckedTargets(t *testing.T) {
	s := newTestStore(t)
	seedTarget(t, s)

	latest, err := s.Checks().LatestPerTarget()
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestHistoryFiltersByTargetAndUpAndSince(t *testing.T) {
	s := newTestStore(t)
	targetA := seedTarget(t, s)
	targetB := seedTarget(t, s)

	now := time.Now().UTC()
	require.NoError(t, s.Checks().Insert(&Check{TargetID: targetA.ID, CheckedAt: now, Up: true, ErrorKind: ErrorKindUnknown}))
	require.NoError(t, s.Checks().Insert(&Check{TargetID: targetA.ID, CheckedAt: now, Up: false, ErrorKind: ErrorKindTimeout}))
	require.NoError(t, s.Checks().Insert(&Check{TargetID: targetB.ID, CheckedAt: now, Up: true, ErrorKind: ErrorKindUnknown}))

	since := now.Add(-time.Minute)

	all, err := s.Checks().History(nil, since, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := s.Checks().History(&targetA.ID, since, nil)
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)

	up := true
	onlyUp, err := s.Checks().History(nil, since, &up)
	require.NoError(t, err)
	assert.Len(t, onlyUp, 2)

	tooOld, err := s.Checks().History(nil, now.Add(time.Minute), nil)
	require.NoError(t, err)
	assert.Empty(t, tooOld)
}

func TestHistoryOrderedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	target := seedTarget(t, s)

	first := &Check{TargetID: target.ID, CheckedAt: time.Now().UTC().Add(-2 * time.Hour), Up: true, ErrorKind: ErrorKindUnknown}
	second := &Check{TargetID: target.ID, CheckedAt: time.Now().UTC().Add(-time.Hour), Up: true, ErrorKind: ErrorKindUnknown}
	require.NoError(t, s.Checks().Insert(first))
	require.NoError(t, s.Checks().Insert(second))

	checks, err := s.Checks().History(&target.ID, time.Now().Add(-3*time.Hour), nil)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	assert.Equal(t, second.ID, checks[0].ID)
	assert.Equal(t, first.ID, checks[1].ID)
}

func TestAggregateUptime(t *testing.T) {
	s := newTestStore(t)
	target := seedTarget(t, s)
	now := time.Now().UTC()

	for i := 0; i < 75; i++ {
		require.NoError(t, s.Checks().Insert(&Check{TargetID: target.ID, CheckedAt: now, Up: true, ErrorKind: ErrorKindUnknown}))
	}
	for i := 0; i < 25; i++ {
		require.NoError(t, s.Checks().Insert(&Check{TargetID: target.ID, CheckedAt: now, Up: false, ErrorKind: ErrorKindHTTP}))
	}

	total, up, err := s.Checks().AggregateUptime(target.ID, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 100, total)
	assert.Equal(t, 75, up)
}

func TestAggregateUptimeEmptyWindow(t *testing.T) {
	s := newTestStore(t)
	target := seedTarget(t, s)

	total, up, err := s.Checks().AggregateUptime(target.ID, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, up)
}

func TestDailyUptimeBucketsByUTCDay(t *testing.T) {
	s := newTestStore(t)
	target := seedTarget(t, s)

	today := time.Now().UTC()
	yesterday := today.AddDate(0, 0, -1)

	require.NoError(t, s.Checks().Insert(&Check{TargetID: target.ID, CheckedAt: today, Up: true, ErrorKind: ErrorKindUnknown}))
	require.NoError(t, s.Checks().Insert(&Check{TargetID: target.ID, CheckedAt: yesterday, Up: false, ErrorKind: ErrorKindConnect}))

	since := yesterday.Truncate(24 * time.Hour)
	byDay, err := s.Checks().DailyUptime(target.ID, since)
	require.NoError(t, err)

	assert.Equal(t, 1, byDay[today.Format("2006-01-02")].Total)
	assert.Equal(t, 1, byDay[today.Format("2006-01-02")].Up)
	assert.Equal(t, 1, byDay[yesterday.Format("2006-01-02")].Total)
	assert.Equal(t, 0, byDay[yesterday.Format("2006-01-02")].Up)
}

func TestDeleteBeforeRemovesOnlyOlderChecks(t *testing.T) {
	s := newTestStore(t)
	target := seedTarget(t, s)

	now := time.Now().UTC()
	old := &Check{TargetID: target.ID, CheckedAt: now.AddDate(0, 0, -40), Up: true, ErrorKind: ErrorKindUnknown}
	recent := &Check{TargetID: target.ID, CheckedAt: now, Up: true, ErrorKind: ErrorKindUnknown}
	require.NoError(t, s.Checks().Insert(old))
	require.NoError(t, s.Checks().Insert(recent))

	cutoff := now.AddDate(0, 0, -35)
	count, err := s.Checks().DeleteBefore(cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	remaining, err := s.Checks().History(&target.ID, now.AddDate(0, 0, -100), nil)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, recent.ID, remaining[0].ID)
}

func TestDeleteBeforeIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	target := seedTarget(t, s)
	now := time.Now().UTC()
	require.NoError(t, s.Checks().Insert(&Check{TargetID: target.ID, CheckedAt: now.AddDate(0, 0, -40), Up: true, ErrorKind: ErrorKindUnknown}))

	cutoff := now.AddDate(0, 0, -35)
	first, err := s.Checks().DeleteBefore(cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first)

	second, err := s.Checks().DeleteBefore(cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 0, second)
}
