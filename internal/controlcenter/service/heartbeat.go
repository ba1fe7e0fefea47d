package service

import (
	"context"
	"sort"
	"time"

	"github.com/voyatra/voyatra/internal/controlcenter/domain"
)

// heartbeatStatus resolves the freshness of one background job's
// heartbeat. The dedicated heartbeat store is tried first, then the
// generic event log. A heartbeat is stale when no timestamp is found,
// when it fails to parse, or when it is older than the per-kind
// threshold — no news is never good news here.
func (s *Service) heartbeatStatus(ctx context.Context, now time.Time, kind string, thresholdMinutes int) domain.HeartbeatStatus {
	status := domain.HeartbeatStatus{
		Kind:                  kind,
		StaleThresholdMinutes: thresholdMinutes,
		IsStale:               true,
	}

	row := s.fetch.One(ctx, heartbeatShapes[0].Table, heartbeatShapes[0].query(kind))
	if row == nil {
		row = s.fetch.One(ctx, heartbeatShapes[1].Table, heartbeatShapes[1].query(kind))
	}
	if row == nil {
		return status
	}

	seenAt, ok := coerceTime(firstValue(row, "seen_at", "created_at"))
	if !ok {
		return status
	}

	seenAt = seenAt.UTC()
	status.LastSeenAt = &seenAt
	status.IsStale = now.UTC().Sub(seenAt) > time.Duration(thresholdMinutes)*time.Minute
	return status
}

// monitoredHeartbeats evaluates every configured job kind in a stable
// order so alert output stays deterministic.
func (s *Service) monitoredHeartbeats(ctx context.Context, now time.Time, thresholds map[string]int) []domain.HeartbeatStatus {
	kinds := make([]string, 0, len(thresholds))
	for kind := range thresholds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	statuses := make([]domain.HeartbeatStatus, 0, len(kinds))
	for _, kind := range kinds {
		statuses = append(statuses, s.heartbeatStatus(ctx, now, kind, thresholds[kind]))
	}
	return statuses
}
