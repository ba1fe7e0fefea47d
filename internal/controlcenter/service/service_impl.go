package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/voyatra/voyatra/internal/clock"
	"github.com/voyatra/voyatra/internal/config"
	"github.com/voyatra/voyatra/internal/controlcenter/domain"
	obsmetrics "github.com/voyatra/voyatra/internal/observability/metrics"
	"github.com/voyatra/voyatra/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Fetch *store.Fetcher
	Log   *zap.Logger
	Clock clock.Clock
	Ops   *config.OpsConfigHolder
}

// rowSource is the slice of the fetcher the calculators consume.
type rowSource interface {
	Configured() bool
	Rows(ctx context.Context, table string, q store.Query) []store.Row
	One(ctx context.Context, table string, q store.Query) store.Row
}

type Service struct {
	fetch rowSource
	log   *zap.Logger
	clock clock.Clock
	ops   *config.OpsConfigHolder
}

func NewService(p Params) domain.Service {
	return &Service{
		fetch: p.Fetch,
		log:   p.Log.Named("controlcenter.service"),
		clock: p.Clock,
		ops:   p.Ops,
	}
}

func (s *Service) Configured() bool {
	return s.fetch.Configured()
}

// Snapshot fans out every metric calculator, the heartbeat detector and
// the recent-activity resolver, waits for all of them, then synthesizes
// alerts from the combined results. Individual sources are failure
// isolated by the fetcher; the only fatal class is a fault inside the
// aggregation itself.
func (s *Service) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	metrics := obsmetrics.Aggregation()
	metrics.SetStoreConfigured(s.Configured())

	if !s.Configured() {
		s.log.Warn("data store not configured; returning empty snapshot")
		return domain.Empty(), nil
	}

	cfg := s.ops.Get()
	now := s.clock.Now()
	started := now
	win := ResolveDayWindow(now, cfg.TimeZoneLabel, cfg.TimeZoneOffsetMinutes)

	snap := domain.Snapshot{DayWindow: &win}
	var heartbeats []domain.HeartbeatStatus

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		fanErr error
	)
	run := func(name string, fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if fanErr == nil {
						fanErr = fmt.Errorf("%s panicked: %v", name, r)
					}
					mu.Unlock()
				}
			}()
			fn()
		}()
	}

	run("revenue_today", func() { snap.RevenueToday = s.revenueToday(ctx, win) })
	run("active_bookings", func() { snap.ActiveBookings = s.activeBookings(ctx) })
	run("pending_payments", func() { snap.PendingPayments = s.pendingPayments(ctx) })
	run("refund_liability", func() { snap.RefundLiability = s.refundLiability(ctx, now) })
	run("missing_documents", func() { snap.MissingDocuments = s.missingDocuments(ctx, now) })
	run("open_support", func() { snap.OpenSupportRequests = s.openSupportRequests(ctx) })
	run("failed_automations", func() { snap.FailedAutomations24h = s.failedAutomations24h(ctx, now) })
	run("retrying_automations", func() { snap.RetryingAutomations = s.retryingAutomations(ctx) })
	run("supplier_pending", func() { snap.SupplierPendingConfirmations = s.supplierPendingConfirmations(ctx) })
	run("recent_bookings", func() { snap.RecentBookings = s.recentBookings(ctx) })
	run("heartbeats", func() { heartbeats = s.monitoredHeartbeats(ctx, now, cfg.HeartbeatThresholds) })

	wg.Wait()

	if fanErr != nil {
		s.log.Error("snapshot aggregation failed", zap.Error(fanErr))
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrAggregationFailed, fanErr)
	}

	snap.Alerts = s.synthesizeAlerts(ctx, snap, heartbeats, cfg)
	if snap.RecentBookings == nil {
		snap.RecentBookings = []domain.BookingSummary{}
	}

	for _, alert := range snap.Alerts {
		metrics.IncAlertEmitted(string(alert.Severity))
	}
	metrics.ObserveSnapshotDuration(s.clock.Now().Sub(started))

	s.log.Debug("snapshot computed",
		zap.Int("alerts", len(snap.Alerts)),
		zap.Int("recent_bookings", len(snap.RecentBookings)),
	)
	return snap, nil
}
