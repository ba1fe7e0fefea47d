package service

import (
	"context"
	"time"

	"github.com/voyatra/voyatra/internal/controlcenter/domain"
	"github.com/voyatra/voyatra/internal/store"
)

const (
	documentWindowDays  = 30
	refundWindowDays    = 30
	automationWindow24h = 24 * time.Hour
)

// firstShapeRows tries candidate shapes in order and returns the rows of
// the first one that yields any. A calculator never fails; its worst case
// is the zero value — a dashboard showing 0 beats a dashboard that fails
// to render.
func (s *Service) firstShapeRows(ctx context.Context, shapes []metricShape, callArgs ...any) []store.Row {
	for _, shape := range shapes {
		if rows := s.fetch.Rows(ctx, shape.Table, shape.query(callArgs...)); len(rows) > 0 {
			return rows
		}
	}
	return nil
}

func (s *Service) countFromShapes(ctx context.Context, shapes []metricShape, callArgs ...any) int {
	return len(s.firstShapeRows(ctx, shapes, callArgs...))
}

// revenueToday sums captured payment amounts created within the civil
// day. Rows whose amount does not coerce to a number contribute nothing.
func (s *Service) revenueToday(ctx context.Context, win domain.DayWindow) float64 {
	rows := s.firstShapeRows(ctx, revenueShapes, win.StartUTC, win.EndUTC)
	var total float64
	for _, row := range rows {
		if amount, ok := coerceFloat(row["amount"]); ok {
			total += amount
		}
	}
	return total
}

func (s *Service) activeBookings(ctx context.Context) int {
	return s.countFromShapes(ctx, activeBookingShapes)
}

func (s *Service) pendingPayments(ctx context.Context) int {
	return s.countFromShapes(ctx, pendingPaymentShapes)
}

// refundLiability sums open refunds from the trailing 30 days. Only the
// first non-empty table contributes; see refundShapes.
func (s *Service) refundLiability(ctx context.Context, now time.Time) float64 {
	cutoff := now.UTC().AddDate(0, 0, -refundWindowDays)
	rows := s.firstShapeRows(ctx, refundShapes, cutoff)
	var total float64
	for _, row := range rows {
		if amount, ok := coerceFloat(row["amount"]); ok {
			total += amount
		}
	}
	return total
}

// missingDocuments counts document rows with no delivered file or a
// pending/failed status, created within the trailing 30 days. Rows whose
// created_at is absent or unparseable are conservatively treated as
// recent enough to count.
func (s *Service) missingDocuments(ctx context.Context, now time.Time) int {
	cutoff := now.UTC().AddDate(0, 0, -documentWindowDays)
	rows := s.firstShapeRows(ctx, documentShapes)

	count := 0
	for _, row := range rows {
		fileRef := coerceString(row["file_ref"])
		status := coerceString(row["status"])
		missing := fileRef == "" || status == "pending" || status == "failed"
		if !missing {
			continue
		}
		if created, ok := coerceTime(row["created_at"]); ok && created.Before(cutoff) {
			continue
		}
		count++
	}
	return count
}

func (s *Service) openSupportRequests(ctx context.Context) int {
	return s.countFromShapes(ctx, supportShapes)
}

func (s *Service) supplierPendingConfirmations(ctx context.Context) int {
	return s.countFromShapes(ctx, supplierPendingShapes)
}

func (s *Service) failedAutomations24h(ctx context.Context, now time.Time) int {
	cutoff := now.UTC().Add(-automationWindow24h)
	return s.countFromShapes(ctx, failedAutomationShapes, cutoff)
}

func (s *Service) retryingAutomations(ctx context.Context) int {
	return s.countFromShapes(ctx, retryingAutomationShapes)
}
