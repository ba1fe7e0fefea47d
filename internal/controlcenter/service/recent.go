package service

import (
	"context"
	"strings"

	"github.com/voyatra/voyatra/internal/controlcenter/domain"
	"github.com/voyatra/voyatra/internal/store"
)

// recentBookings fetches the five most recent booking rows and joins
// their customers in memory with one batched lookup. A booking whose
// customer record is gone still appears, with no customer name — the
// join never drops a row.
func (s *Service) recentBookings(ctx context.Context) []domain.BookingSummary {
	rows := s.firstShapeRows(ctx, recentBookingShapes)
	if len(rows) == 0 {
		return []domain.BookingSummary{}
	}

	customerIDs := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		id := coerceString(row["customer_id"])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		customerIDs = append(customerIDs, id)
	}

	names := s.customerNames(ctx, customerIDs)

	summaries := make([]domain.BookingSummary, 0, len(rows))
	for _, row := range rows {
		summary := domain.BookingSummary{
			BookingID: bookingDisplayID(row),
		}
		if name, ok := names[coerceString(row["customer_id"])]; ok {
			summary.CustomerName = &name
		}
		if status := coerceString(row["status"]); status != "" {
			summary.Status = &status
		}
		if created, ok := coerceTime(row["created_at"]); ok {
			created = created.UTC()
			summary.CreatedAt = &created
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// bookingDisplayID prefers the human booking code over the internal id.
func bookingDisplayID(row store.Row) string {
	if code := coerceString(row["booking_code"]); code != "" {
		return code
	}
	return coerceString(row["id"])
}

// customerNames resolves display names for the referenced customers.
// Name is trimmed "first last", falling back to email; customers with
// neither stay unresolved.
func (s *Service) customerNames(ctx context.Context, ids []string) map[string]string {
	if len(ids) == 0 {
		return nil
	}

	rows := s.fetch.Rows(ctx, "customers", store.Query{
		Select: []string{"id", "first_name", "last_name", "email"},
		Where:  "id IN ?",
		Args:   []any{ids},
	})

	names := make(map[string]string, len(rows))
	for _, row := range rows {
		id := coerceString(row["id"])
		if id == "" {
			continue
		}
		name := strings.TrimSpace(coerceString(row["first_name"]) + " " + coerceString(row["last_name"]))
		if name == "" {
			name = coerceString(row["email"])
		}
		if name == "" {
			continue
		}
		names[id] = name
	}
	return names
}
