package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/voyatra/voyatra/internal/config"
	"github.com/voyatra/voyatra/internal/controlcenter/domain"
)

// alertCategory names one operational condition for dedup purposes. Two
// alerts in the same category describe the same condition, however their
// messages were produced.
type alertCategory string

const (
	categoryPendingPayments   alertCategory = "pending_payments"
	categoryActiveBookings    alertCategory = "active_bookings"
	categoryMissingDocuments  alertCategory = "missing_documents"
	categorySupportBacklog    alertCategory = "support_backlog"
	categorySupplierPending   alertCategory = "supplier_pending"
	categoryFailedAutomations alertCategory = "failed_automations"
	categoryCronHeartbeat     alertCategory = "heartbeat_cron_retry"
	categoryWebhookHeartbeat  alertCategory = "heartbeat_payment_webhook"
)

// dedupPatterns decide whether an existing alert message already covers a
// category. Matching is heuristic by nature; keep entries named and
// unit-tested rather than inlined at call sites.
var dedupPatterns = map[alertCategory]*regexp.Regexp{
	categoryPendingPayments:   regexp.MustCompile(`(?i)payments?.*(pending|awaiting|unconfirmed)`),
	categoryActiveBookings:    regexp.MustCompile(`(?i)bookings?.*(load|volume|high|surge)`),
	categoryMissingDocuments:  regexp.MustCompile(`(?i)documents?.*(missing|pending)`),
	categorySupportBacklog:    regexp.MustCompile(`(?i)support.*(open|backlog|pending|unanswered)`),
	categorySupplierPending:   regexp.MustCompile(`(?i)supplier.*(pending|await|confirm)`),
	categoryFailedAutomations: regexp.MustCompile(`(?i)(automations?.*fail|failed:|\[.+\] failed)`),
	categoryCronHeartbeat:     regexp.MustCompile(`(?i)cron[-_ ]?retry`),
	categoryWebhookHeartbeat:  regexp.MustCompile(`(?i)webhook`),
}

func heartbeatCategory(kind string) alertCategory {
	switch kind {
	case domain.HeartbeatKindCronRetry:
		return categoryCronHeartbeat
	case domain.HeartbeatKindPaymentWebhook:
		return categoryWebhookHeartbeat
	default:
		return alertCategory("heartbeat_" + strings.ReplaceAll(kind, "-", "_"))
	}
}

// heartbeatPattern returns the dedup pattern for a kind, falling back to
// matching the kind's own words for kinds configured at runtime.
func heartbeatPattern(kind string) *regexp.Regexp {
	if pattern, ok := dedupPatterns[heartbeatCategory(kind)]; ok {
		return pattern
	}
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kind))
}

type thresholdAlert struct {
	category alertCategory
	pattern  *regexp.Regexp
	alert    domain.Alert
}

// synthesizeAlerts merges the structured failure table, the leveled log
// table and threshold-derived conditions into one deduplicated list.
// Source order is preserved; threshold alerts append last, and only when
// no existing message already describes their category.
func (s *Service) synthesizeAlerts(
	ctx context.Context,
	snap domain.Snapshot,
	heartbeats []domain.HeartbeatStatus,
	cfg config.OpsConfig,
) []domain.Alert {
	alerts := s.failureTableAlerts(ctx)
	if len(alerts) == 0 {
		alerts = s.leveledLogAlerts(ctx)
	}

	candidates := thresholdAlerts(snap, heartbeats, cfg)

	if len(alerts) == 0 {
		out := make([]domain.Alert, 0, len(candidates))
		for _, candidate := range candidates {
			out = append(out, candidate.alert)
		}
		return out
	}

	for _, candidate := range candidates {
		if categoryRepresented(alerts, candidate.pattern) {
			continue
		}
		alerts = append(alerts, candidate.alert)
	}
	return alerts
}

func categoryRepresented(alerts []domain.Alert, pattern *regexp.Regexp) bool {
	for _, alert := range alerts {
		if pattern.MatchString(alert.Message) {
			return true
		}
	}
	return false
}

// failureTableAlerts maps rows of the structured failure table to error
// alerts of the form "[<event>] failed: <reason>".
func (s *Service) failureTableAlerts(ctx context.Context) []domain.Alert {
	rows := s.fetch.Rows(ctx, failureTableShape.Table, failureTableShape.query())
	alerts := make([]domain.Alert, 0, len(rows))
	for _, row := range rows {
		event := coerceString(firstValue(row, "event", "event_name", "job"))
		if event == "" {
			event = "unknown"
		}
		reason := coerceString(firstValue(row, "reason", "error", "message", "detail"))
		if reason == "" {
			reason = "no reason recorded"
		}
		alert := domain.Alert{
			Severity: domain.SeverityError,
			Message:  fmt.Sprintf("[%s] failed: %s", event, reason),
		}
		if created, ok := coerceTime(row["created_at"]); ok {
			created = created.UTC()
			alert.CreatedAt = &created
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

// leveledLogAlerts maps warn/error rows of the generic log table.
// Unknown levels default to warn.
func (s *Service) leveledLogAlerts(ctx context.Context) []domain.Alert {
	rows := s.fetch.Rows(ctx, leveledLogShape.Table, leveledLogShape.query())
	alerts := make([]domain.Alert, 0, len(rows))
	for _, row := range rows {
		message := coerceString(row["message"])
		if message == "" {
			continue
		}
		level := strings.ToLower(coerceString(row["level"]))
		severity := domain.SeverityWarn
		if level == "error" {
			severity = domain.SeverityError
		}
		if level == "" {
			level = "warn"
		}
		alert := domain.Alert{
			Severity: severity,
			Message:  fmt.Sprintf("[%s] %s", level, message),
		}
		if created, ok := coerceTime(row["created_at"]); ok {
			created = created.UTC()
			alert.CreatedAt = &created
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

// thresholdAlerts derives synthetic alerts from the already-computed
// metrics and heartbeat staleness, in a fixed order.
func thresholdAlerts(snap domain.Snapshot, heartbeats []domain.HeartbeatStatus, cfg config.OpsConfig) []thresholdAlert {
	var candidates []thresholdAlert

	if snap.PendingPayments > cfg.PendingPaymentsAlert {
		candidates = append(candidates, thresholdAlert{
			category: categoryPendingPayments,
			pattern:  dedupPatterns[categoryPendingPayments],
			alert: domain.Alert{
				Severity: domain.SeverityInfo,
				Message:  fmt.Sprintf("%d payments pending confirmation", snap.PendingPayments),
			},
		})
	}
	if snap.ActiveBookings > cfg.ActiveBookingsAlert {
		candidates = append(candidates, thresholdAlert{
			category: categoryActiveBookings,
			pattern:  dedupPatterns[categoryActiveBookings],
			alert: domain.Alert{
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("High booking load: %d active bookings", snap.ActiveBookings),
			},
		})
	}
	if snap.MissingDocuments > 0 {
		candidates = append(candidates, thresholdAlert{
			category: categoryMissingDocuments,
			pattern:  dedupPatterns[categoryMissingDocuments],
			alert: domain.Alert{
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("%d traveler documents missing or pending", snap.MissingDocuments),
			},
		})
	}
	if snap.OpenSupportRequests > 0 {
		candidates = append(candidates, thresholdAlert{
			category: categorySupportBacklog,
			pattern:  dedupPatterns[categorySupportBacklog],
			alert: domain.Alert{
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("%d support requests open", snap.OpenSupportRequests),
			},
		})
	}
	if snap.SupplierPendingConfirmations > 0 {
		candidates = append(candidates, thresholdAlert{
			category: categorySupplierPending,
			pattern:  dedupPatterns[categorySupplierPending],
			alert: domain.Alert{
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("%d supplier confirmations pending", snap.SupplierPendingConfirmations),
			},
		})
	}
	if snap.FailedAutomations24h > 0 {
		candidates = append(candidates, thresholdAlert{
			category: categoryFailedAutomations,
			pattern:  dedupPatterns[categoryFailedAutomations],
			alert: domain.Alert{
				Severity: domain.SeverityError,
				Message:  fmt.Sprintf("%d automations failed in the last 24h", snap.FailedAutomations24h),
			},
		})
	}

	for _, hb := range heartbeats {
		if !hb.IsStale {
			continue
		}
		message := fmt.Sprintf("%s heartbeat stale: no signal recorded", hb.Kind)
		if hb.LastSeenAt != nil {
			message = fmt.Sprintf("%s heartbeat stale: last seen %s", hb.Kind, hb.LastSeenAt.Format("2006-01-02 15:04:05 UTC"))
		}
		candidates = append(candidates, thresholdAlert{
			category: heartbeatCategory(hb.Kind),
			pattern:  heartbeatPattern(hb.Kind),
			alert: domain.Alert{
				Severity: domain.SeverityError,
				Message:  message,
			},
		})
	}

	return candidates
}
