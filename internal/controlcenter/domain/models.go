package domain

import "time"

// Severity ranks an operational alert.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Alert is one operational condition surfaced on the dashboard.
// Message is never empty; severity defaults to warn when the source data
// is ambiguous.
type Alert struct {
	Severity  Severity   `json:"severity"`
	Message   string     `json:"message"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// DayWindow is the inclusive UTC instant range covering "today" in the
// fixed civil zone the business operates in.
type DayWindow struct {
	TimeZoneLabel string    `json:"time_zone"`
	StartUTC      time.Time `json:"start_utc"`
	EndUTC        time.Time `json:"end_utc"`
}

// Heartbeat kinds monitored out of the box. Additional kinds come from
// ops configuration.
const (
	HeartbeatKindCronRetry      = "cron-retry"
	HeartbeatKindPaymentWebhook = "payment-webhook"
)

// HeartbeatStatus reports the freshness of one background job's "I am
// alive" signal. Absence of a signal is always treated as failure.
type HeartbeatStatus struct {
	Kind                  string     `json:"kind"`
	LastSeenAt            *time.Time `json:"last_seen_at,omitempty"`
	StaleThresholdMinutes int        `json:"stale_threshold_minutes"`
	IsStale               bool       `json:"is_stale"`
}

// BookingSummary is a read-only projection of a recent booking joined
// with its customer, if one resolves.
type BookingSummary struct {
	BookingID    string     `json:"booking_id"`
	CustomerName *string    `json:"customer_name"`
	Status       *string    `json:"status,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// Snapshot is the output of one aggregation run. It is recomputed from
// source on every request, never persisted and never mutated after being
// returned.
type Snapshot struct {
	RevenueToday                 float64          `json:"revenue_today"`
	ActiveBookings               int              `json:"active_bookings"`
	PendingPayments              int              `json:"pending_payments"`
	RefundLiability              float64          `json:"refund_liability"`
	MissingDocuments             int              `json:"missing_documents"`
	OpenSupportRequests          int              `json:"open_support_requests"`
	FailedAutomations24h         int              `json:"failed_automations_24h"`
	RetryingAutomations          int              `json:"retrying_automations"`
	SupplierPendingConfirmations int              `json:"supplier_pending_confirmations"`
	RecentBookings               []BookingSummary `json:"recent_bookings"`
	Alerts                       []Alert          `json:"alerts"`
	DayWindow                    *DayWindow       `json:"day_window,omitempty"`
}

// Empty returns the all-zero snapshot served when the store is not
// configured. Slices are non-nil so the payload renders as empty lists.
func Empty() Snapshot {
	return Snapshot{
		RecentBookings: []BookingSummary{},
		Alerts:         []Alert{},
	}
}
