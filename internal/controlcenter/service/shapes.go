package service

import (
	"github.com/voyatra/voyatra/internal/store"
)

// metricShape is one candidate (table, projection, predicate) tried when
// fetching a metric. Shapes are ordered newest schema generation first;
// the first shape yielding rows wins. Static args bind the leading
// placeholders of Where, call-time args bind the rest.
type metricShape struct {
	Table   string
	Select  []string
	Where   string
	Args    []any
	OrderBy string
	Limit   int
}

func (s metricShape) query(callArgs ...any) store.Query {
	args := make([]any, 0, len(s.Args)+len(callArgs))
	args = append(args, s.Args...)
	args = append(args, callArgs...)
	return store.Query{
		Select:  s.Select,
		Where:   s.Where,
		Args:    args,
		OrderBy: s.OrderBy,
		Limit:   s.Limit,
	}
}

// Status vocabularies drifted alongside table names: the current booking
// model uses lower-case states, the legacy model upper-case ones.
var (
	paidStatuses          = []string{"paid", "captured"}
	refundOpenStatuses    = []string{"initiated", "pending", "processing"}
	currentActiveStatuses = []string{"confirmed", "ongoing", "upcoming"}
	legacyActiveStatuses  = []string{"CONFIRMED", "IN_PROGRESS", "UPCOMING"}
)

// Revenue today: call-time args are the day-window bounds.
var revenueShapes = []metricShape{
	{
		Table:  "payments",
		Select: []string{"amount", "status", "created_at"},
		Where:  "status IN ? AND created_at BETWEEN ? AND ?",
		Args:   []any{paidStatuses},
	},
	{
		Table:  "payment_transactions",
		Select: []string{"amount_paid AS amount", "payment_status AS status", "created_at"},
		Where:  "payment_status IN ? AND created_at BETWEEN ? AND ?",
		Args:   []any{paidStatuses},
	},
}

// Active bookings: the current vocabulary on the current table, then the
// legacy vocabulary, then the pre-migration table.
var activeBookingShapes = []metricShape{
	{
		Table:  "bookings",
		Select: []string{"id"},
		Where:  "status IN ?",
		Args:   []any{currentActiveStatuses},
	},
	{
		Table:  "bookings",
		Select: []string{"id"},
		Where:  "status IN ?",
		Args:   []any{legacyActiveStatuses},
	},
	{
		Table:  "trip_bookings",
		Select: []string{"id"},
		Where:  "status IN ?",
		Args:   []any{legacyActiveStatuses},
	},
}

var pendingPaymentShapes = []metricShape{
	{
		Table:  "payments",
		Select: []string{"id"},
		Where:  "status IN ?",
		Args:   []any{[]string{"pending", "awaiting_confirmation"}},
	},
	{
		Table:  "payment_requests",
		Select: []string{"id"},
		Where:  "status = ?",
		Args:   []any{"pending"},
	},
}

// Refund liability: call-time arg is the trailing 30-day cutoff. The two
// tables are never both summed; first non-empty wins, so a transient
// migration window cannot double count.
var refundShapes = []metricShape{
	{
		Table:  "refunds",
		Select: []string{"amount", "status", "created_at"},
		Where:  "status IN ? AND created_at >= ?",
		Args:   []any{refundOpenStatuses},
	},
	{
		Table:  "payment_refunds",
		Select: []string{"refund_amount AS amount", "status", "created_at"},
		Where:  "status IN ? AND created_at >= ?",
		Args:   []any{refundOpenStatuses},
	},
}

// Documents: the missing test runs in memory (empty file reference OR
// pending/failed status, within a trailing window), so shapes project
// broadly instead of filtering.
var documentShapes = []metricShape{
	{
		Table:  "travel_documents",
		Select: []string{"file_url AS file_ref", "status", "created_at"},
	},
	{
		Table:  "booking_documents",
		Select: []string{"delivered_file AS file_ref", "status", "created_at"},
	},
}

var supportShapes = []metricShape{
	{
		Table:  "support_requests",
		Select: []string{"id"},
		Where:  "status IN ?",
		Args:   []any{[]string{"open", "in_progress"}},
	},
	{
		Table:  "support_tickets",
		Select: []string{"id"},
		Where:  "status IN ?",
		Args:   []any{[]string{"open", "pending"}},
	},
}

var supplierPendingShapes = []metricShape{
	{
		Table:  "supplier_bookings",
		Select: []string{"id"},
		Where:  "status IN ?",
		Args:   []any{[]string{"pending", "awaiting_confirmation"}},
	},
	{
		Table:  "bookings",
		Select: []string{"id"},
		Where:  "supplier_status = ?",
		Args:   []any{"pending"},
	},
}

// Failed automations: call-time arg is the trailing 24h cutoff.
var failedAutomationShapes = []metricShape{
	{
		Table:  "automation_runs",
		Select: []string{"id"},
		Where:  "status = ? AND created_at >= ?",
		Args:   []any{"failed"},
	},
	{
		Table:  "job_runs",
		Select: []string{"id"},
		Where:  "status = ? AND created_at >= ?",
		Args:   []any{"failed"},
	},
}

var retryingAutomationShapes = []metricShape{
	{
		Table:  "automation_runs",
		Select: []string{"id"},
		Where:  "status = ?",
		Args:   []any{"retrying"},
	},
	{
		Table:  "job_runs",
		Select: []string{"id"},
		Where:  "status IN ?",
		Args:   []any{[]string{"retrying", "retry"}},
	},
}

// Heartbeats: a dedicated heartbeat store first, then the generic event
// log. Call-time arg is the job kind.
var heartbeatShapes = []metricShape{
	{
		Table:   "job_heartbeats",
		Select:  []string{"recorded_at AS seen_at", "created_at"},
		Where:   "job_kind = ?",
		OrderBy: "created_at DESC",
		Limit:   1,
	},
	{
		Table:   "event_logs",
		Select:  []string{"created_at AS seen_at"},
		Where:   "event = ? AND message = ?",
		Args:    []any{"heartbeat"},
		OrderBy: "created_at DESC",
		Limit:   1,
	},
}

// Recent bookings: the current table first, then the pre-migration one.
var recentBookingShapes = []metricShape{
	{
		Table:   "bookings",
		Select:  []string{"id", "booking_code", "customer_id", "status", "created_at"},
		OrderBy: "created_at DESC",
		Limit:   recentBookingLimit,
	},
	{
		Table:   "trip_bookings",
		Select:  []string{"id", "reference AS booking_code", "customer_id", "status", "created_at"},
		OrderBy: "created_at DESC",
		Limit:   recentBookingLimit,
	},
}

// Structured alert sources, in priority order.
var failureTableShape = metricShape{
	Table:   "automation_failures",
	Select:  []string{"event", "reason", "error", "message", "created_at"},
	OrderBy: "created_at DESC",
	Limit:   maxSourcedAlerts,
}

var leveledLogShape = metricShape{
	Table:   "event_logs",
	Select:  []string{"level", "message", "created_at"},
	Where:   "level IN ?",
	Args:    []any{[]string{"warn", "warning", "error"}},
	OrderBy: "created_at DESC",
	Limit:   maxSourcedAlerts,
}

const (
	recentBookingLimit = 5
	maxSourcedAlerts   = 5
)
