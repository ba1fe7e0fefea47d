package store

import (
	"context"

	"github.com/voyatra/voyatra/internal/config"
	obsmetrics "github.com/voyatra/voyatra/internal/observability/metrics"
	"github.com/voyatra/voyatra/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Row is one projected record from the store.
type Row = map[string]any

// Query describes one projection over a named table: column selection,
// a filter predicate with positional args, ordering and a row limit.
type Query struct {
	Select  []string
	Where   string
	Args    []any
	OrderBy string
	Limit   int
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
	Ops *config.OpsConfigHolder
}

// Fetcher is the sole error boundary between the relational store and the
// metric calculators. Any query failure — unknown table or column under an
// older schema generation, malformed predicate, transport fault — yields an
// empty result instead of an error, so one mismatched table can never take
// down a whole snapshot. Callers must treat empty as "no data under this
// shape", not as "zero is the true value".
type Fetcher struct {
	conn *gorm.DB
	log  *zap.Logger
	ops  *config.OpsConfigHolder
}

func NewFetcher(p Params) *Fetcher {
	return &Fetcher{
		conn: p.DB,
		log:  p.Log.Named("store.fetcher"),
		ops:  p.Ops,
	}
}

// Configured reports whether a store connection exists. Checked once per
// snapshot, before any fan-out begins.
func (f *Fetcher) Configured() bool {
	return f != nil && f.conn != nil
}

// Rows runs one shape against the store. Every call carries its own
// timeout so a single slow table cannot stall the snapshot fan-out.
func (f *Fetcher) Rows(ctx context.Context, table string, q Query) []Row {
	if !f.Configured() || table == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.ops.Get().FetchTimeout())
	defer cancel()

	stmt := f.conn.WithContext(ctx).Table(table)
	if len(q.Select) > 0 {
		stmt = stmt.Select(q.Select)
	}
	if q.Where != "" {
		stmt = stmt.Where(q.Where, q.Args...)
	}
	if q.OrderBy != "" {
		stmt = stmt.Order(q.OrderBy)
	}
	if q.Limit > 0 {
		stmt = stmt.Limit(q.Limit)
	}

	var rows []map[string]any
	if err := stmt.Find(&rows).Error; err != nil {
		reason := "transport"
		if db.IsSchemaMismatchErr(err) {
			reason = "schema"
			f.log.Debug("shape not present under current schema",
				zap.String("table", table),
				zap.Error(err),
			)
		} else {
			f.log.Warn("fetch failed, treating as empty",
				zap.String("table", table),
				zap.Error(err),
			)
		}
		obsmetrics.Aggregation().IncFetchFailed(table, reason)
		return nil
	}
	return rows
}

// One returns the first row of a query, or nil when the shape yields
// nothing.
func (f *Fetcher) One(ctx context.Context, table string, q Query) Row {
	q.Limit = 1
	rows := f.Rows(ctx, table, q)
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

var Module = fx.Module("store",
	fx.Provide(NewFetcher),
)
