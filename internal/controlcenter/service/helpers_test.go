package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/voyatra/voyatra/internal/clock"
	"github.com/voyatra/voyatra/internal/config"
	"github.com/voyatra/voyatra/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, clk clock.Clock) (*Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	ops, err := config.NewOpsConfigHolder()
	require.NoError(t, err)

	fetch := store.NewFetcher(store.Params{
		DB:  conn,
		Log: zap.NewNop(),
		Ops: ops,
	})

	svc := &Service{
		fetch: fetch,
		log:   zap.NewNop(),
		clock: clk,
		ops:   ops,
	}
	return svc, conn
}

func mustExec(t *testing.T, conn *gorm.DB, sql string, args ...any) {
	t.Helper()
	require.NoError(t, conn.Exec(sql, args...).Error)
}
