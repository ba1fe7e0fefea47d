package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	auditdomain "github.com/voyatra/voyatra/internal/audit/domain"
	"github.com/voyatra/voyatra/internal/auditcontext"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestAudit(t *testing.T) auditdomain.Service {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(conn, zap.NewNop()))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{DB: conn, Log: zap.NewNop(), GenID: node})
}

func TestRecordAndList(t *testing.T) {
	svc := newTestAudit(t)
	ctx := auditcontext.WithRequestID(context.Background(), "req-42")
	ctx = auditcontext.WithIPAddress(ctx, "10.0.0.1")

	err := svc.Record(ctx, auditdomain.ActorTypeUser, "u-1", "control_center.viewed", "control_center", map[string]any{
		"alert_count": 2,
	})
	require.NoError(t, err)

	err = svc.Record(ctx, auditdomain.ActorTypeSystem, "", "snapshot.scheduled", "control_center", nil)
	require.NoError(t, err)

	logs, err := svc.List(ctx, auditdomain.ListFilter{Action: "control_center.viewed"})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, string(auditdomain.ActorTypeUser), entry.ActorType)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, "u-1", *entry.ActorID)
	require.NotNil(t, entry.IPAddress)
	assert.Equal(t, "10.0.0.1", *entry.IPAddress)
	assert.Equal(t, "req-42", entry.Metadata["request_id"])

	all, err := svc.List(ctx, auditdomain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMigrate_ProvisionsAuditTable(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := NewService(Params{DB: conn, Log: zap.NewNop(), GenID: node})

	// A fresh store has no audit_logs table yet.
	err = svc.Record(context.Background(), auditdomain.ActorTypeUser, "u-1", "control_center.viewed", "control_center", nil)
	assert.Error(t, err)

	require.NoError(t, Migrate(conn, zap.NewNop()))

	err = svc.Record(context.Background(), auditdomain.ActorTypeUser, "u-1", "control_center.viewed", "control_center", nil)
	require.NoError(t, err)

	logs, err := svc.List(context.Background(), auditdomain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestMigrate_SkippedWithoutStore(t *testing.T) {
	assert.NoError(t, Migrate(nil, zap.NewNop()))
}

func TestRecord_InvalidAction(t *testing.T) {
	svc := newTestAudit(t)

	err := svc.Record(context.Background(), auditdomain.ActorTypeUser, "u-1", "   ", "control_center", nil)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestRecord_SkippedWithoutStore(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{DB: nil, Log: zap.NewNop(), GenID: node})

	assert.NoError(t, svc.Record(context.Background(), auditdomain.ActorTypeUser, "u-1", "control_center.viewed", "control_center", nil))

	logs, err := svc.List(context.Background(), auditdomain.ListFilter{})
	require.NoError(t, err)
	assert.Nil(t, logs)
}

func TestList_Limit(t *testing.T) {
	svc := newTestAudit(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Record(context.Background(), auditdomain.ActorTypeUser, "u-1", "control_center.viewed", "control_center", nil))
	}

	logs, err := svc.List(context.Background(), auditdomain.ListFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}
