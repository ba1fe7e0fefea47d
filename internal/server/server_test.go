package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	auditdomain "github.com/voyatra/voyatra/internal/audit/domain"
	"github.com/voyatra/voyatra/internal/authorization"
	"github.com/voyatra/voyatra/internal/config"
	controlcenterdomain "github.com/voyatra/voyatra/internal/controlcenter/domain"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// -- Stubs --

type controlCenterStub struct {
	snap       controlcenterdomain.Snapshot
	err        error
	configured bool
}

func (s *controlCenterStub) Configured() bool { return s.configured }

func (s *controlCenterStub) Snapshot(ctx context.Context) (controlcenterdomain.Snapshot, error) {
	return s.snap, s.err
}

type authzStub struct {
	err error
}

func (s *authzStub) Authorize(ctx context.Context, actor, role, object, action string) error {
	return s.err
}

type auditStub struct {
	actions []string
}

func (s *auditStub) Record(ctx context.Context, actorType auditdomain.ActorType, actorID, action, targetType string, metadata map[string]any) error {
	s.actions = append(s.actions, action)
	return nil
}

func (s *auditStub) List(ctx context.Context, filter auditdomain.ListFilter) ([]auditdomain.AuditLog, error) {
	return nil, nil
}

func newTestServer(cc *controlCenterStub, authz *authzStub, audit *auditStub) *Server {
	s := NewServer(ServerParams{
		Gin:              NewEngine(),
		Cfg:              config.Config{HTTPAddr: ":0"},
		Log:              zap.NewNop(),
		ControlCenterSvc: cc,
		AuditSvc:         audit,
		AuthzSvc:         authz,
	})
	registerRoutes(s)
	return s
}

func doSnapshotRequest(s *Server, actor, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/control-center/snapshot", nil)
	if actor != "" {
		req.Header.Set(headerActorID, actor)
	}
	if role != "" {
		req.Header.Set(headerActorRole, role)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

// -- Tests --

func TestSnapshotEndpoint_RequiresActor(t *testing.T) {
	s := newTestServer(&controlCenterStub{configured: true}, &authzStub{}, &auditStub{})

	rec := doSnapshotRequest(s, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body.Error.Type)
}

func TestSnapshotEndpoint_ForbiddenRole(t *testing.T) {
	s := newTestServer(&controlCenterStub{configured: true}, &authzStub{err: authorization.ErrForbidden}, &auditStub{})

	rec := doSnapshotRequest(s, "u-1", "operator")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSnapshotEndpoint_Success(t *testing.T) {
	name := "Asha Verma"
	cc := &controlCenterStub{
		configured: true,
		snap: controlcenterdomain.Snapshot{
			RevenueToday: 150,
			Alerts: []controlcenterdomain.Alert{
				{Severity: controlcenterdomain.SeverityWarn, Message: "2 support requests open"},
			},
			RecentBookings: []controlcenterdomain.BookingSummary{
				{BookingID: "VY-1001", CustomerName: &name},
			},
		},
	}
	audit := &auditStub{}
	s := newTestServer(cc, &authzStub{}, audit)

	rec := doSnapshotRequest(s, "u-1", "admin")
	require.Equal(t, http.StatusOK, rec.Code)

	var body snapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.StoreConfigured)
	assert.InDelta(t, 150.0, body.Snapshot.RevenueToday, 0.001)
	require.Len(t, body.Snapshot.Alerts, 1)
	assert.Equal(t, "2 support requests open", body.Snapshot.Alerts[0].Message)

	require.Len(t, audit.actions, 1)
	assert.Equal(t, "control_center.viewed", audit.actions[0])
}

func TestSnapshotEndpoint_AggregationFailure(t *testing.T) {
	cc := &controlCenterStub{
		configured: true,
		err:        controlcenterdomain.ErrAggregationFailed,
	}
	s := newTestServer(cc, &authzStub{}, &auditStub{})

	rec := doSnapshotRequest(s, "u-1", "admin")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "aggregation_failed", body.Error.Type)
}

func TestSnapshotEndpoint_RateLimited(t *testing.T) {
	s := newTestServer(&controlCenterStub{configured: true}, &authzStub{}, &auditStub{})
	s.limiter = newRateLimiter(1, time.Minute)

	first := doSnapshotRequest(s, "u-1", "admin")
	assert.Equal(t, http.StatusOK, first.Code)

	second := doSnapshotRequest(s, "u-1", "admin")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestAuditLogsEndpoint(t *testing.T) {
	s := newTestServer(&controlCenterStub{configured: true}, &authzStub{}, &auditStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs?action=control_center.viewed", nil)
	req.Header.Set(headerActorID, "u-1")
	req.Header.Set(headerActorRole, "admin")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body auditListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body.Logs)
	assert.Empty(t, body.Logs)
}

func TestRateLimiter(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)

	assert.True(t, limiter.Allow("k"))
	assert.True(t, limiter.Allow("k"))
	assert.False(t, limiter.Allow("k"))
	assert.True(t, limiter.Allow("other"))
	assert.False(t, limiter.Allow(""))
}
