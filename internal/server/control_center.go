package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/voyatra/voyatra/internal/audit/domain"
	controlcenterdomain "github.com/voyatra/voyatra/internal/controlcenter/domain"
	"go.uber.org/zap"
)

type snapshotResponse struct {
	StoreConfigured bool                         `json:"store_configured"`
	Snapshot        controlcenterdomain.Snapshot `json:"snapshot"`
}

func (s *Server) getControlCenterSnapshot(c *gin.Context) {
	ctx := c.Request.Context()

	snap, err := s.controlCenter.Snapshot(ctx)
	if err != nil {
		c.Error(err)
		return
	}

	actor := c.GetString("actor_id")
	metadata := map[string]any{
		"alert_count":   len(snap.Alerts),
		"recent_count":  len(snap.RecentBookings),
		"configured":    s.controlCenter.Configured(),
		"request_route": c.FullPath(),
	}
	if snap.DayWindow != nil {
		metadata["window_start"] = snap.DayWindow.StartUTC
		metadata["window_end"] = snap.DayWindow.EndUTC
	}
	if err := s.audit.Record(ctx, auditdomain.ActorTypeUser, actor, "control_center.viewed", "control_center", metadata); err != nil {
		s.log.Warn("audit record failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, snapshotResponse{
		StoreConfigured: s.controlCenter.Configured(),
		Snapshot:        snap,
	})
}

type auditListResponse struct {
	Logs []auditdomain.AuditLog `json:"logs"`
}

func (s *Server) listAuditLogs(c *gin.Context) {
	logs, err := s.audit.List(c.Request.Context(), auditdomain.ListFilter{
		Action: c.Query("action"),
		Limit:  50,
	})
	if err != nil {
		c.Error(err)
		return
	}
	if logs == nil {
		logs = []auditdomain.AuditLog{}
	}
	c.JSON(http.StatusOK, auditListResponse{Logs: logs})
}
