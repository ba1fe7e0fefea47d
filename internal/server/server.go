package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/voyatra/voyatra/internal/audit"
	auditdomain "github.com/voyatra/voyatra/internal/audit/domain"
	"github.com/voyatra/voyatra/internal/authorization"
	"github.com/voyatra/voyatra/internal/config"
	"github.com/voyatra/voyatra/internal/controlcenter"
	controlcenterdomain "github.com/voyatra/voyatra/internal/controlcenter/domain"
	"github.com/voyatra/voyatra/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	store.Module,
	authorization.Module,
	audit.Module,
	controlcenter.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestContextMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	controlCenter controlcenterdomain.Service
	audit         auditdomain.Service
	authz         authorization.Service
	limiter       *rateLimiter
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	Log              *zap.Logger
	ControlCenterSvc controlcenterdomain.Service
	AuditSvc         auditdomain.Service
	AuthzSvc         authorization.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		controlCenter: p.ControlCenterSvc,
		audit:         p.AuditSvc,
		authz:         p.AuthzSvc,
		limiter:       newRateLimiter(30, time.Minute),
	}
}

func registerRoutes(s *Server) {
	api := s.engine.Group("/api/v1")

	cc := api.Group("/control-center")
	cc.Use(s.requireAccess(authorization.ObjectControlCenter, authorization.ActionControlCenterView))
	cc.Use(s.rateLimited())
	cc.GET("/snapshot", s.getControlCenterSnapshot)

	auditGroup := api.Group("/audit-logs")
	auditGroup.Use(s.requireAccess(authorization.ObjectAuditLog, authorization.ActionAuditLogView))
	auditGroup.GET("", s.listAuditLogs)
}

func run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
