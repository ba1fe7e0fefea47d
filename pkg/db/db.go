package db

import (
	"github.com/voyatra/voyatra/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// New opens the relational store. A deployment without store settings is
// valid: the control center then reports every metric as zero instead of
// failing, so New returns a nil handle rather than an error.
func New(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	if !cfg.StoreConfigured() {
		log.Warn("data store not configured; control center will serve empty snapshots")
		return nil, nil
	}

	dialect, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialect, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	log.Info("data store connected",
		zap.String("type", cfg.DBType),
		zap.String("name", cfg.DBName),
	)
	return conn, nil
}

var Module = fx.Module("db",
	fx.Provide(New),
)
