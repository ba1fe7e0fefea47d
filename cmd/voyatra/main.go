package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/voyatra/voyatra/internal/clock"
	"github.com/voyatra/voyatra/internal/config"
	"github.com/voyatra/voyatra/internal/logger"
	"github.com/voyatra/voyatra/internal/server"
	"github.com/voyatra/voyatra/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
