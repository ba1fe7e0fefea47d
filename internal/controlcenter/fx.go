package controlcenter

import (
	"github.com/voyatra/voyatra/internal/controlcenter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("controlcenter.service",
	fx.Provide(service.NewService),
)
