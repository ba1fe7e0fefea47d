package audit

import (
	"github.com/voyatra/voyatra/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(service.NewService),
	fx.Invoke(service.Migrate),
)
