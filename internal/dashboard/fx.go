package dashboard

import (
	"github.com/smallbiznis/clientbase/internal/dashboard/repository"
	"github.com/smallbiznis/clientbase/internal/dashboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(repository.NewStore),
	fx.Provide(service.New),
)
