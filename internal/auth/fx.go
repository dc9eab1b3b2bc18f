package auth

import (
	"github.com/smallbiznis/clientbase/internal/auth/repository"
	"github.com/smallbiznis/clientbase/internal/auth/service"
	"github.com/smallbiznis/clientbase/internal/auth/session"
	"github.com/smallbiznis/clientbase/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(token.New),
	fx.Provide(service.New),
	session.Module,
)
