package migration

import (
	"github.com/smallbiznis/clientbase/internal/config"
	"github.com/smallbiznis/clientbase/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if err := Run(conn); err != nil {
			return err
		}
		if !cfg.SeedDemo {
			return nil
		}
		return seed.EnsureDemo(conn, log)
	}),
)
