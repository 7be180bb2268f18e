package migration

import (
	"context"

	authdomain "github.com/mepworks/invoicing/internal/auth/domain"
	"github.com/mepworks/invoicing/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			return AutoMigrate(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
	fx.Invoke(func(authSvc authdomain.Service, cfg config.Config) error {
		return authSvc.EnsureAdmin(context.Background(), cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword)
	}),
)
