package config

import (
	"time"

	"go.uber.org/fx"
)

// Module provides the application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(func(cfg Config) *time.Location { return cfg.Location() }),
)
