package dispatch

import (
	"github.com/mepworks/invoicing/internal/dispatch/repository"
	"github.com/mepworks/invoicing/internal/dispatch/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dispatch.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
