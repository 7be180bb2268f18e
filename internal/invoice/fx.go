package invoice

import (
	"github.com/mepworks/invoicing/internal/invoice/repository"
	"github.com/mepworks/invoicing/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
