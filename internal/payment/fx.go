package payment

import (
	"github.com/mepworks/invoicing/internal/payment/repository"
	"github.com/mepworks/invoicing/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
