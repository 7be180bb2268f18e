package sequence

import (
	"github.com/mepworks/invoicing/internal/sequence/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence.service",
	fx.Provide(service.New),
)
