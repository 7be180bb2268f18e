package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/mepworks/invoicing/internal/auth"
	"github.com/mepworks/invoicing/internal/config"
	"github.com/mepworks/invoicing/internal/dispatch"
	"github.com/mepworks/invoicing/internal/invoice"
	"github.com/mepworks/invoicing/internal/logger"
	"github.com/mepworks/invoicing/internal/metrics"
	"github.com/mepworks/invoicing/internal/migration"
	"github.com/mepworks/invoicing/internal/notification"
	"github.com/mepworks/invoicing/internal/payment"
	"github.com/mepworks/invoicing/internal/sequence"
	"github.com/mepworks/invoicing/internal/server"
	"github.com/mepworks/invoicing/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		metrics.Module,
		migration.Module,

		// Functional domains
		sequence.Module,
		invoice.Module,
		payment.Module,
		dispatch.Module,
		notification.Module,
		auth.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
