package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/mepworks/invoicing/internal/auth/domain"
	"github.com/mepworks/invoicing/internal/config"
	dispatchdomain "github.com/mepworks/invoicing/internal/dispatch/domain"
	invoicedomain "github.com/mepworks/invoicing/internal/invoice/domain"
	"github.com/mepworks/invoicing/internal/metrics"
	paymentdomain "github.com/mepworks/invoicing/internal/payment/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	return NewEngine(httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	authSvc     authdomain.Service
	invoiceSvc  invoicedomain.Service
	paymentSvc  paymentdomain.Service
	dispatchSvc dispatchdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	AuthSvc     authdomain.Service
	InvoiceSvc  invoicedomain.Service
	PaymentSvc  paymentdomain.Service
	DispatchSvc dispatchdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		authSvc:     p.AuthSvc,
		invoiceSvc:  p.InvoiceSvc,
		paymentSvc:  p.PaymentSvc,
		dispatchSvc: p.DispatchSvc,
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/api/auth")

	auth.POST("/login", s.Login)
	auth.POST("/register", s.Register)
	auth.POST("/logout", s.AuthRequired(), s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Invoices --------
	invoices := api.Group("/invoices")
	invoices.GET("/last-invoice-number", s.RequireRole(authdomain.RoleAdmin), s.NextInvoiceNo)
	invoices.GET("", s.RequireRole(authdomain.RoleAdmin), s.ListInvoices)
	invoices.POST("", s.RequireRole(authdomain.RoleAdmin), s.CreateInvoice)
	invoices.GET("/stats", s.RequireRole(authdomain.RoleAdmin), s.InvoiceStats)
	invoices.GET("/sales/over-time", s.RequireRole(authdomain.RoleAdmin), s.SalesOverTime)
	invoices.GET("/stats/status", s.RequireRole(authdomain.RoleAdmin), s.InvoiceStatusCounts)
	invoices.GET("/credit", s.RequireRole(authdomain.RoleAdmin), s.OutstandingCredit)
	invoices.GET("/my-invoices", s.MyInvoices)
	invoices.GET("/:id", s.RequireRole(authdomain.RoleAdmin), s.GetInvoiceByID)

	// -------- Payments --------
	payments := api.Group("/payments", s.RequireRole(authdomain.RoleAdmin))
	payments.POST("", s.CreatePayment)
	payments.GET("/history/:invoiceId", s.PaymentHistory)

	// -------- Dispatch Notes --------
	dispatch := api.Group("/dispatch", s.RequireRole(authdomain.RoleAdmin))
	dispatch.POST("", s.IssueDispatchNote)
	dispatch.GET("/by-invoice/:invoiceId", s.GetDispatchByInvoice)
}
