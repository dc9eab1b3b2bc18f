package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/clientbase/internal/auth"
	authdomain "github.com/smallbiznis/clientbase/internal/auth/domain"
	"github.com/smallbiznis/clientbase/internal/auth/session"
	"github.com/smallbiznis/clientbase/internal/authorization"
	"github.com/smallbiznis/clientbase/internal/client"
	clientdomain "github.com/smallbiznis/clientbase/internal/client/domain"
	"github.com/smallbiznis/clientbase/internal/clock"
	"github.com/smallbiznis/clientbase/internal/company"
	"github.com/smallbiznis/clientbase/internal/config"
	"github.com/smallbiznis/clientbase/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/clientbase/internal/dashboard/domain"
	"github.com/smallbiznis/clientbase/internal/observability"
	obsmiddleware "github.com/smallbiznis/clientbase/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/clientbase/internal/observability/metrics"
	obstracing "github.com/smallbiznis/clientbase/internal/observability/tracing"
	"github.com/smallbiznis/clientbase/internal/payment"
	paymentdomain "github.com/smallbiznis/clientbase/internal/payment/domain"
	"github.com/smallbiznis/clientbase/internal/plan"
	plandomain "github.com/smallbiznis/clientbase/internal/plan/domain"
	"github.com/smallbiznis/clientbase/internal/ratelimit"
	"github.com/smallbiznis/clientbase/internal/tenantmetrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	company.Module,
	auth.Module,
	plan.Module,
	client.Module,
	payment.Module,
	dashboard.Module,
	ratelimit.Module,
	tenantmetrics.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterAuthRoutes()
		s.RegisterAPIRoutes()
		s.RegisterFallback()
	}),
	fx.Invoke(run),
)

// NewEngine builds the gin engine with the shared middleware chain. tenant
// may be nil; when set its collectors are served next to the default ones.
func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, tenant *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer}
	if tenant != nil {
		gatherers = append(gatherers, tenant)
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, tenant *prometheus.Registry) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, tenant)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	clock        clock.Clock
	sessions     *session.Manager
	authsvc      authdomain.Service
	authzSvc     authorization.Service
	clientSvc    clientdomain.Service
	planSvc      plandomain.Service
	paymentSvc   paymentdomain.Service
	dashboardSvc dashboarddomain.Service
	dashboardCfg *config.DashboardConfigHolder
	limiter      *ratelimit.Limiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Clock        clock.Clock
	Sessions     *session.Manager
	AuthSvc      authdomain.Service
	AuthzSvc     authorization.Service
	ClientSvc    clientdomain.Service
	PlanSvc      plandomain.Service
	PaymentSvc   paymentdomain.Service
	DashboardSvc dashboarddomain.Service
	DashboardCfg *config.DashboardConfigHolder `optional:"true"`
	Limiter      *ratelimit.Limiter            `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics           `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          log.Named("http.server"),
		clock:        clk,
		sessions:     p.Sessions,
		authsvc:      p.AuthSvc,
		authzSvc:     p.AuthzSvc,
		clientSvc:    p.ClientSvc,
		planSvc:      p.PlanSvc,
		paymentSvc:   p.PaymentSvc,
		dashboardSvc: p.DashboardSvc,
		dashboardCfg: p.DashboardCfg,
		limiter:      p.Limiter,
		obsMetrics:   p.ObsMetrics,
	}
}

func (s *Server) RegisterAuthRoutes() {
	group := s.engine.Group("/auth")
	group.POST("/register", s.AuthRateLimit("register"), s.Register)
	group.POST("/login", s.AuthRateLimit("login"), s.Login)
	group.POST("/logout", s.Logout)
	group.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	clients := api.Group("/clients")
	{
		clients.GET("", s.authorizeAction(authorization.ObjectClient, authorization.ActionClientView), s.ListClients)
		clients.POST("", s.authorizeAction(authorization.ObjectClient, authorization.ActionClientCreate), s.CreateClient)
		clients.GET("/pending-payments", s.authorizeAction(authorization.ObjectClient, authorization.ActionClientView), s.ListPendingPaymentClients)
		clients.GET("/:id", s.authorizeAction(authorization.ObjectClient, authorization.ActionClientView), s.GetClient)
		clients.PUT("/:id", s.authorizeAction(authorization.ObjectClient, authorization.ActionClientUpdate), s.UpdateClient)
	}

	plans := api.Group("/plans")
	{
		plans.GET("", s.authorizeAction(authorization.ObjectPlan, authorization.ActionPlanView), s.ListPlans)
		plans.POST("", s.authorizeAction(authorization.ObjectPlan, authorization.ActionPlanCreate), s.CreatePlan)
		plans.GET("/:id", s.authorizeAction(authorization.ObjectPlan, authorization.ActionPlanView), s.GetPlan)
		plans.PUT("/:id", s.authorizeAction(authorization.ObjectPlan, authorization.ActionPlanUpdate), s.UpdatePlan)
		plans.DELETE("/:id", s.authorizeAction(authorization.ObjectPlan, authorization.ActionPlanDelete), s.DeletePlan)
	}

	payments := api.Group("/payments")
	{
		payments.GET("", s.authorizeAction(authorization.ObjectPayment, authorization.ActionPaymentView), s.ListPayments)
		payments.POST("", s.authorizeAction(authorization.ObjectPayment, authorization.ActionPaymentRecord), s.RecordPayment)
		payments.GET("/:id", s.authorizeAction(authorization.ObjectPayment, authorization.ActionPaymentView), s.GetPayment)
		payments.GET("/:id/receipt", s.authorizeAction(authorization.ObjectPayment, authorization.ActionPaymentView), s.PaymentReceipt)
		payments.PUT("/:id/overdue", s.authorizeAction(authorization.ObjectPayment, authorization.ActionPaymentMarkOverdue), s.MarkPaymentOverdue)
	}

	dashboard := api.Group("/dashboard")
	dashboard.Use(s.authorizeAction(authorization.ObjectDashboard, authorization.ActionDashboardView))
	{
		dashboard.GET("/revenue", s.RevenueSeries)
		dashboard.GET("/kpis", s.KPISnapshot)
	}
}

func (s *Server) RegisterFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
