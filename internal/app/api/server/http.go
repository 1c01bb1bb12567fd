package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/docs"
	"github.com/fatflowers/sagepay/internal/app/api/handlers"
	mw "github.com/fatflowers/sagepay/internal/app/api/middleware"
	"github.com/fatflowers/sagepay/internal/app/service/card"
	"github.com/fatflowers/sagepay/internal/app/service/checkout"
	"github.com/fatflowers/sagepay/internal/app/service/ledger"
	nh "github.com/fatflowers/sagepay/internal/app/service/notification_handler"
	"github.com/fatflowers/sagepay/internal/app/service/statistics"
	cfgpkg "github.com/fatflowers/sagepay/pkg/config"
	"github.com/fatflowers/sagepay/pkg/metrics"
)

func newEngine(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config) *gin.Engine {
	if cfg.Env == cfgpkg.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())

	if cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(prometheus.DefaultRegisterer, log)
		r.Use(p.HandlerFunc())
		serveMetrics(lc, log, cfg.MetricsAddr, p.Handler(prometheus.DefaultGatherer))
	}
	return r
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	notifications *nh.NotificationHandler,
	co *checkout.Service,
	cards *card.Service,
	gl *ledger.GormLedger,
	stats *statistics.Service,
) {
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// SagePay calls /notification and redirects the browser to the others
	sp := r.Group("/sagepay")
	sp.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterSagePayRoutes(sp, notifications, co, log)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterCheckoutRoutes(apiV1.Group("/checkout"), co, cards)
	handlers.RegisterAdminRoutes(apiV1.Group("/admin"), gl, stats)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	listen(lc, log, "http", srv, 120*time.Second)
}

func serveMetrics(lc fx.Lifecycle, log *zap.SugaredLogger, addr string, h http.Handler) {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	listen(lc, log, "metrics", srv, 5*time.Second)
}

func listen(lc fx.Lifecycle, log *zap.SugaredLogger, name string, srv *http.Server, grace time.Duration) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "name", name, "addr", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorw("server error", "name", name, "err", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping server", "name", name)
			shutdownCtx, cancel := context.WithTimeout(ctx, grace)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
