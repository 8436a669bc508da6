package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dev-mohitbeniwal/coregate/audit"
	"github.com/dev-mohitbeniwal/coregate/cache"
	"github.com/dev-mohitbeniwal/coregate/config"
	"github.com/dev-mohitbeniwal/coregate/controller"
	"github.com/dev-mohitbeniwal/coregate/db"
	coregate_errors "github.com/dev-mohitbeniwal/coregate/errors"
	"github.com/dev-mohitbeniwal/coregate/featureflag"
	logger "github.com/dev-mohitbeniwal/coregate/logging"
	"github.com/dev-mohitbeniwal/coregate/metrics"
	"github.com/dev-mohitbeniwal/coregate/router"
	"github.com/dev-mohitbeniwal/coregate/signature"
	"github.com/dev-mohitbeniwal/coregate/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := config.GetConfig()

	// Initialize logger
	logger.InitLogger(cfg.Log.Dir)
	defer logger.Sync()

	metrics.Init()

	// Redis is optional: without it every lookup goes to the authorities
	// unless the in-process fallback is enabled
	var store cache.Store = cache.NoopStore{}
	if err := db.InitRedis(cfg.Redis); err != nil {
		logger.Warn("Redis unavailable",
			zap.Bool("memoryFallback", cfg.Cache.MemoryFallback),
			zap.Error(errors.Join(coregate_errors.ErrCacheUnavailable, err)))
		if cfg.Cache.MemoryFallback {
			store = cache.NewMemoryStore(cfg.Cache.MemoryEntries)
		}
	} else {
		store = cache.NewRedisStore(db.RedisClient)
		defer db.CloseRedis()
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}

	flags := featureflag.NewFeatureFlag(store, &featureflag.Options{
		TTL:        cfg.FeatureFlag.TTL,
		CoreURL:    cfg.FeatureFlag.CoreURL,
		HTTPClient: httpClient,
		Coalesce:   cfg.Cache.Coalesce,
	})
	signatures := signature.NewSignatureService(store, &signature.Options{
		CoreURL:    cfg.Signature.CoreURL,
		TTL:        cfg.Signature.TTL,
		SaltRounds: cfg.Signature.SaltRounds,
		HTTPClient: httpClient,
		Coalesce:   cfg.Cache.Coalesce,
	})

	// Initialize EventBus
	eventBus := util.NewEventBus()
	busCtx, stopBus := context.WithCancel(context.Background())
	defer stopBus()
	eventBus.Start(busCtx)

	var auditService audit.Service
	if cfg.Elasticsearch.Enabled {
		auditRepository, err := audit.NewElasticsearchRepository(cfg.Elasticsearch.URL, cfg.Elasticsearch.Index)
		if err != nil {
			logger.Fatal("Failed to create audit repository", zap.Error(err))
		}
		auditService = audit.NewService(auditRepository)
		audit.Subscribe(eventBus, auditService)
		logger.Info("Audit trail enabled", zap.String("index", cfg.Elasticsearch.Index))
	}

	controllers := controller.InitializeControllers(flags, signatures, auditService, store, db.Available)

	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(controllers, signatures, eventBus, cfg.RateLimit.Requests, cfg.RateLimit.Per)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")

		// in-flight requests get 5 seconds to finish
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	eventBus.Wait()
	logger.Info("Server exiting")
}
