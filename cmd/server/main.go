package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/config"
	"github.com/mamadbah2/oilledger/internal/platform/lock"
	"github.com/mamadbah2/oilledger/internal/repository/filestore"
	"github.com/mamadbah2/oilledger/internal/repository/mongodb"
	"github.com/mamadbah2/oilledger/internal/repository/sheets"
	"github.com/mamadbah2/oilledger/internal/repository/store"
	"github.com/mamadbah2/oilledger/internal/scheduler"
	"github.com/mamadbah2/oilledger/internal/server/handlers"
	"github.com/mamadbah2/oilledger/internal/server/router"
	"github.com/mamadbah2/oilledger/internal/service/aggregation"
	catalogsvc "github.com/mamadbah2/oilledger/internal/service/catalog"
	commandsvc "github.com/mamadbah2/oilledger/internal/service/commands"
	dispatchsvc "github.com/mamadbah2/oilledger/internal/service/dispatch"
	pricingsvc "github.com/mamadbah2/oilledger/internal/service/pricing"
	reportingsvc "github.com/mamadbah2/oilledger/internal/service/reporting"
	stocksvc "github.com/mamadbah2/oilledger/internal/service/stock"
	whatsappsvc "github.com/mamadbah2/oilledger/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/oilledger/pkg/clients/whatsapp"
	"github.com/mamadbah2/oilledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx := context.Background()

	var st store.Store
	switch cfg.Store.Backend {
	case config.BackendMongo:
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		st = mongoRepo
	default:
		fileRepo, err := filestore.NewRepository(cfg.Store.FileDir, baseLogger.Named("repo.file"))
		if err != nil {
			baseLogger.Fatal("failed to init file repository", zap.Error(err))
		}
		st = fileRepo
	}
	baseLogger.Info("store ready", zap.String("backend", cfg.Store.Backend))

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		defer func() { _ = redisClient.Close() }()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			baseLogger.Fatal("failed to reach redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		locker = lock.NewRedisLocker(redisClient, cfg.Redis.LockTTL, baseLogger.Named("lock.redis"))
		baseLogger.Info("distributed ledger locks enabled", zap.String("addr", cfg.Redis.Addr))
	}

	catalog := catalogsvc.NewService(st, baseLogger.Named("svc.catalog"))
	if cfg.Ledger.SeedCatalog {
		if _, err := catalog.Seed(ctx, catalogsvc.DefaultSeed()); err != nil {
			baseLogger.Fatal("failed to seed catalog", zap.Error(err))
		}
	}
	if err := catalog.Load(ctx); err != nil {
		baseLogger.Fatal("failed to load catalog", zap.Error(err))
	}

	opening, err := stocksvc.NewOpeningPolicy(cfg.Ledger.OpeningPolicy, st)
	if err != nil {
		baseLogger.Fatal("invalid opening policy", zap.Error(err))
	}

	pricing := pricingsvc.NewService(st, catalog, locker, baseLogger.Named("svc.pricing"))
	stock := stocksvc.NewService(st, catalog, locker, opening, baseLogger.Named("svc.stock"))
	dispatch := dispatchsvc.NewService(st, catalog, stock, locker, baseLogger.Named("svc.dispatch"))
	summaries := aggregation.NewService(catalog, stock, pricing, dispatch)

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
	} else {
		baseLogger.Warn("google sheets not configured, closing export disabled")
	}
	reporting := reportingsvc.NewService(summaries, sheetsRepo, baseLogger.Named("svc.reporting"))

	loc := cfg.Location()
	clock := handlers.Clock{Location: loc}
	apiHandlers := router.Handlers{
		Catalog:  handlers.NewCatalogHandler(catalog, baseLogger.Named("handlers.catalog")),
		Prices:   handlers.NewPriceHandler(pricing, baseLogger.Named("handlers.prices")),
		Stock:    handlers.NewStockHandler(stock, clock, baseLogger.Named("handlers.stock")),
		Dispatch: handlers.NewDispatchHandler(dispatch, clock, baseLogger.Named("handlers.dispatch")),
		Summary:  handlers.NewSummaryHandler(summaries, reporting, clock, baseLogger.Named("handlers.summary")),
	}

	var notifier whatsappsvc.Notifier
	if cfg.WhatsApp.Enabled() {
		waClient := whatsappclient.NewClient(cfg.WhatsApp)
		notifier = whatsappsvc.NewReportNotifier(waClient, cfg.WhatsApp.ReportRecipients, baseLogger.Named("svc.whatsapp"))

		if cfg.WhatsApp.InboundEnabled() {
			dispatcher := commandsvc.NewService(reporting, loc, baseLogger.Named("svc.commands"))
			inbound := whatsappsvc.NewInboundService(cfg.WhatsApp.VerifyToken, waClient, dispatcher, cfg.WhatsApp.ReportRecipients, baseLogger.Named("svc.whatsapp.inbound"))
			apiHandlers.Webhook = handlers.NewWebhookHandler(inbound, baseLogger.Named("handlers.webhook"))
		}
	} else {
		baseLogger.Warn("whatsapp token missing, daily report delivery disabled")
	}

	engine := router.New(apiHandlers, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, loc, dispatch, reporting, notifier, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-sigCtx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
