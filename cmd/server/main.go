package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/config"
	"github.com/mamadbah2/preorder/internal/repository"
	"github.com/mamadbah2/preorder/internal/repository/filestore"
	"github.com/mamadbah2/preorder/internal/repository/mongodb"
	"github.com/mamadbah2/preorder/internal/repository/sheets"
	"github.com/mamadbah2/preorder/internal/scheduler"
	"github.com/mamadbah2/preorder/internal/server/handlers"
	"github.com/mamadbah2/preorder/internal/server/router"
	"github.com/mamadbah2/preorder/internal/service/commands"
	formsvc "github.com/mamadbah2/preorder/internal/service/forms"
	imagesvc "github.com/mamadbah2/preorder/internal/service/images"
	"github.com/mamadbah2/preorder/internal/service/inventory"
	notifysvc "github.com/mamadbah2/preorder/internal/service/notify"
	ordersvc "github.com/mamadbah2/preorder/internal/service/orders"
	reportingsvc "github.com/mamadbah2/preorder/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/preorder/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/preorder/pkg/clients/whatsapp"
	"github.com/mamadbah2/preorder/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, closeStore := openStore(cfg, baseLogger)
	defer closeStore()

	policy, err := inventory.ParsePolicy(cfg.Catalog.SoldOutPolicy)
	if err != nil {
		baseLogger.Fatal("invalid sold-out policy", zap.Error(err))
	}

	gate := &repository.Gate{}
	formSvc := formsvc.NewService(store, gate, policy, baseLogger.Named("svc.forms"))
	orderSvc := ordersvc.NewService(store, formSvc, gate, baseLogger.Named("svc.orders"))

	imageSvc, err := imagesvc.NewService(cfg.Storage.ImagesPath(), baseLogger.Named("svc.images"))
	if err != nil {
		baseLogger.Fatal("failed to init image store", zap.Error(err))
	}

	var sheetRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetRepo = repo
	} else {
		baseLogger.Warn("google sheets credentials missing, production sheet export disabled")
	}
	reportingSvc := reportingsvc.NewService(orderSvc, formSvc, sheetRepo, cfg.Sheets.ReportRange, baseLogger.Named("svc.reporting"))

	var notifier *notifysvc.Service
	var webhookHandler *handlers.WebhookHandler
	if cfg.WhatsApp.Enabled() {
		waClient := whatsappclient.NewClient(cfg.WhatsApp)
		notifier = notifysvc.NewService(waClient, cfg.WhatsApp.OwnerNumber, baseLogger.Named("svc.notify"))
		baseLogger.Info("whatsapp owner notifications enabled")

		if cfg.WhatsApp.CommandsEnabled() {
			dispatcher := commands.NewService(reportingSvc, formSvc, baseLogger.Named("svc.commands"))
			messaging := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp.VerifyToken, cfg.WhatsApp.OwnerNumber, waClient, dispatcher, baseLogger.Named("svc.whatsapp"))
			webhookHandler = handlers.NewWebhookHandler(messaging, cfg.WhatsApp.AppSecret, baseLogger.Named("handlers.webhook"))
			if cfg.WhatsApp.AppSecret == "" {
				baseLogger.Warn("META_APP_SECRET missing, webhook signatures are not checked")
			}
		} else {
			baseLogger.Warn("META_VERIFY_TOKEN missing, owner command webhook disabled")
		}
	} else {
		notifier = notifysvc.NewService(nil, "", baseLogger.Named("svc.notify"))
		baseLogger.Warn("whatsapp credentials missing, owner notifications disabled")
	}

	var orderNotifier handlers.OrderNotifier
	if notifier.Enabled() {
		orderNotifier = notifier
	}

	gin.SetMode(gin.ReleaseMode)
	engine := router.New(router.Handlers{
		Orders:  handlers.NewOrderHandler(orderSvc, orderNotifier, baseLogger.Named("handlers.orders")),
		Forms:   handlers.NewFormHandler(formSvc, baseLogger.Named("handlers.forms")),
		Media:   handlers.NewMediaHandler(imageSvc, reportingSvc, baseLogger.Named("handlers.media")),
		Webhook: webhookHandler,
	}, cfg.Server.AllowedOrigins, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, notifier, sheetRepo != nil, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore builds the configured backend and returns a function releasing it.
func openStore(cfg *config.Config, baseLogger *zap.Logger) (repository.Store, func()) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		return mongoRepo, func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}
	default:
		fileStore, err := filestore.New(cfg.Storage.OrdersPath(), cfg.Storage.FormsPath(), baseLogger.Named("repo.file"))
		if err != nil {
			baseLogger.Fatal("failed to init file store", zap.Error(err))
		}
		return fileStore, func() {}
	}
}
