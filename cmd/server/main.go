package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dorm_maintenance/internal/app"
	"dorm_maintenance/internal/infra/config"
	idb "dorm_maintenance/internal/infra/database"
	"dorm_maintenance/internal/infra/httpapi"
	"dorm_maintenance/internal/infra/logger"
	"dorm_maintenance/internal/infra/scheduler"
	"dorm_maintenance/internal/infra/telegram"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"driver":      cfg.DatabaseDriver,
		"timezone":    cfg.TimeZone,
		"telegram":    cfg.TelegramEnabled(),
	}).Info("Configuration loaded.")

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, dialect, err := idb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established and schema applied.")

	// Initialize Repositories
	scheduleRepo := idb.NewScheduleRepository(db, dialect)
	skipRepo := idb.NewSkipRepository(db, dialect)
	groupRepo := idb.NewAssetGroupRepository(db, dialect)

	clock := app.SystemClock{}

	// Initialize Telegram Bot (optional)
	var (
		bot      *telebot.Bot
		notifier app.Notifier
	)
	if cfg.TelegramEnabled() {
		botLogger := logger.Component("telegram")
		pref := telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
				}
				entry.Error("Telebot error")
			},
		}
		bot, err = telebot.NewBot(pref)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		notifier = telegram.NewDueNotifier(telegram.NewTelebotAdapter(bot), cfg.NotifyChatID)
	}

	// Initialize Services
	adminService := app.NewAdminService(groupRepo, cfg.AdminTelegramID, logger.Component("admin_service"))
	maintenanceService := app.NewMaintenanceService(
		scheduleRepo, skipRepo, groupRepo, clock, cfg.Location, logger.Component("maintenance_service"),
	)
	notificationService := app.NewNotificationServiceImpl(
		scheduleRepo, skipRepo, notifier, clock, cfg.Location, logger.Component("notification_service"),
	)

	// Initialize NotificationScheduler
	notifScheduler := scheduler.NewNotificationScheduler(
		notificationService, logger.Component("scheduler"), cfg.Location, cfg.CronSpecDueScan,
	)
	if err := notifScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start notification scheduler")
	}

	// Register Bot Handlers
	if bot != nil {
		botLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(bot, adminService, botLogger)
		telegram.RegisterAdminHandlers(ctx, bot, telegram.AdminHandlerDeps{
			AdminService:        adminService,
			MaintenanceService:  maintenanceService,
			NotificationService: notificationService,
			Location:            cfg.Location,
			UpcomingDefaultDays: cfg.UpcomingDefaultDays,
		}, botLogger)
		telegram.RegisterMaintenanceResponseHandlers(ctx, bot, maintenanceService, adminService, cfg.Location, botLogger)
		go bot.Start()
		mainLogger.Info("Telegram bot started.")
	}

	// HTTP API
	handlers := httpapi.NewHandlers(
		maintenanceService, adminService, notificationService, clock, cfg.Location, cfg.UpcomingDefaultDays,
		logger.Component("http"),
	)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(handlers, logger.Component("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLogger.WithError(err).Error("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done() // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server shutdown did not complete cleanly")
	}
	if bot != nil {
		bot.Stop()
	}
	notifScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
