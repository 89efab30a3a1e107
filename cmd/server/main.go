package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradealerts/internal/alert"
	"tradealerts/internal/config"
	"tradealerts/internal/confluence"
	cronrunner "tradealerts/internal/cron"
	"tradealerts/internal/db"
	"tradealerts/internal/handler"
	"tradealerts/internal/logger"
	"tradealerts/internal/notify"
	"tradealerts/internal/parser"
	"tradealerts/internal/repository"
	gormrepository "tradealerts/internal/repository/gorm"
	memoryrepository "tradealerts/internal/repository/memory"
	"tradealerts/internal/state"
	"tradealerts/internal/toggle"
)

func main() {
	cfgPath := os.Getenv("TA_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TA_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var store repository.Repository
	var dbConn *db.DB
	if strings.TrimSpace(cfg.DB.DSN) == "" {
		logger.Warn("db dsn empty, using in-memory store (state is lost on restart)")
		store = memoryrepository.New()
	} else {
		dbConn, err = db.Open(cfg.DB)
		if err != nil {
			logger.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close(dbConn)

		if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
			logger.Warn("failed to set timezone", zap.Error(err))
		}
		if err := db.AutoMigrate(dbConn); err != nil {
			logger.Fatal("auto-migrate failed", zap.Error(err))
		}
		store = gormrepository.New(dbConn.Gorm)
	}

	sessionLoc, err := time.LoadLocation(cfg.Session.Timezone)
	if err != nil {
		logger.Warn("invalid session timezone, falling back to UTC",
			zap.String("timezone", cfg.Session.Timezone), zap.Error(err))
		sessionLoc = time.UTC
	}

	stateSvc := &state.Service{
		Repo:      store,
		Logger:    logger,
		OpTimeout: cfg.DB.OpTimeout,
	}
	if restored, err := stateSvc.BootstrapFromHistory(context.Background()); err != nil {
		logger.Warn("state bootstrap failed", zap.Error(err))
	} else if restored > 0 {
		logger.Info("state bootstrapped from history", zap.Int("restored", restored))
	}

	ruleStore := confluence.NewStore(cfg.Rules.Path, logger)
	if err := ruleStore.Load(); err != nil {
		logger.Fatal("confluence rules load failed", zap.Error(err))
	}
	ruleEngine := &confluence.Engine{Store: ruleStore, Logger: logger}

	toggleSvc := &toggle.Service{
		Repo:        store,
		Logger:      logger,
		OpTimeout:   cfg.DB.OpTimeout,
		TagSuffixes: cfg.Toggles.TagSuffixes,
	}

	pipeline := &alert.Pipeline{
		States:  stateSvc,
		Rules:   ruleEngine,
		Toggles: toggleSvc,
		Session: alert.SessionWindow{
			Location:  sessionLoc,
			OpenHour:  cfg.Session.OpenHour,
			CloseHour: cfg.Session.CloseHour,
		},
		Logger: logger,
	}

	directory := &notify.Directory{
		Repo:      store,
		Logger:    logger,
		OpTimeout: cfg.DB.OpTimeout,
	}
	sender := notify.NewSender(cfg.Webhook.Timeout, logger)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	var healthDB *handler.HealthHandler
	if dbConn != nil {
		healthDB = &handler.HealthHandler{DB: dbConn.Gorm}
	} else {
		healthDB = &handler.HealthHandler{}
	}
	healthDB.Register(engine)

	smsHandler := &handler.SMSHandler{
		Parser:    &parser.Parser{DefaultSymbol: cfg.App.DefaultSymbol},
		Pipeline:  pipeline,
		Directory: directory,
		Sender:    sender,
		Location:  sessionLoc,
		ScalpURL:  cfg.Webhook.ScalpURL,
		Logger:    logger,
	}
	smsHandler.Register(engine)

	stateHandler := &handler.StateHandler{States: stateSvc, Repo: store}
	stateHandler.Register(engine)
	ruleHandler := &handler.RuleHandler{Rules: ruleStore}
	ruleHandler.Register(engine)
	toggleHandler := &handler.ToggleHandler{Toggles: toggleSvc}
	toggleHandler.Register(engine)
	webhookHandler := &handler.WebhookHandler{
		Directory: directory,
		States:    stateSvc,
		Toggles:   toggleSvc,
	}
	webhookHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		summaryJob := &notify.SummaryJob{
			States:    stateSvc,
			Directory: directory,
			Sender:    sender,
			Logger:    logger,
			Location:  sessionLoc,
		}
		if _, err := cronRunner.Add(cfg.Cron.DailySummary, summaryJob.Run); err != nil {
			logger.Warn("cron register daily summary failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
