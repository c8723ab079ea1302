package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/terraincognita07/mindnet/internal/api"
	"github.com/terraincognita07/mindnet/internal/config"
	"github.com/terraincognita07/mindnet/internal/db"
	"github.com/terraincognita07/mindnet/internal/notify"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func runServer(ctx context.Context, cfg config.Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	location, ok := cfg.Location()
	if !ok {
		log.Warn("invalid timezone, falling back to UTC", zap.String("timezone", cfg.Timezone))
	}
	time.Local = location

	database, err := db.Open(databaseSettings(cfg), log)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	dispatcher := newDispatcher(cfg, log, prometheus.DefaultRegisterer)
	handler, err := api.NewHandler(database, dispatcher, api.Options{
		SecretKey:    cfg.SecretKey,
		TemplatesDir: cfg.TemplatesDir,
		CookieSecure: cfg.CookieSecure,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newApp(cfg, handler)

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("mindnet listening",
		zap.String("addr", "0.0.0.0:"+cfg.Port),
		zap.String("database", cfg.Database.Driver),
		zap.String("timezone", location.String()),
		zap.Bool("email_enabled", cfg.Email.Enabled()),
		zap.Bool("sms_enabled", cfg.SMS.Enabled()),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(cfg config.Config, handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Mental Health Net",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Use(csrf.New(csrfMiddlewareConfig(cfg.CookieSecure)))
	app.Static("/static", cfg.StaticDir)
	api.RegisterRoutes(app, handler)
	return app
}

func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		KeyLookup:      "form:csrf_token",
		CookieName:     "mindnet_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: false,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
	}
}

// newDispatcher wires the configured providers. A channel without credentials stays
// disabled and reports ErrChannelNotConfigured on every incident.
func newDispatcher(cfg config.Config, log *zap.Logger, registerer prometheus.Registerer) *notify.Dispatcher {
	var email notify.EmailSender
	if cfg.Email.Enabled() {
		email = notify.NewSendGridSender(cfg.Email.APIKey)
	} else {
		log.Warn("email channel disabled: email.api_key or email.from_address missing")
	}

	var sms notify.SMSSender
	if cfg.SMS.Enabled() {
		sms = notify.NewTwilioSender(cfg.SMS.AccountSID, cfg.SMS.AuthToken)
	} else {
		log.Warn("sms channel disabled: twilio credentials or crisis number missing")
	}

	return notify.NewDispatcher(email, sms, notify.Settings{
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SMSFrom:     cfg.SMS.FromNumber,
		SMSTo:       cfg.SMS.CrisisNumber,
	}, log, notify.NewMetrics(registerer))
}
