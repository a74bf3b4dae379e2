package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"medbook/backend/internal/clock"
	"medbook/backend/internal/config"
	"medbook/backend/internal/service/appointments"
	"medbook/backend/internal/service/auth"
	"medbook/backend/internal/service/availability"
	"medbook/backend/internal/service/directory"
	"medbook/backend/internal/service/reminders"
	"medbook/backend/internal/store/postgres"
	httptransport "medbook/backend/internal/transport/http"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "medbook-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "medbook-server"),
	)
	slog.SetDefault(log)

	log.Info("starting", slog.String("http_addr", cfg.HTTPAddr), slog.String("log_level", cfg.LogLevel))

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	apptRepo := postgres.NewAppointmentRepo(db)
	userRepo := postgres.NewUserRepo(db)
	doctorRepo := postgres.NewDoctorRepo(db)
	fieldRepo := postgres.NewMedicalFieldRepo(db)
	slotRepo := postgres.NewTimeSlotRepo(db)
	otpRepo := postgres.NewOTPRepo(db)

	clk := clock.System{}

	authSvc := auth.NewService(otpRepo, userRepo, clk, []byte(cfg.JWTSecret), cfg.JWTTTL, cfg.OTPTTL, log)
	apptSvc := appointments.NewService(apptRepo, userRepo, doctorRepo, clk)
	availSvc := availability.NewCalculator(slotRepo, apptRepo)
	dirSvc := directory.NewService(doctorRepo, fieldRepo)

	selector := reminders.NewSelector(apptRepo, userRepo, doctorRepo, log)
	runner := reminders.NewRunner(
		selector,
		reminders.LogNotifier{Log: log},
		clk,
		cfg.ReminderInterval,
		cfg.ReminderInitialDelay,
		cfg.ReminderLookahead,
		log,
	)

	e := httptransport.NewServer(
		httptransport.ServerConfig{
			RequestTimeout: cfg.RequestTimeout,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		},
		authSvc,
		httptransport.Handlers{
			Auth:         httptransport.NewAuthHandler(authSvc, log),
			Appointments: httptransport.NewAppointmentsHandler(apptSvc, log),
			Slots:        httptransport.NewSlotsHandler(availSvc, log),
			Directory:    httptransport.NewDirectoryHandler(dirSvc, log),
		},
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runner.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.HTTPAddr)
	}()

	log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, e, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func shutdown(log *slog.Logger, e *echo.Echo, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed", slog.Any("err", err))
		return
	}
	log.Info("http server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
