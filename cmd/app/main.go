package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/natefinch/lumberjack.v2"

	"booking-service/internal/config"
	availDelete "booking-service/internal/http-server/handlers/availability/delete"
	availGet "booking-service/internal/http-server/handlers/availability/get"
	availSet "booking-service/internal/http-server/handlers/availability/set"
	bookingCancel "booking-service/internal/http-server/handlers/bookings/cancel"
	bookingCreate "booking-service/internal/http-server/handlers/bookings/create"
	bookingGet "booking-service/internal/http-server/handlers/bookings/get"
	bookingList "booking-service/internal/http-server/handlers/bookings/list"
	bookingSession "booking-service/internal/http-server/handlers/bookings/session"
	clientCredits "booking-service/internal/http-server/handlers/clients/credits"
	clientGet "booking-service/internal/http-server/handlers/clients/get"
	slotGet "booking-service/internal/http-server/handlers/slots/get"
	timeBlockCreate "booking-service/internal/http-server/handlers/time_blocks/create"
	timeBlockDelete "booking-service/internal/http-server/handlers/time_blocks/delete"
	timeBlockGet "booking-service/internal/http-server/handlers/time_blocks/get"
	timeBlockList "booking-service/internal/http-server/handlers/time_blocks/list"
	timeBlockUpdate "booking-service/internal/http-server/handlers/time_blocks/update"
	"booking-service/internal/lock"
	"booking-service/internal/metrics"
	"booking-service/internal/notify"
	svc "booking-service/internal/service"
	"booking-service/internal/storage/postgres"
	"booking-service/internal/video"
	"booking-service/internal/worker"
	slogpretty "booking-service/pkg/handlers/slogPretty"
	"booking-service/pkg/middleware/mwLogger"
	"booking-service/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env, cfg.Log)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	videoClient, err := video.New(video.Config{
		BaseURL:     cfg.Video.BaseURL,
		APIKey:      cfg.Video.APIKey,
		TokenSecret: cfg.Video.TokenSecret,
		Issuer:      cfg.Video.Issuer,
		Timeout:     cfg.Video.Timeout,
		LocalRooms:  cfg.Env == envLocal,
	})
	if err != nil {
		log.Error("Failed to init video client", sl.Err(err))
		os.Exit(1)
	}

	var sender notify.EmailSender = notify.NewStubEmailSender(log)
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.Mail.SendGridAPIKey,
		FromEmail: cfg.Mail.FromEmail,
		FromName:  cfg.Mail.FromName,
	}, log); sg != nil {
		sender = sg
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.New(registry)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	taskClient := asynq.NewClient(redisOpt)

	loc := cfg.Booking.Location()

	service := svc.NewService(log, storage, videoClient, svc.Params{
		HorizonDays:  cfg.Booking.HorizonDays,
		SlotDuration: cfg.Booking.SlotDuration,
		JoinWindow:   cfg.Booking.JoinWindow,
		Location:     loc,
	},
		svc.WithNotifier(notify.NewNotifier(log, sender, loc)),
		svc.WithCompletionScheduler(worker.NewScheduler(taskClient)),
		svc.WithMetrics(bookingMetrics),
	)

	taskServer := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"default": 1},
	})
	if err := taskServer.Start(worker.NewServeMux(log, service)); err != nil {
		log.Error("Failed to start task server", sl.Err(err))
		os.Exit(1)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})
	if cfg.Sweep.Disabled {
		log.Info("Completion sweep disabled")
		close(sweepDone)
	} else {
		sweeper := worker.NewSweeper(log, locker, service, cfg.Sweep.Interval, cfg.Sweep.LockTTL)
		go func() {
			defer close(sweepDone)
			sweeper.Run(sweepCtx)
		}()
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := storage.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Professionals
	router.Put("/professionals/{id}/availability", availSet.New(log, service))
	router.Get("/professionals/{id}/availability", availGet.New(log, service))
	router.Delete("/professionals/{id}/availability", availDelete.New(log, service))
	router.Get("/professionals/{id}/slots", slotGet.New(log, service))
	router.Get("/professionals/{id}/time_blocks", timeBlockList.New(log, service))

	// Time Blocks
	router.Post("/time_blocks", timeBlockCreate.New(log, service))
	router.Get("/time_blocks/{id}", timeBlockGet.New(log, service))
	router.Put("/time_blocks/{id}", timeBlockUpdate.New(log, service))
	router.Delete("/time_blocks/{id}", timeBlockDelete.New(log, service))

	// Bookings
	router.Post("/bookings", bookingCreate.New(log, service))
	router.Get("/bookings", bookingList.New(log, service))
	router.Get("/bookings/{id}", bookingGet.New(log, service))
	router.Put("/bookings/{id}/cancel", bookingCancel.New(log, service))
	router.Post("/bookings/{id}/session", bookingSession.New(log, service))

	// Clients
	router.Get("/clients/{id}", clientGet.New(log, service))
	router.Post("/clients/{id}/credits", clientCredits.New(log, service))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	stopSweep()
	<-sweepDone

	taskServer.Shutdown()
	if err := taskClient.Close(); err != nil {
		log.Error("Failed to close task client", sl.Err(err))
	}

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	} else {
		log.Info("Locker closed")
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string, cfg config.Log) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}

	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
