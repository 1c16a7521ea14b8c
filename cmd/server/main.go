package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nailsalon/internal/api"
	"nailsalon/internal/auth"
	"nailsalon/internal/config"
	"nailsalon/internal/repository"
	"nailsalon/internal/scheduling"
	"nailsalon/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open DB")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, admin login is disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewDBStatsCollector(db, "salon"))
	metrics := service.NewMetrics(reg)

	appointmentRepo := repository.NewAppointmentRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	jobRepo := repository.NewJobRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)

	sender := service.NewSenderService(cfg, metrics)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, serviceRepo, availabilityRepo, sender, metrics, cfg.Policy(), cfg.Salon.MaxRangeDays)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo)
	jobSvc := service.NewJobService(jobRepo, metrics)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)

	router := api.NewRouter(api.Routes{
		User:           api.NewUserAppointmentHandler(appointmentSvc),
		Admin:          api.NewAdminHandler(appointmentSvc, availabilitySvc),
		Auth:           api.NewAdminAuthHandler(adminAuthSvc),
		AdminAuth:      auth.AdminAuthMiddleware(cfg.JWTSecret),
		BookingLimiter: api.NewRateLimiter(cfg.Booking.RateLimit, cfg.Booking.RateBurst),
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Health: func(w http.ResponseWriter, r *http.Request) {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		},
	})
	router.Use(api.RequestLogger(log.Logger))

	var handler http.Handler = router
	handler = handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
	)(handler)
	handler = handlers.ProxyHeaders(handler)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}), handlers.PrintRecoveryStack(true))(handler)

	jobs := cron.New(cron.WithLocation(scheduling.Location))
	if _, err := jobs.AddFunc(cfg.Jobs.CompleteSpec, func() {
		if _, err := jobSvc.CompleteFinishedAppointments(context.Background(), time.Now()); err != nil {
			log.Error().Err(err).Msg("complete finished appointments job failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Jobs.CompleteSpec).Msg("invalid cron spec")
	}
	if _, err := jobs.AddFunc(cfg.Jobs.ExpireSpec, func() {
		if _, err := jobSvc.CancelExpiredPending(context.Background(), time.Now()); err != nil {
			log.Error().Err(err).Msg("cancel expired pending job failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Jobs.ExpireSpec).Msg("invalid cron spec")
	}
	jobs.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	<-jobs.Stop().Done()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	sender.Wait()
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...any) {
	log.Error().Interface("panic", v).Msg("recovered from panic")
}
