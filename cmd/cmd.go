package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alarm-clock-backend/internal/cache"
	"alarm-clock-backend/internal/config"
	"alarm-clock-backend/internal/handlers"
	"alarm-clock-backend/internal/middleware"
	"alarm-clock-backend/internal/repository"
	"alarm-clock-backend/internal/repository/memory"
	"alarm-clock-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// stores bundles the repositories behind the configured database driver
type stores struct {
	users   services.UserStore
	sounds  services.SoundStore
	alarms  services.AlarmStore
	wakeups services.WakeupStore
	pinger  handlers.Pinger
	close   func()
}

// app holds the wired services the router and scheduler are built from
type app struct {
	userService   *services.UserService
	alarmService  *services.AlarmService
	wakeupService *services.WakeupService
	soundService  *services.SoundService
	wsHub         *services.WSHub
	pinger        handlers.Pinger
}

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer st.close()

	// Statistics cache
	var statsCache services.StatsCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisStatsCache(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      time.Duration(cfg.Redis.TTLSeconds) * time.Second,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisCache.Close()
		statsCache = redisCache
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Statistics cache enabled")
	}

	// Asset store
	var assets services.AssetStore
	if cfg.AWS.S3Bucket != "" {
		s3Store, err := services.NewS3AssetStore(ctx, services.S3Config{
			Region:        cfg.AWS.Region,
			Bucket:        cfg.AWS.S3Bucket,
			AccessKey:     cfg.AWS.AccessKey,
			SecretKey:     cfg.AWS.SecretKey,
			Endpoint:      cfg.AWS.Endpoint,
			PublicBaseURL: cfg.AWS.PublicBaseURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create asset store")
		}
		if err := s3Store.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("bucket", cfg.AWS.S3Bucket).Msg("S3 bucket is not reachable")
		}
		assets = s3Store
	} else {
		log.Warn().Msg("No S3 bucket configured, sound file uploads are disabled")
	}

	// Push notifications
	var push services.PushNotifier
	if cfg.APNs.KeyPath != "" {
		apns, err := services.NewAPNsNotifier(services.APNsConfig{
			KeyPath:    cfg.APNs.KeyPath,
			KeyID:      cfg.APNs.KeyID,
			TeamID:     cfg.APNs.TeamID,
			Topic:      cfg.APNs.Topic,
			Production: cfg.APNs.Production,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs notifier")
		}
		push = apns
	}

	a := newApp(st, cfg.JWT.Secret, statsCache, assets)

	// Alarm scheduler
	if cfg.Scheduler.Enabled {
		scheduler := services.NewAlarmScheduler(
			st.alarms,
			a.userService,
			a.wakeupService,
			a.wsHub,
			push,
			time.Duration(cfg.Scheduler.SnoozeMinutes)*time.Minute,
		)
		a.wakeupService.SetSnoozer(scheduler)
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start alarm scheduler")
		}
		defer scheduler.Stop()
		log.Info().Int("snooze_minutes", cfg.Scheduler.SnoozeMinutes).Msg("Alarm scheduler started")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      newRouter(a),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStores connects the configured database driver and runs pending migrations
func openStores(ctx context.Context, cfg config.DatabaseConfig) (*stores, error) {
	if cfg.Driver == "memory" {
		log.Warn().Msg("Using in-memory store, data will not survive a restart")
		return newMemoryStores(), nil
	}

	db, err := repository.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Database connection established")

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &stores{
		users:   repository.NewUserRepository(db),
		sounds:  repository.NewSoundRepository(db),
		alarms:  repository.NewAlarmRepository(db),
		wakeups: repository.NewWakeupRepository(db),
		pinger:  db,
		close:   db.Close,
	}, nil
}

func newMemoryStores() *stores {
	store := memory.NewStore()
	return &stores{
		users:   store.Users(),
		sounds:  store.Sounds(),
		alarms:  store.Alarms(),
		wakeups: store.Wakeups(),
		pinger:  store,
		close:   func() {},
	}
}

// newApp wires the services. statsCache and assets may be nil.
func newApp(st *stores, jwtSecret string, statsCache services.StatsCache, assets services.AssetStore) *app {
	return &app{
		userService:   services.NewUserService(st.users, jwtSecret),
		alarmService:  services.NewAlarmService(st.alarms, statsCache),
		wakeupService: services.NewWakeupService(st.wakeups, st.alarms, statsCache),
		soundService:  services.NewSoundService(st.sounds, assets),
		wsHub:         services.NewWSHub(),
		pinger:        st.pinger,
	}
}

// newRouter builds the HTTP routes
func newRouter(a *app) http.Handler {
	userHandler := handlers.NewUserHandler(a.userService)
	alarmHandler := handlers.NewAlarmHandler(a.alarmService)
	challengeHandler := handlers.NewChallengeHandler(nil)
	statsHandler := handlers.NewStatisticsHandler(a.wakeupService)
	soundHandler := handlers.NewSoundHandler(a.soundService)
	healthHandler := handlers.NewHealthHandler(a.pinger)
	wsHandler := handlers.NewWebSocketHandler(a.wsHub, a.userService, a.wakeupService)

	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.ScopeMiddleware(a.userService))

		r.Post("/account/register", userHandler.Register)
		r.Post("/account/login", userHandler.Login)
		r.Post("/account/logout", userHandler.Logout)
		r.Get("/account", userHandler.Current)
		r.Post("/account/push_token", userHandler.UpdatePushToken)

		r.Post("/upload_sound", soundHandler.UploadSound)
		r.Post("/upload_sound/presign", soundHandler.PresignUpload)
		r.Get("/user_sounds", soundHandler.ListSounds)

		r.Get("/alarms", alarmHandler.ListAlarms)
		r.Post("/alarms", alarmHandler.CreateAlarm)
		r.Delete("/alarms", alarmHandler.DeleteAlarm)
		r.Post("/alarm/toggle", alarmHandler.ToggleAlarm)

		r.Get("/challenge", challengeHandler.GetChallenge)

		r.Get("/statistics", statsHandler.GetStatistics)
		r.Post("/statistics", statsHandler.RecordEvent)
	})

	r.Get("/healthz", healthHandler.Health)

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	return r
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
