package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teamroom-io/teamroom/internal/app"
	"github.com/teamroom-io/teamroom/internal/auth"
	"github.com/teamroom-io/teamroom/internal/platform/cache"
	"github.com/teamroom-io/teamroom/internal/platform/db"
	"github.com/teamroom-io/teamroom/internal/rbac"
	"github.com/teamroom-io/teamroom/internal/reservations"
	"github.com/teamroom-io/teamroom/internal/rooms"
	"github.com/teamroom-io/teamroom/internal/teams"
	"github.com/teamroom-io/teamroom/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	rbacService := rbac.NewService(pool)

	codec := auth.NewCodec(cfg.TokenSecret, cfg.TokenTTL)
	authService := auth.NewService(auth.NewRepository(pool), codec)
	authHandler := auth.NewHandler(logger, authService)

	usersService := users.NewService(users.NewRepository(pool), rbacService)
	usersHandler := users.NewHandler(logger, usersService)

	teamsService := teams.NewService(teams.NewRepository(pool), rbacService)
	teamsHandler := teams.NewHandler(logger, teamsService)

	roomsService := rooms.NewService(rooms.NewRepository(pool))
	roomsHandler := rooms.NewHandler(logger, roomsService)

	reservationsService := reservations.NewService(reservations.NewRepository(pool), rbacService)
	reservationsHandler := reservations.NewHandler(logger, reservationsService)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AuthService:         authService,
		AuthHandler:         authHandler,
		UsersHandler:        usersHandler,
		TeamsHandler:        teamsHandler,
		RoomsHandler:        roomsHandler,
		ReservationsHandler: reservationsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
