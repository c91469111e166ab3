package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pusher/pusher-http-go/v5"
	"golang.org/x/exp/slog"

	"go-wingo/internal/config"
	"go-wingo/internal/http-server/handlers/event"
	"go-wingo/internal/http-server/handlers/job"
	"go-wingo/internal/http-server/handlers/mysql"
	"go-wingo/internal/http-server/handlers/user/balance"
	place_bet "go-wingo/internal/http-server/handlers/wingo/bet/save"
	"go-wingo/internal/http-server/handlers/wingo/history"
	"go-wingo/internal/http-server/handlers/wingo/preview"
	"go-wingo/internal/http-server/middleware/auth"
	mwlogger "go-wingo/internal/http-server/middleware/logger"
	"go-wingo/internal/lib/logger/handler/slogpretty"
	"go-wingo/internal/lib/logger/sl"
	"go-wingo/internal/repository"
	"go-wingo/internal/wingo"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const jobQueueSize = 256

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting server...", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err = db.Ping(); err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	handler := mysql.New(db)

	pusherClient := &pusher.Client{
		AppID:   cfg.Pusher.AppID,
		Key:     cfg.Pusher.Key,
		Secret:  cfg.Pusher.Secret,
		Cluster: cfg.Pusher.Cluster,
	}
	pusherEvent := event.NewPusherEvent(log, pusherClient)

	job.Init(jobQueueSize)
	job.NewWorkerPool(4, job.Queue).Start()

	roundRepo := repository.NewRoundRepository(handler)
	betRepo := repository.NewBetRepository(handler)
	userRepo := repository.NewUserRepository(handler)

	userBalance := balance.NewBalance(userRepo, log, pusherEvent)

	engine := wingo.NewEngine(log, cfg.Wingo, roundRepo, betRepo, userRepo, userBalance, pusherEvent, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = engine.Start(ctx); err != nil {
		log.Error("Failed to start wingo engine", sl.Err(err))
		os.Exit(1)
	}

	betSave := place_bet.NewBet(log, roundRepo, betRepo, userRepo, userBalance)
	previewNext := preview.NewPreview(log, roundRepo)
	roundHistory := history.NewHistory(log, roundRepo)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Get("/wingo/{gameType}/history", roundHistory.New())

	router.Group(func(r chi.Router) {
		r.Use(auth.New(log, cfg.Auth.JWTSecret))

		r.Post("/wingo/{gameType}/place-bet", betSave.New())

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(log))

			r.Get("/wingo/{gameType}/preview", previewNext.New())
		})
	})

	log.Info("Server started", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.Timeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	}

	// loops finish an in-flight reveal or settlement before exiting
	engine.Wait()

	log.Info("Server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlogLogger()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlogLogger() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
