package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-api/internal/config"
	"github.com/moviehub/movie-api/internal/database"
	"github.com/moviehub/movie-api/internal/errs"
	"github.com/moviehub/movie-api/internal/handler"
	"github.com/moviehub/movie-api/internal/middleware"
	"github.com/moviehub/movie-api/internal/queue"
	"github.com/moviehub/movie-api/internal/repository"
	"github.com/moviehub/movie-api/internal/router"
	queue_publisher "github.com/moviehub/movie-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	attempts := repository.NewLoginAttemptRepo(db)
	movies := repository.NewMovieRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, sessions, attempts)
	movieHandler := handler.NewMovieHandler(movies, queue_publisher.PublishMovieEvent)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)
	protect := middleware.Protect(cfg.JWTSecret, users, sessions)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errs.Handler(cfg.Env)
	router.Register(e, cfg, limiter, protect, authHandler, movieHandler)

	// The audit consumer only makes sense when a broker is configured;
	// without one it would sit in a reconnect loop forever.
	if os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != "" {
		go func() {
			if err := queue.StartMovieConsumer(); err != nil {
				log.Printf("movie consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Graceful drain: stop accepting, finish in-flight requests, close DB.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
