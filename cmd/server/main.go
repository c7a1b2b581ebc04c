package main

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

	"github.com/irodion/concert-ticketing/internal/admission"
	"github.com/irodion/concert-ticketing/internal/config"
	"github.com/irodion/concert-ticketing/internal/database"
	"github.com/irodion/concert-ticketing/internal/handler"
	"github.com/irodion/concert-ticketing/internal/middleware"
	"github.com/irodion/concert-ticketing/internal/model"
	"github.com/irodion/concert-ticketing/internal/queue"
	"github.com/irodion/concert-ticketing/internal/repository"
	"github.com/irodion/concert-ticketing/internal/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := database.EnsureSchema(startupCtx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	concerts := repository.NewConcertRepo(db)
	tickets := repository.NewTicketRepo(db)
	favourites := repository.NewFavouriteRepo(db)
	ctrl := admission.NewController(repository.NewAdmissionStore(db))

	seedAdmin(startupCtx, cfg, users)

	e := echo.New()
	e.HideBanner = true

	// Redis is optional. With no client both middlewares pass through.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterAll(e, router.Handlers{
		Auth:   handler.NewAuthHandler(cfg, users, tokens),
		Public: handler.NewPublicHandler(concerts),
		Fan:    handler.NewFanHandler(ctrl, concerts, tickets, favourites),
		Band:   handler.NewBandHandler(concerts, ctrl),
		Admin:  handler.NewAdminHandler(users, ctrl),
	}, cfg.JWTSecret)

	// The activity consumer reconnects on its own; a hard error here
	// means the broker URL itself is unusable.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- e.Start(addr)
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}

// seedAdmin creates the bootstrap admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are set and the account does not exist yet.
func seedAdmin(ctx context.Context, cfg config.Config, users *repository.UserRepo) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return
	}
	id, err := users.Create(ctx, cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin, cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return
		}
		log.Printf("seed admin: %v", err)
		return
	}
	log.Printf("seeded admin account %s (id=%d)", cfg.AdminEmail, id)
}
