package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iamasit07/connect4-table/internal/config"
	"github.com/iamasit07/connect4-table/internal/logging"
	"github.com/iamasit07/connect4-table/internal/repository/postgres"
	"github.com/iamasit07/connect4-table/internal/repository/redis"
	"github.com/iamasit07/connect4-table/internal/service/cleanup"
	"github.com/iamasit07/connect4-table/internal/service/game"
	"github.com/iamasit07/connect4-table/internal/service/history"
	transportHttp "github.com/iamasit07/connect4-table/internal/transport/http"
	"github.com/iamasit07/connect4-table/internal/transport/websocket"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	envErr := godotenv.Load()
	if envErr != nil {
		envErr = godotenv.Load("../.env")
	}

	cfg := config.LoadConfig()
	logging.Setup(cfg.LogLevel, cfg.IsProduction())
	if envErr != nil {
		log.Info("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Results archive (optional)
	var historyService *history.Service
	var recorder game.ResultRecorder
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:       cfg.DBMaxOpenConns,
			MaxIdleConns:       cfg.DBMaxIdleConns,
			ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
		})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		log.Info("Running database migrations...")
		if err := postgres.RunMigrations(ctx, db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Info("Database migration completed successfully")

		// 2. Cache in front of the archive (optional)
		var cache history.CacheRepository
		if client := redis.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB); client != nil {
			redisCache := redis.NewCache(client)
			defer redisCache.Close()
			cache = redisCache
		}

		historyService = history.NewService(postgres.NewResultRepo(db), cache, cfg.ResultsCacheTTL)
		recorder = historyService
	} else {
		log.Info("[RESULTS] DATABASE_URL not set, results archive disabled")
	}

	// 3. Tables and their live sockets
	gameService := game.NewService(game.NewManager(), recorder)
	connManager := websocket.NewConnectionManager()
	gameService.SetNotifier(connManager)

	// 4. Background workers
	cleanupWorker := cleanup.NewWorker(gameService, cfg.TableIdleTimeout, cfg.CleanupInterval)
	go cleanupWorker.Start(ctx)

	// 5. HTTP
	wsHandler := websocket.NewHandler(connManager, gameService, cfg.JWTSecret, cfg.AllowedOrigins)
	router := transportHttp.NewRouter(transportHttp.RouterConfig{
		Tables:         transportHttp.NewTableHandler(gameService, cfg.JWTSecret, cfg.TableTokenTTL, cfg.IsProduction()),
		Results:        transportHttp.NewResultsHandler(historyService),
		Socket:         wsHandler.HandleWebSocket,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	connManager.CloseAll()
	gameService.Wait()

	log.Info("Server exited gracefully")
}
