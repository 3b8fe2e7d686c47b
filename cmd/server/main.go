package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/domtracker/internal/auth"
	"github.com/freeeve/domtracker/internal/config"
	"github.com/freeeve/domtracker/internal/discord"
	"github.com/freeeve/domtracker/internal/gamehost"
	"github.com/freeeve/domtracker/internal/handler"
	"github.com/freeeve/domtracker/internal/logger"
	"github.com/freeeve/domtracker/internal/metrics"
	"github.com/freeeve/domtracker/internal/middleware"
	"github.com/freeeve/domtracker/internal/repository/postgres"
	redisrepo "github.com/freeeve/domtracker/internal/repository/redis"
	"github.com/freeeve/domtracker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Options{})
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Dev: cfg.DevMode})
	log.Info().Str("port", cfg.Port).Bool("devMode", cfg.DevMode).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()
	redisClient.SetLockTTL(cfg.LockTTL)

	m := metrics.New()

	// Repos and remote sources
	serverRepo := postgres.NewServerRepo(db)
	playerRepo := postgres.NewPlayerRepo(db)
	hosts := gamehost.NewClient(cfg.GameHostTimeout)
	users := discord.NewUserDirectory(cfg.DiscordAPIBase, cfg.DiscordBotToken, redisClient)

	// WebSocket hub
	wsHub := handler.NewHub(m)

	// Services
	serverSvc := service.NewServerService(serverRepo, playerRepo, hosts, users, redisClient)
	serverSvc.SetBroadcaster(wsHub)
	serverSvc.SetMetrics(m)
	watcher := service.NewTurnWatcher(serverSvc, redisClient, cfg.TurnPollInterval)

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	discordOAuth := auth.NewDiscordOAuth(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURL, cfg.DiscordAPIBase)

	// Handlers
	authHandler := handler.NewAuthHandler(discordOAuth, jwtMgr, serverSvc, cfg.DevMode)
	serverHandler := handler.NewServerHandler(serverSvc)
	playerHandler := handler.NewPlayerHandler(serverSvc)
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"postgres": db,
		"redis":    handler.PingFunc(redisClient.Ping),
	})
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr, serverSvc)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)
	protected := func(h http.HandlerFunc) http.Handler { return authMw(h) }

	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.Handle("GET /metrics", m.Handler())

	// Auth (public)
	mux.HandleFunc("GET /auth/discord", authHandler.DiscordLogin)
	mux.HandleFunc("GET /auth/discord/callback", authHandler.DiscordCallback)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)
	mux.HandleFunc("GET /auth/dev", authHandler.DevLogin)

	// Servers: reads are public, changes need a signed-in player.
	mux.HandleFunc("GET /servers", serverHandler.ListServers)
	mux.HandleFunc("GET /servers/{alias}", serverHandler.GetServer)
	mux.HandleFunc("GET /servers/{alias}/snapshot", serverHandler.Snapshot)
	mux.Handle("POST /servers", protected(serverHandler.CreateServer))
	mux.Handle("DELETE /servers/{alias}", protected(serverHandler.DeleteServer))
	mux.Handle("POST /servers/{alias}/start", protected(serverHandler.StartServer))
	mux.Handle("POST /servers/{alias}/players", protected(serverHandler.Register))
	mux.Handle("DELETE /servers/{alias}/players/me", protected(serverHandler.Unregister))

	mux.Handle("GET /players/me", protected(playerHandler.GetMe))
	mux.Handle("PATCH /players/me", protected(playerHandler.UpdateMe))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /ws", wsHandler.ServeWS)

	root := middleware.Chain(mux, middleware.Recover, middleware.Logger, middleware.CORS("*"))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
