package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ordercleanup/backend/internal/api/handler"
	"ordercleanup/backend/internal/cleanup"
	"ordercleanup/backend/internal/config"
	"ordercleanup/backend/internal/discord"
	"ordercleanup/backend/internal/logger"
	"ordercleanup/backend/internal/storage"
	"ordercleanup/backend/internal/version"

	"github.com/gin-gonic/gin"
)

func setupStorage(cfg *config.Config) (*storage.Service, func()) {
	log := logger.L
	s := storage.NewStorageService(nil, nil)
	closers := []func(){}

	// 1. PostgreSQL audit table
	if cfg.DatabaseDSN != "" {
		db, err := storage.OpenDatabase(cfg.DatabaseDSN)
		if err != nil {
			log.Error("Failed to connect PostgreSQL, audit rows disabled", "error", err)
		} else {
			s.DB = db
			if err := s.Migrate(); err != nil {
				log.Error("Failed to run migrations", "error", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				closers = append(closers, func() { _ = sqlDB.Close() })
			}
		}
	}

	// 2. Redis deletion events
	if cfg.RedisAddr != "" {
		rdb, err := storage.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Error("Failed to connect Redis, deletion events disabled", "error", err)
		} else {
			s.Redis = rdb
			s.EventsChannel = cfg.RedisEventsChannel
			closers = append(closers, func() { _ = rdb.Close() })
		}
	}

	return s, func() {
		for _, c := range closers {
			c()
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.L
	log.Info("Starting Discord message deletion service", "version", version.Get(), "mode", cfg.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, closeStorage := setupStorage(cfg)
	defer closeStorage()

	gate := cleanup.NewReadinessGate()
	cleaner := cleanup.NewService(gate)

	var wg sync.WaitGroup

	if cfg.RunsBot() {
		botService, err := discord.NewBotService(cfg.DiscordBotToken, gate)
		if err != nil {
			log.Error("Failed to create Discord bot", "error", err)
			os.Exit(1)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := botService.Run(ctx); err != nil {
				log.Error("Discord bot stopped with error", "error", err)
				stop()
			}
		}()
	}

	if cfg.RunsAPI() {
		gin.SetMode(gin.ReleaseMode)
		wait := cleanup.WaitOptions{
			Timeout:       cfg.ReadyTimeout,
			PollInterval:  cfg.ReadyPollInterval,
			BackoffFactor: cfg.ReadyBackoffFactor,
			MaxInterval:   cfg.ReadyMaxInterval,
		}
		h := handler.NewHandler(gate, cleaner, s, wait)
		r := handler.NewRouter(h, handler.RouterOptions{
			JWTSecret: cfg.JWTSecret,
			RateLimit: cfg.RateLimitRPS,
			RateBurst: cfg.RateLimitBurst,
		})

		server := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			// Covers the readiness wait plus a full history scan.
			WriteTimeout:   cfg.ReadyTimeout + 5*time.Minute,
			MaxHeaderBytes: 1 << 20,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("HTTP server listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("HTTP server failed", "error", err)
				stop()
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("HTTP server shutdown failed", "error", err)
			}
		}()
	}

	<-ctx.Done()
	log.Info("Shutting down")
	wg.Wait()
	log.Info("Stopped")
}
