package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"campusmate/api/internal/app"
	"campusmate/api/internal/assistant"
	"campusmate/api/internal/config"
	"campusmate/api/internal/files"
	"campusmate/api/internal/kv"
	"campusmate/api/internal/search"
	"campusmate/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	kvStore, err := kv.Open(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer kvStore.Close()

	// Fold any legacy unpartitioned task record into per-owner partitions
	// before serving traffic.
	if err := store.NewTasks(kvStore).Sweep(ctx); err != nil {
		log.Printf("WARNING: startup sweep error (will retry on next restart): %v", err)
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient)

	var fileStorage *files.Storage
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		fileStorage, err = files.New(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Printf("WARNING: object storage unavailable, keeping file bodies inline: %v", err)
			fileStorage = nil
		}
	}

	service := app.NewService(app.Options{
		KV:          kvStore,
		JWTSecret:   []byte(cfg.JWTSecret),
		AccessTTL:   cfg.AccessTTL,
		AppVersion:  cfg.AppVersion,
		EmailDomain: cfg.EmailDomain,
		Search:      searchService,
		Files:       fileStorage,
		Assistant:   assistant.NewService(cfg.OllamaURL, cfg.OllamaModel),
	})

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Must outlast the assistant's 120s upstream timeout.
		WriteTimeout: 150 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("CampusMate API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
