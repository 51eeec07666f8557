package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"reelhouse/api"
	"reelhouse/config"
	"reelhouse/handlers"
	"reelhouse/internal/database"
	"reelhouse/services/accounts"
	"reelhouse/services/proxy"
	"reelhouse/services/sessions"
	"reelhouse/utils"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("reelhouse backend starting...")

	cfgManager := config.NewManager(config.PathFromEnv())
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			defer fileWriter.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	accountsSvc, err := accounts.NewService(settings.Cache.Directory)
	if err != nil {
		log.Fatalf("failed to init accounts: %v", err)
	}
	sessionsSvc, err := sessions.NewService(settings.Cache.Directory, time.Duration(settings.Sessions.DurationHours)*time.Hour)
	if err != nil {
		log.Fatalf("failed to init sessions: %v", err)
	}

	if settings.Metadata.TMDBAPIKey == "" {
		log.Printf("[proxy] %s not configured; /api/tmdb will answer 500", config.EnvTMDBAPIKey)
	}
	if settings.Metadata.OMDBAPIKey == "" {
		log.Printf("[proxy] %s not configured; /api/omdb will answer 500", config.EnvOMDBAPIKey)
	}
	proxySvc := proxy.NewService(proxy.Config{
		TMDBAPIKey:        settings.Metadata.TMDBAPIKey,
		OMDBAPIKey:        settings.Metadata.OMDBAPIKey,
		TMDBBaseURL:       settings.Metadata.TMDBBaseURL,
		OMDBBaseURL:       settings.Metadata.OMDBBaseURL,
		Language:          settings.Metadata.Language,
		RequestsPerSecond: settings.Metadata.RequestsPerSecond,
		Burst:             settings.Metadata.Burst,
	}, nil)

	loginLimiter := api.NewIPRateLimiter(rate.Every(time.Minute/time.Duration(settings.Sessions.LoginPerMinute)), settings.Sessions.LoginPerMinute)
	defer loginLimiter.Close()

	r := utils.NewRouter(settings.Server.AllowedOrigins)
	api.Register(r, api.Handlers{
		Auth:         handlers.NewAuthHandler(accountsSvc, sessionsSvc),
		Favorites:    handlers.NewFavoritesHandler(db.Favorites),
		Proxy:        handlers.NewProxyHandler(proxySvc),
		Version:      handlers.NewVersionHandler(),
		Sessions:     sessionsSvc,
		LoginLimiter: loginLimiter,
	})

	stopCleanup := make(chan struct{})
	go sessionsSvc.RunCleanup(time.Hour, stopCleanup)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")
	close(stopCleanup)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
