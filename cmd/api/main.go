package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shinyyama/broadcast-feed/internal/config"
	"github.com/shinyyama/broadcast-feed/internal/db"
	"github.com/shinyyama/broadcast-feed/internal/logctx"
	"github.com/shinyyama/broadcast-feed/internal/media"
	appmw "github.com/shinyyama/broadcast-feed/internal/middleware"
	"github.com/shinyyama/broadcast-feed/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logctx.Setup("info", false)
		log.Fatal().Err(err).Msg("config load failed")
	}
	logctx.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authMw, err := appmw.NewAuthMiddleware(ctx, cfg.FirebaseProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("firebase auth init failed")
	}
	if authMw == nil {
		log.Warn().Msg("FIREBASE_PROJECT_ID not set; write routes are unauthenticated")
	}

	opts := server.Options{
		GitSHA:            cfg.GitSHA,
		BuildTime:         cfg.BuildTime,
		CORSAllowedSuffix: cfg.CORSAllowedSuffix,
		Auth:              authMw,
	}
	if cfg.StorageBucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("storage client init failed")
		}
		defer client.Close()
		opts.Uploader = media.NewGCSUploader(cfg.StorageBucket, media.NewBucketWriter(client, cfg.StorageBucket))
	}

	srv := server.New(nil, opts)
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("git_sha", cfg.GitSHA).Msg("starting server")
		errCh <- srv.Start(addr)
	}()

	// The database is attached once reachable; /healthz reports 503 until then.
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Error().Err(err).Msg("db connect failed")
			return
		}
		if cfg.AutoMigrate {
			if err := db.Migrate(conn); err != nil {
				log.Error().Err(err).Msg("auto migrate failed")
				return
			}
		}
		srv.SetDB(conn)
		log.Info().Str("driver", cfg.DBDriver).Msg("database ready")
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
		log.Info().Msg("server stopped")
	}
}
