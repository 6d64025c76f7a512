package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/mixtape/internal/app"
	"github.com/cesargomez89/mixtape/internal/config"
	"github.com/cesargomez89/mixtape/internal/constants"
	httpapp "github.com/cesargomez89/mixtape/internal/http"
	"github.com/cesargomez89/mixtape/internal/metadata"
	"github.com/cesargomez89/mixtape/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	if err := storage.EnsureDir(cfg.ScratchDir); err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}

	var prober metadata.Prober
	if ff, err := metadata.NewFFprobe(cfg.FFprobePath, constants.DefaultProbeTimeout); err == nil {
		prober = ff
	} else {
		log.Warn("ffprobe unavailable, durations come from tags only", "error", err)
	}

	tracks := app.NewTrackService(db, blobs, metadata.NewExtractor(prober), cfg.ScratchDir, log)
	h := httpapp.NewHandler(tracks, cfg.MaxUploadBytes(), log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapp.NewRouter(h, cfg.AllowedOrigins()),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr, "db", cfg.DBDriver, "blobs", cfg.BlobBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exiting")
	return nil
}

func openBlobStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.BlobBackend {
	case constants.BackendMinio:
		return storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			Region:    cfg.Minio.Region,
			UseSSL:    cfg.Minio.UseSSL,
		})
	default:
		return storage.NewDiskStore(cfg.UploadsDir)
	}
}
