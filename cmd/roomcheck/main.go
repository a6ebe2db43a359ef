package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roomcheck/roomcheck/internal/ai"
	"github.com/roomcheck/roomcheck/internal/config"
	"github.com/roomcheck/roomcheck/internal/inspection"
	"github.com/roomcheck/roomcheck/internal/maintenance"
	"github.com/roomcheck/roomcheck/internal/pipeline"
	"github.com/roomcheck/roomcheck/internal/queue"
	"github.com/roomcheck/roomcheck/internal/server"
	"github.com/roomcheck/roomcheck/internal/store"
	"github.com/roomcheck/roomcheck/internal/validate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	aiClient, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.TmpDir)
	if err != nil {
		log.Fatalf("AI client initialization failed: %v", err)
	}

	manual, err := inspection.LoadManualObservations(cfg.ManualObservationsFile)
	if err != nil {
		log.Fatalf("manual observations failed to load: %v", err)
	}
	if manual.Len() > 0 {
		log.Printf("loaded manual observations for %d titles", manual.Len())
	}

	var mediaStore store.MediaStore
	videosDir := ""
	if cfg.S3 != nil {
		s3Store, err := store.NewS3Store(ctx, *cfg.S3)
		if err != nil {
			log.Fatalf("storage initialization failed: %v", err)
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			log.Fatalf("storage bucket check failed: %v", err)
		}
		mediaStore = s3Store
		log.Println("using S3 media store")
	} else {
		diskStore, err := store.NewDiskStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("storage initialization failed: %v", err)
		}
		mediaStore = diskStore
		videosDir = diskStore.VideosDir()
		log.Printf("using disk media store at %s", videosDir)
	}

	pipe := pipeline.New(aiClient, mediaStore, cfg.TmpDir)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	uploadQueue := queue.New(func(ctx context.Context, item queue.Item) error {
		_, err := pipe.Process(ctx, pipeline.Request{
			Filename:    item.Name,
			ContentType: item.ContentType,
			Data:        item.Data,
			SkipFiles:   item.SkipFiles,
		})
		return err
	}, cfg.BatchRetention)
	uploadQueue.Start(workerCtx)

	runner := maintenance.NewRunner(cfg.TmpDir, videosDir)
	if err := runner.Start(cfg.MaintenanceSchedule); err != nil {
		log.Fatalf("maintenance scheduling failed: %v", err)
	}
	defer runner.Stop()

	srv := server.New(server.Config{
		Store:          mediaStore,
		Processor:      pipe,
		Verifier:       aiClient,
		Queue:          uploadQueue,
		Manual:         manual,
		VideosDir:      videosDir,
		MaxUploadBytes: validate.MaxUploadBytes,
		BaseURL:        cfg.BaseURL,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       120 * time.Second,
		WriteTimeout:      600 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("roomcheck listening on :%s (model: %s)", cfg.Port, cfg.Model)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	log.Println("shutdown complete")
}
