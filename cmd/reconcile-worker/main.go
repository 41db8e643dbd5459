package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashok9315-cmyk/profolia.art/internal/config"
	"github.com/ashok9315-cmyk/profolia.art/internal/services/objectstore"
	"github.com/ashok9315-cmyk/profolia.art/internal/storage/postgres"
)

// ReconcileWorker sweeps the object store for orphaned objects. Uploads are
// at-least-once: a record write can fail after the payload already landed in
// the bucket, and a canceled archive request can leave uploaded entries
// behind. This worker diffs the bucket against the media records and deletes
// objects nothing points at.
type ReconcileWorker struct {
	storage  *postgres.Postgres
	objects  *objectstore.Service
	interval time.Duration
	grace    time.Duration
	logger   *slog.Logger
}

func NewReconcileWorker(storage *postgres.Postgres, objects *objectstore.Service, interval, grace time.Duration) *ReconcileWorker {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return &ReconcileWorker{
		storage:  storage,
		objects:  objects,
		interval: interval,
		grace:    grace,
		logger:   logger,
	}
}

func (rw *ReconcileWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("Reconcile worker started",
		"interval", rw.interval.String(),
		"grace", rw.grace.String())

	// Run once immediately on startup
	rw.sweepOrphanedObjects(ctx)

	for {
		select {
		case <-ctx.Done():
			rw.logger.Info("Reconcile worker shutting down")
			return
		case <-ticker.C:
			rw.sweepOrphanedObjects(ctx)
		}
	}
}

func (rw *ReconcileWorker) sweepOrphanedObjects(ctx context.Context) {
	startTime := time.Now()

	rw.logger.Info("Starting orphaned object sweep")

	known, err := rw.storage.ObjectKeys()
	if err != nil {
		rw.logger.Error("Failed to load known object keys",
			"error", err.Error(),
			"duration_ms", time.Since(startTime).Milliseconds())
		return
	}

	objects, err := rw.objects.List(ctx, objectstore.KeyPrefix)
	if err != nil {
		rw.logger.Error("Failed to list stored objects",
			"error", err.Error(),
			"duration_ms", time.Since(startTime).Milliseconds())
		return
	}

	deleted := 0
	for _, obj := range objects {
		if _, ok := known[obj.Key]; ok {
			continue
		}
		// The grace window keeps the sweep from racing an ingestion whose
		// record write simply hasn't landed yet.
		if time.Since(obj.LastModified) < rw.grace {
			continue
		}

		if err := rw.objects.Delete(ctx, obj.Key); err != nil {
			rw.logger.Error("Failed to delete orphaned object",
				"object_key", obj.Key,
				"error", err.Error())
			continue
		}
		deleted++
	}

	duration := time.Since(startTime)

	rw.logger.Info("Completed orphaned object sweep",
		"objects_scanned", len(objects),
		"objects_deleted", deleted,
		"duration_ms", duration.Milliseconds(),
		"duration", duration.String())
}

func main() {
	// Load config
	cfg := config.MustLoad()

	// Initialize database connection
	storage, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	// Initialize object store connection
	objects, err := objectstore.NewService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize object store:", err)
	}
	slog.Info("Connected to object store")

	// Sweep every 15 minutes; spare anything younger than an hour so
	// in-flight ingestions are never collected.
	worker := NewReconcileWorker(storage, objects, 15*time.Minute, time.Hour)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Received shutdown signal")
		cancel()
	}()

	// Start the worker
	worker.Start(ctx)

	slog.Info("Reconcile worker stopped")
}
