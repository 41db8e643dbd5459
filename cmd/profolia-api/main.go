package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/ashok9315-cmyk/profolia.art/docs"
	"github.com/ashok9315-cmyk/profolia.art/internal/cache"
	"github.com/ashok9315-cmyk/profolia.art/internal/config"
	"github.com/ashok9315-cmyk/profolia.art/internal/events"
	mediaHandlers "github.com/ashok9315-cmyk/profolia.art/internal/http/handlers/media"
	wsHandlers "github.com/ashok9315-cmyk/profolia.art/internal/http/handlers/websocket"
	"github.com/ashok9315-cmyk/profolia.art/internal/http/middleware"
	"github.com/ashok9315-cmyk/profolia.art/internal/services/classifier"
	"github.com/ashok9315-cmyk/profolia.art/internal/services/ingest"
	"github.com/ashok9315-cmyk/profolia.art/internal/services/objectstore"
	"github.com/ashok9315-cmyk/profolia.art/internal/storage/postgres"
	"github.com/ashok9315-cmyk/profolia.art/internal/websocket"
)

// @title Profolia Media API
// @version 1.0
// @description Media ingestion service for profolia.art portfolios. Uploads single files or ZIP archives, classifies them and serves the resulting gallery.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// load config
	cfg := config.MustLoad()

	// database setup
	pg, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	// object store setup
	objects, err := objectstore.NewService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize object store:", err)
	}
	slog.Info("Connected to object store", slog.String("bucket", cfg.MinIO.BucketName))

	// redis-backed record cache and rate limits
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := cache.NewCacheService(pg, redisClient)

	// classifier is optional; without an API key every asset lands in the
	// default category
	var cls classifier.Classifier
	if cfg.Gemini.APIKey != "" {
		gemini, err := classifier.NewGemini(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatal("Failed to initialize classifier:", err)
		}
		cls = gemini
	} else {
		slog.Warn("No Gemini API key configured, classification disabled")
	}

	// websocket hub for ingestion progress events
	hub := websocket.NewHub()
	go hub.Run()
	publisher := events.NewEventPublisher(hub)

	pipeline := ingest.NewService(objects, store, cls, publisher, &cfg.Media)

	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	rateLimits := middleware.NewRateLimitConfig(redisClient)

	// setup server
	router := http.NewServeMux()

	router.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("profolia media service"))
	})

	router.Handle("POST /api/media",
		auth(rateLimits.RateLimitMiddleware("upload")(mediaHandlers.UploadMedia(pipeline, store, &cfg.Media))))
	router.Handle("POST /api/media/archive",
		auth(rateLimits.RateLimitMiddleware("archive")(mediaHandlers.UploadArchive(pipeline, store, &cfg.Media))))
	router.Handle("GET /api/media", auth(mediaHandlers.ListMedia(store)))
	router.Handle("DELETE /api/media/{id}", auth(mediaHandlers.DeleteMedia(store, objects)))
	router.Handle("POST /api/media/order",
		auth(rateLimits.RateLimitMiddleware("reorder")(mediaHandlers.ReorderMedia(store))))
	router.Handle("POST /api/media/upload-url", auth(mediaHandlers.GenerateUploadURL(objects)))
	router.Handle("GET /api/media/{id}/download-url", auth(mediaHandlers.GenerateDownloadURL(store, objects)))

	router.HandleFunc("GET /ws", wsHandlers.WebSocketHandler(hub, cfg.JWTSecret))
	router.Handle("GET /swagger/", httpSwagger.WrapHandler)

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: router,
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
