package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"

	"github.com/chepyr/task-dashboard/internal/config"
	"github.com/chepyr/task-dashboard/internal/handlers"
	"github.com/chepyr/task-dashboard/internal/storage"
	"github.com/chepyr/task-dashboard/internal/store"
	"github.com/chepyr/task-dashboard/internal/theme"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Error loading .env file: %v", err)
		}
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	kv, closeStorage := initStorage(cfg)
	defer func() {
		if err := closeStorage(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	handler := initHandlers(cfg, kv)
	server := initServer(cfg, handler)
	startServer(server)
}

func initStorage(cfg config.Config) (storage.KV, func() error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kv, closeFn, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}
	log.Printf("Using %s storage", cfg.Storage.Driver)
	return kv, closeFn
}

func initHandlers(cfg config.Config, kv storage.KV) http.Handler {
	ctx := context.Background()

	st := store.New(kv,
		store.WithKey(cfg.Storage.TasksKey),
		store.WithDefaultPriority(cfg.Tasks.DefaultPriority),
	)
	st.Initialize(ctx)

	pref := theme.New(kv, cfg.Storage.ThemeKey)
	log.Printf("Theme preference: %s", pref.Load(ctx))

	handler := &handlers.Handler{
		Store:              st,
		Theme:              pref,
		WSHub:              handlers.NewWSHub(cfg.Server.AllowedOrigins),
		SearchDescriptions: cfg.Tasks.SearchDescriptions,
	}
	if cfg.Server.RateLimit > 0 {
		handler.RateLimiter = handlers.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	}
	st.OnChange(handler.WSHub.Broadcast)

	return handlers.RequestLogger(handler.Routes())
}

func initServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func startServer(server *http.Server) {
	log.Printf("Starting dashboard server on %s", server.Addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
