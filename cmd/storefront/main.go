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

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	sess := session.NewStore(store)
	if err := sess.Load(context.Background()); err != nil {
		log.Printf("session restore error: %v \n", err)
	}

	client := api.NewClient(api.NewHTTPClient(cfg.APITimeout), cfg.APIBaseURL)

	cart := service.NewCartService(client, sess)
	wishlist := service.NewWishlistService(client, sess)
	sess.OnClear(cart.Reset)
	sess.OnClear(wishlist.Reset)

	router := h.NewRouter(h.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, sess, h.Handlers{
		Auth:     h.NewAuthHandler(client, sess, cfg.RequestTimeout),
		Catalog:  h.NewCatalogHandler(client, sess, wishlist, cfg.RequestTimeout),
		Cart:     h.NewCartHandler(cart, sess, cfg.RequestTimeout),
		Wishlist: h.NewWishlistHandler(wishlist, sess, cfg.RequestTimeout),
		Orders:   h.NewOrdersHandler(client, cart, sess, cfg.PaymentReturnURL, cfg.RequestTimeout),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s (api %s, storage %s)", cfg.HTTPPort, cfg.APIBaseURL.String(), cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}

// openStorage returns the backend that keeps the session token between runs.
func openStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		s, err := storage.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return s, nil

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
		}
		return storage.NewRedisStorage(rdb), nil

	case config.DriverMemory:
		return storage.NewMemoryStorage(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
