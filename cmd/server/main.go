package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/luxe-shop/backend/internal/cache"
	"github.com/luxe-shop/backend/internal/config"
	"github.com/luxe-shop/backend/internal/es"
	"github.com/luxe-shop/backend/internal/handlers/address"
	"github.com/luxe-shop/backend/internal/handlers/auth"
	"github.com/luxe-shop/backend/internal/handlers/cart"
	"github.com/luxe-shop/backend/internal/handlers/catalog"
	"github.com/luxe-shop/backend/internal/handlers/checkout"
	"github.com/luxe-shop/backend/internal/handlers/order"
	"github.com/luxe-shop/backend/internal/handlers/review"
	"github.com/luxe-shop/backend/internal/handlers/search"
	"github.com/luxe-shop/backend/internal/handlers/wishlist"
	"github.com/luxe-shop/backend/internal/logging"
	"github.com/luxe-shop/backend/internal/mykafka"
	"github.com/luxe-shop/backend/internal/service/token"
	httpserver "github.com/luxe-shop/backend/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()
	db, err := config.InitDB(ctx, configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod, err = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("KAFKA_ADDRESS not set, event publishing disabled")
	}

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("ES_URL not set, falling back to SQL substring search")
	}

	var productCache *cache.ProductCache
	if configuration.REDIS_ADDR != "" {
		productCache, err = cache.NewProductCache(configuration.REDIS_ADDR)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("REDIS_ADDR not set, product cache disabled")
	}

	tokenService := &token.Service{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:              db,
		AuthHandler:     &auth.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod},
		ProductHandler:  &catalog.ProductHandler{DB: db, Producer: prod, ES: esClient, Cache: productCache},
		CartHandler:     &cart.CartHandler{DB: db, Producer: prod},
		CheckoutHandler: &checkout.CheckoutHandler{DB: db, Producer: prod},
		OrderHandler:    &order.OrderHandler{DB: db, Producer: prod},
		AddressHandler:  &address.AddressHandler{DB: db},
		ReviewHandler:   &review.ReviewHandler{DB: db},
		WishlistHandler: &wishlist.WishlistHandler{DB: db},
		SearchHandler:   &search.SearchHandler{DB: db, ES: esClient, Index: es.ProductIndex},
		TokenService:    tokenService,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}
	if err := productCache.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	log.Println("shutdown complete")
}
