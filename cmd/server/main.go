package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-checkout/config"
	"storefront-checkout/internal/api"
	"storefront-checkout/internal/broker"
	"storefront-checkout/internal/cache"
	"storefront-checkout/internal/cartstore"
	"storefront-checkout/internal/service"
	"storefront-checkout/internal/session"
	"storefront-checkout/internal/upstream"
	"storefront-checkout/internal/util"
	"storefront-checkout/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront checkout service")

	tp, err := util.InitTracer("storefront-checkout", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	var snapshotCache cache.SnapshotCache
	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, using in-memory snapshot cache: %v", err)
		snapshotCache = cache.NewMemoryCache()
	} else {
		defer redisCache.Close()
		snapshotCache = redisCache
		log.Println("Redis snapshot cache connected")
	}

	client := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, cfg.Upstream.MaxReadRetries)

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrders)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	sessions := session.NewRegistry(cfg.Session.TTL)
	cart := cartstore.NewStore(client, snapshotCache)
	selection := service.NewSelectionEngine(cart, cfg.Pricing)
	resolver := service.NewCheckoutResolver(client)
	addresses := service.NewAddressManager(client)
	submitter := service.NewOrderSubmitter(client, cart, eventPublisher)
	history := service.NewOrderHistory(client)

	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()

	janitor := worker.NewSessionJanitor(sessions, cart, cfg.Session.SweepInterval)
	go func() {
		if err := janitor.Start(janitorCtx); err != nil && err != context.Canceled {
			log.Printf("Session janitor error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(sessions, cart, selection, resolver, addresses, submitter, history)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	janitorCancel()

	log.Println("Server exited")
}
