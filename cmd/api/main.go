package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/config"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/httpx"
	kafkax "github.com/burgerhouseweligama-hub/burger-house-sub000/internal/kafka"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/notify"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/orders"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/postgres"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// schema first, then pool
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024)
	prod.Start(ctx)

	catalog := &orders.CatalogRepo{DB: db}
	if err := catalog.Seed(ctx); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	svc := &orders.Service{
		Orders:     &orders.Repo{DB: db},
		Carts:      &orders.CartRepo{DB: db},
		Catalog:    catalog,
		Dispatcher: &notify.EventDispatcher{Producer: prod, Service: cfg.ServiceName},
	}
	carts := &orders.CartService{Carts: svc.Carts, Catalog: catalog}

	router := httpx.NewRouter()
	(&httpx.MenuHandler{Catalog: catalog}).Register(router)
	(&httpx.CartHandler{Carts: carts}).Register(router)
	(&httpx.OrdersHandler{Service: svc, Redis: rdb}).Register(router)
	(&httpx.AdminHandler{Service: svc, Redis: rdb}).Register(router)
	(&httpx.StreamHandler{Redis: rdb}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // close inbox -> flush & close writer
	prod.WaitClosed()
}
