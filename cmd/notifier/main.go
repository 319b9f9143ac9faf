package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/config"
	kafkax "github.com/burgerhouseweligama-hub/burger-house-sub000/internal/kafka"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/notify"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/orders"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Dedup:    &notify.RedisDeduper{RDB: rdb, Service: "notifier"},
		Realtime: &notify.RedisRealtime{RDB: rdb},
		Mailer: &notify.HTTPMailer{
			URL:    cfg.MailAPIURL,
			APIKey: cfg.MailAPIKey,
			From:   cfg.MailFrom,
		},
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, orders.TopicOrderEvents, cfg.NotifierWorkers)

	go func() {
		log.Printf("notifier started: group=%s topic=%s workers=%d", cfg.NotifierGroup, orders.TopicOrderEvents, cfg.NotifierWorkers)
		if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down notifier...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
