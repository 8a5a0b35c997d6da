package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Danilov210/Trip-Planner/internal/db"
	"github.com/Danilov210/Trip-Planner/internal/planner"
	"github.com/Danilov210/Trip-Planner/internal/queue"
	"github.com/Danilov210/Trip-Planner/internal/worker"
	"github.com/Danilov210/Trip-Planner/pkg/config"
)

func main() {
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	defer database.Close()

	broker, err := queue.NewRedisBroker(cfg.RedisAddr, cfg.Topic, cfg.BrokerConnectRetries, cfg.BrokerConnectDelay)
	if err != nil {
		log.Fatal("Broker connection failed:", err)
	}
	defer broker.Close()

	if err := broker.EnsureGroup(ctx, cfg.ConsumerGroup); err != nil {
		log.Fatal("Consumer group setup failed:", err)
	}

	gen := planner.NewOpenAIPlanner(cfg.OpenAIKey, cfg.OpenAIModel)
	enricher := planner.NewGoogleClient(cfg.GoogleAPIKey)

	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		consumer := fmt.Sprintf("worker-%d", i)
		w := worker.NewWorker(database, broker, gen, enricher, cfg.ConsumerGroup, consumer)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Start(ctx)
		}()
	}
	wg.Wait()
}
