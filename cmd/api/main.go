package main

import (
	"context"
	"log"

	"github.com/Danilov210/Trip-Planner/internal/api"
	"github.com/Danilov210/Trip-Planner/internal/archiver"
	"github.com/Danilov210/Trip-Planner/internal/auth"
	"github.com/Danilov210/Trip-Planner/internal/db"
	"github.com/Danilov210/Trip-Planner/internal/queue"
	"github.com/Danilov210/Trip-Planner/pkg/config"
)

func main() {
	cfg := config.LoadConfig()
	ctx := context.Background()

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

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiration)
	apiServer := api.NewAPI(database, broker, archiver.New(database), tokens)

	log.Println("API server running on :" + cfg.APIPort)
	if err := apiServer.Router().Run(":" + cfg.APIPort); err != nil {
		log.Fatal("Server failed:", err)
	}
}
