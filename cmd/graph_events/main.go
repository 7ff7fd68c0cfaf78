package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"socialgraph/config"
	"socialgraph/logger"
	"socialgraph/services"

	"github.com/joho/godotenv"
)

// graph_events читает события графа из RabbitMQ и пишет их в лог.
// Нужен для отладки интеграций с соседними сервисами.
func main() {
	var configPath, queueName, bindingKey string
	flag.StringVar(&configPath, "config", "etc/app.yaml", "Path to the configuration file")
	flag.StringVar(&queueName, "queue", "social_graph_events_tail", "Queue to bind to the events exchange")
	flag.StringVar(&bindingKey, "key", "friend.*", "Routing key pattern")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}
	if err := config.LoadConfig(configPath); err != nil {
		log.Fatal("Failed to load config:", err)
	}
	conf := config.AppConfig

	logger.Init(conf.Logs.Level, conf.Logs.Env)
	defer logger.Sync()

	if conf.RabbitMQ.URL == "" {
		log.Fatal("rabbitmq.url is not configured")
	}
	rabbit, err := services.NewRabbitPublisher(conf.RabbitMQ.URL, conf.RabbitMQ.Exchange)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", err)
	}
	defer rabbit.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Listening for graph events", "exchange", conf.RabbitMQ.Exchange, "queue", queueName, "key", bindingKey)
	err = rabbit.ConsumeEvents(ctx, queueName, bindingKey, func(_ context.Context, event services.Event) error {
		logger.Info("Graph event",
			"type", event.Type,
			"actor_id", event.ActorID,
			"target_id", event.TargetID,
			"occurred_at", event.OccurredAt,
		)
		return nil
	})
	if err != nil {
		logger.Error("Consumer stopped", "error", err)
	}
}
