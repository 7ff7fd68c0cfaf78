package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialgraph/api/handlers"
	"socialgraph/api/middleware"
	"socialgraph/api/routes"
	"socialgraph/config"
	"socialgraph/db"
	"socialgraph/logger"
	"socialgraph/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "etc/app.yaml", "Path to the configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	if err := config.LoadConfig(configPath); err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	conf := config.AppConfig

	logger.Init(conf.Logs.Level, conf.Logs.Env)
	defer logger.Sync()
	logger.Info("Starting social graph server...", "addr", conf.ListenAddr(), "db_driver", conf.Databases.Driver)

	if err := db.ConnectDB(); err != nil {
		logger.Fatal("Failed to connect to the database", err)
	}

	// Redis и RabbitMQ опциональны
	var cache services.ProfileCache
	if conf.Redis.Enabled {
		client, err := services.InitRedis(conf.RedisAddr(), conf.Redis.Password, conf.Redis.DB)
		if err != nil {
			logger.Warn("Redis is unavailable, profile cache disabled", "error", err)
		} else {
			defer client.Close()
			cache = services.NewRedisProfileCache(client, time.Duration(conf.Redis.ProfileCacheTTL)*time.Second)
			logger.Info("Profile cache enabled", "addr", conf.RedisAddr())
		}
	}

	var publisher services.Publisher = services.NoopPublisher{}
	if conf.RabbitMQ.Enabled {
		rabbit, err := services.NewRabbitPublisher(conf.RabbitMQ.URL, conf.RabbitMQ.Exchange)
		if err != nil {
			logger.Warn("RabbitMQ is unavailable, events disabled", "error", err)
		} else {
			defer rabbit.Close()
			publisher = rabbit
		}
	}

	profileService := services.NewProfileService(db.ORM, cache)
	friendService := services.NewFriendService(db.ORM, profileService, publisher)
	messageService := services.NewMessageService(db.ORM, publisher)

	if conf.Logs.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handlers.NewHandlers(friendService, messageService, profileService)
	router := routes.NewRouter(h, middleware.AuthMiddleware(conf.Auth.JWTSecret, conf.Auth.TrustUserHeader))

	srv := &http.Server{
		Addr:              conf.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()
	logger.Info("Server started", "addr", conf.ListenAddr())

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
