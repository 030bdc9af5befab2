package main

import (
	"cheggienexus/internal/client"
	"cheggienexus/internal/configuration"
	"cheggienexus/internal/database"
	"cheggienexus/internal/logger"
	"cheggienexus/internal/server"
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	runApp()
	time.Sleep(10 * time.Second)
	os.Exit(1)
}

func runApp() error {
	appContext := context.Background()
	logOutput := io.Writer(os.Stdout)
	appLogger := logger.NewLogger(logger.LevelInfo, logOutput)

	defer func() {
		if r := recover(); r != nil {
			appLogger.Errorf("APPLICATION CRASHED: %+v", r)
		}
	}()

	config, err := configuration.GetConfig("config.toml")
	if err != nil {
		appLogger.Error("Error getting configuration from config.toml:", err)
		return err
	}

	if config.LogToFile {
		logFile, err := os.OpenFile("cheggienexus_backend.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			appLogger.Error("Error opening log file:", err)
			return err
		}
		defer func() {
			if err := logFile.Close(); err != nil {
				appLogger.Error("Error closing log file:", err)
			}
		}()
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger = logger.NewLogger(config.LogLevel, logOutput)

	appLogger.Info("Connecting to DB at", config.DatabaseURI)
	dbConn, err := database.ConnectDB(appContext, config.DatabaseURI)
	if err != nil {
		appLogger.Error("Error connecting to DB:", err)
		return err
	}
	defer func() {
		if err := dbConn.Disconnect(appContext); err != nil {
			appLogger.Error("Error disconnecting from DB:", err)
		}
	}()

	db := database.Database{Database: dbConn.Database(database.Name)}

	adminPassword, err := bcrypt.GenerateFromPassword([]byte(config.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		appLogger.Error("Error hashing admin password:", err)
		return err
	}
	if err := db.UserUpsertAdmin(appContext, config.AdminEmail, adminPassword); err != nil {
		appLogger.Error("Error upserting admin user:", err)
		return err
	}

	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddress})

	srv := server.Server{
		DB: db,
		Client: client.Client{
			Client:        &http.Client{Timeout: config.ProviderTimeout},
			Redis:         redisClient,
			Logger:        appLogger,
			OpenAIKey:     config.OpenAIKey,
			AnthropicKey:  config.AnthropicKey,
			GoogleKey:     config.GoogleKey,
			OpenRouterKey: config.OpenRouterKey,
		},
		Logger:           appLogger,
		AuthSecretKey:    config.AuthSecretKey,
		CompletionsCache: config.CompletionsCache,
	}

	appLogger.Info("Starting analytics rollup with interval:", config.RollupInterval)
	go srv.RollupInInterval(appContext, time.NewTicker(config.RollupInterval))

	httpSrv := &http.Server{
		Handler:      srv.Router(),
		Addr:         config.ServerAddress,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	appLogger.Info("Serving on", httpSrv.Addr)
	return httpSrv.ListenAndServe()
}
