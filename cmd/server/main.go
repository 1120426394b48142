package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/tanvir09/vidtube/backend/internal/router"
	"github.com/tanvir09/vidtube/backend/pkg/config"
	"github.com/tanvir09/vidtube/backend/pkg/firebase"
	"github.com/tanvir09/vidtube/backend/pkg/logger"
	"github.com/tanvir09/vidtube/backend/validators"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		zlog.Fatal("Failed to initialize Firebase", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	mongoDB := db.Mongo.Database(cfg.MongoDatabase)
	hub, err := router.SetupRoutes(e, db.Postgres, mongoDB, db.Redis, firebaseApp.AuthClient, zlog)
	if err != nil {
		zlog.Fatal("Failed to set up routes", zap.Error(err))
	}

	// Bridge redis pub/sub into connected websocket clients
	go hub.Run(ctx)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
