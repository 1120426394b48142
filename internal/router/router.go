package router

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/tanvir09/vidtube/backend/internal/handlers"
	"github.com/tanvir09/vidtube/backend/internal/middleware"
	"github.com/tanvir09/vidtube/backend/internal/models"
	"github.com/tanvir09/vidtube/backend/internal/realtime"
	"github.com/tanvir09/vidtube/backend/internal/repositories"
	"github.com/tanvir09/vidtube/backend/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies.
// Returns the realtime hub so the caller can run its redis bridge.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mongoDB *mongo.Database, rdb *redis.Client, firebaseAuthClient *auth.Client, logger *zap.Logger) (*realtime.Hub, error) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.User{}); err != nil {
		return nil, err
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	reactionRepo := repositories.NewMongoReactionRepository(mongoDB)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)
	targets := &repositories.TargetDirectory{
		Videos:   repositories.NewMongoVideoRepository(mongoDB),
		Comments: repositories.NewMongoCommentRepository(mongoDB),
		Tweets:   repositories.NewMongoTweetRepository(mongoDB),
	}

	// The partial unique indexes are what make concurrent first reactions safe.
	if err := reactionRepo.EnsureIndexes(context.Background()); err != nil {
		return nil, err
	}

	// --- Initialize Services ---
	broadcaster := realtime.NewRedisBroadcaster(rdb)
	hub := realtime.NewHub(rdb, logger)
	dispatcher := services.NewNotificationDispatcher(notificationRepo, targets, userRepo, broadcaster, logger)
	reactionService := services.NewReactionService(reactionRepo, targets, dispatcher, broadcaster, logger)

	// --- Unprotected routes ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)

	reactionHandler := handlers.NewReactionHandler(reactionService)
	public := e.Group("/api/v1")
	reactionHandler.RegisterPublicReactionRoutes(public)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())

	reactionHandler.RegisterReactionRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)

	realtimeHandler := handlers.NewRealtimeHandler(hub)
	realtimeHandler.RegisterRealtimeRoutes(api)

	logger.Info("All routes configured.")
	return hub, nil
}
