package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pawsafety/pawsafety-backend/internal/cache"
	"github.com/pawsafety/pawsafety-backend/internal/config"
	"github.com/pawsafety/pawsafety-backend/internal/database"
	"github.com/pawsafety/pawsafety-backend/internal/handlers"
	"github.com/pawsafety/pawsafety-backend/internal/jobs"
	"github.com/pawsafety/pawsafety-backend/internal/models"
	"github.com/pawsafety/pawsafety-backend/internal/push"
	"github.com/pawsafety/pawsafety-backend/internal/repository"
	"github.com/pawsafety/pawsafety-backend/internal/scheduler"
	"github.com/pawsafety/pawsafety-backend/internal/services"
	"github.com/pawsafety/pawsafety-backend/pkg/logger"
	"github.com/pawsafety/pawsafety-backend/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatalf("Configuration error: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			logger.Log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		logger.Log.Fatalf("Failed to create indexes: %v", err)
	}
	cancelIndexes()

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db, cfg.MongoUseTransactions)
	notificationRepo := repository.NewNotificationRepository(db)
	var pushTokens services.PushTokenStore = repository.NewPushTokenRepository(db)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		pushTokens = cache.NewPushTokenCache(rdb, pushTokens, cfg.PushTokenCacheTTL)
		logger.Log.WithField("addr", cfg.RedisAddr).Info("Push token cache enabled")
	}

	var pusher services.PushSender
	if cfg.PushEnabled {
		pusher = push.NewClient(cfg.PushGatewayURL, cfg.PushTimeout)
	} else {
		logger.Log.Info("Push delivery disabled")
	}

	// --- Services ---
	userService := services.NewUserService(userRepo)
	notificationService := services.NewNotificationService(notificationRepo, pushTokens, pusher, cfg.NotificationTTL)
	friendService := services.NewFriendService(userRepo, friendRepo, friendshipRepo, notificationService)
	relationshipFeed := services.NewRelationshipFeed(friendService, repository.NewChangeWatcher(db))

	// --- Jobs ---
	reconciler := jobs.NewFriendshipReconciler(friendshipRepo, friendRepo, friendService)
	crons, err := scheduler.StartMaintenanceCronJobs(cfg, notificationService, reconciler)
	if err != nil {
		logger.Log.Fatalf("Failed to schedule maintenance jobs: %v", err)
	}

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, friendService)
	friendHandler := handlers.NewFriendHandler(friendService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(reconciler)
	wsHandler := handlers.NewRelationshipWSHandler(relationshipFeed, userService, cfg.JWTSecret)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// The token travels in the query string since browsers cannot set headers on upgrade.
	router.HandleFunc("/ws/relationships", wsHandler.RelationshipWebSocketHandler).Methods("GET")

	protected := []mux.MiddlewareFunc{
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.RequireActiveAccount(userService),
	}

	// Friend routes
	protectedFriendRoutes := router.PathPrefix("/friends").Subrouter()
	protectedFriendRoutes.Use(protected...)
	protectedFriendRoutes.HandleFunc("", friendHandler.GetFriendsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests", friendHandler.GetPendingRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/sent", friendHandler.GetSentRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/{id}/respond", friendHandler.RespondToFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/status/{id}", friendHandler.GetRelationshipHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/{id}/request", friendHandler.SendFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/{id}/request", friendHandler.CancelFriendRequestHandler).Methods("DELETE")
	protectedFriendRoutes.HandleFunc("/{id}", friendHandler.RemoveFriendHandler).Methods("DELETE")

	// Notification routes
	protectedNotificationRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedNotificationRoutes.Use(protected...)
	protectedNotificationRoutes.HandleFunc("", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("POST")
	protectedNotificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// User profile routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(protected...)
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(protected...)
	adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
	adminRoutes.HandleFunc("/friendships/reconcile", adminHandler.ReconcileFriendshipsHandler).Methods("POST")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("HTTP server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("Shutting down")
	<-crons.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Warn("Graceful shutdown failed")
	}
}
