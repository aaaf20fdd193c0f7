package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/merke/chattr/internal/api/handlers"
	"github.com/merke/chattr/internal/api/middleware"
	"github.com/merke/chattr/internal/chat"
	"github.com/merke/chattr/internal/config"
	"github.com/merke/chattr/internal/crypto"
	"github.com/merke/chattr/internal/database"
	"github.com/merke/chattr/internal/debug"
	"github.com/merke/chattr/internal/email"
	"github.com/merke/chattr/internal/logger"
	"github.com/merke/chattr/internal/models"
	"github.com/merke/chattr/internal/presence"
	"github.com/merke/chattr/internal/relay"
	"github.com/merke/chattr/internal/upload"
	"github.com/merke/chattr/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}

	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Open database
	logger.Infof("Opening database: %s", cfg.DatabasePath)
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	// Dev-only: prune all messages to reset local state
	if os.Getenv("CHATTR_DEV_PRUNE_MESSAGES") == "1" || os.Getenv("CHATTR_DEV_PRUNE_MESSAGES") == "true" {
		logger.Warnf("CHATTR_DEV_PRUNE_MESSAGES enabled - pruning messages table")
		if err := debug.PruneMessages(db.DB); err != nil {
			logger.Warnf("Failed to prune messages: %v", err)
		}
	}

	// Initialize JWT manager
	jwtManager, err := crypto.NewJWTManager(cfg.MasterSecret)
	if err != nil {
		logger.Errorf("Failed to create JWT manager: %v", err)
		os.Exit(1)
	}

	// Upload store for inline images
	fileStore, err := upload.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Errorf("Failed to create upload store: %v", err)
		os.Exit(1)
	}

	mailer := email.NewMailer(cfg.SMTP)

	// Realtime layer: one presence registry shared by both transports, with
	// the relay fanning events out through the pusher mux.
	registry := presence.NewRegistry()
	pusherMux := websocket.NewPusherMux()
	eventRelay := relay.New(registry, pusherMux)

	logger.Infof("Initializing Socket.IO server...")
	socketIOServer := websocket.NewSocketIOServer(jwtManager, registry)
	socketIOServer.SetRelay(eventRelay)
	socketIOServer.Attach(pusherMux)
	defer socketIOServer.Close()

	simpleServer := websocket.NewSimpleServer(jwtManager, registry)
	simpleServer.SetRelay(eventRelay)
	simpleServer.Attach(pusherMux)

	queries := models.New(db.DB)
	coordinator := chat.NewCoordinator(queries, queries, fileStore, eventRelay, uuid.NewString)

	// Create Gin router
	router := gin.Default()

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Logging middleware
	router.Use(middleware.LoggingMiddleware())

	// Health endpoints
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to Chattr! Use /api/status to check server health.")
	})
	router.GET("/api/status", func(c *gin.Context) {
		c.String(http.StatusOK, "Server is live")
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db.DB, jwtManager, mailer)
	userHandler := handlers.NewUserHandler(db.DB, fileStore)
	messageHandler := handlers.NewMessageHandler(db.DB, coordinator)

	// User routes
	users := router.Group("/api/users")
	{
		users.POST("/signup", authHandler.Signup)
		users.POST("/login", authHandler.Login)
		users.POST("/request-password-reset", authHandler.RequestPasswordReset)
		users.POST("/reset-password", authHandler.ResetPassword)
	}
	usersProtected := users.Group("")
	usersProtected.Use(middleware.AuthMiddleware(jwtManager))
	{
		usersProtected.GET("/check", authHandler.Check)
		usersProtected.PUT("/update-profile", userHandler.UpdateProfile)
		usersProtected.GET("/search", userHandler.Search)
		usersProtected.POST("/add-contact", userHandler.AddContact)
		usersProtected.POST("/remove-contact", userHandler.RemoveContact)
		usersProtected.POST("/block-user", userHandler.Block)
		usersProtected.POST("/unblock-user", userHandler.Unblock)
	}

	// Message routes (all protected)
	messages := router.Group("/api/messages")
	messages.Use(middleware.AuthMiddleware(jwtManager))
	{
		messages.GET("/users", messageHandler.SidebarUsers)
		messages.GET("/unseen", messageHandler.UnseenCounts)
		messages.GET("/:id", messageHandler.GetMessages)
		messages.POST("/send/:id", messageHandler.SendMessage)
		messages.PUT("/mark/:id", messageHandler.MarkSeen)
		messages.DELETE("/:messageId", messageHandler.DeleteMessage)
	}

	// Uploaded images
	router.GET("/uploads/:name", func(c *gin.Context) {
		name := filepath.Base(c.Param("name"))
		c.File(fileStore.Path(name))
	})

	// Realtime endpoints
	router.Any("/socket.io/*any", socketIOServer.HandleSocketIO())
	router.GET("/ws", simpleServer.HandleWebSocket)

	// Start HTTP server
	logger.Infof("Chattr server starting on http://localhost%s", cfg.Addr)
	logger.Infof("Database: %s", cfg.DatabasePath)

	if err := router.Run(cfg.Addr); err != nil {
		logger.Errorf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
