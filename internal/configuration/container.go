package configuration

import (
	"context"
	"fmt"
	"os"
	"time"

	"Chatline/internal/auth"
	"Chatline/internal/db"
	"Chatline/internal/handler"
	"Chatline/internal/hub"
	"Chatline/internal/model"
	"Chatline/internal/repo"
	"Chatline/internal/service"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultConfigPath = "config/config.json"

type Container struct {
	Config Config
	Logger *zap.Logger

	Hub        *hub.Hub
	Dispatcher *hub.Dispatcher
	Verifier   *auth.Verifier

	AuthHandler    handler.AuthHandler
	ChatHandler    handler.ChatHandler
	MessageHandler handler.MessageHandler
	MonitorHandler handler.MonitorHandler

	// private - for cleanup
	mongoDatabase *mongo.Database
}

// BuildContainer wires the whole process: config, logging, storage,
// the hub, the dispatcher, and every service and handler. The
// dispatcher is constructed once here and handed to the services
// explicitly; nothing looks it up through a global.
func BuildContainer() (*Container, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	// Missing secret is fatal at startup, never discovered per-connection.
	verifier, err := auth.NewVerifier(config.Auth.JwtSecret, time.Duration(config.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	con, err := db.OpenConnection(config.Database.Uri, config.Database.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	userMongoRepo := db.NewRepository[model.User](con, config.Database.UsersCollection)
	chatMongoRepo := db.NewRepository[model.Chat](con, config.Database.ChatsCollection)
	messageMongoRepo := db.NewRepository[model.Message](con, config.Database.MessagesCollection)

	userRepo := repo.NewUserRepository(con, userMongoRepo)
	chatRepo := repo.NewChatRepository(con, chatMongoRepo, logger)
	messageRepo := repo.NewMessageRepository(con, messageMongoRepo, logger)

	socketHub := hub.NewHub(verifier, config.Cors.AllowedOrigins, logger)
	dispatcher := hub.NewDispatcher(socketHub, logger)
	monitor := hub.NewMonitorService(socketHub)

	authService := service.NewAuthService(userRepo, verifier, logger)
	chatService := service.NewChatService(chatRepo, messageRepo, userRepo, dispatcher, logger)
	messageService := service.NewMessageService(messageRepo, chatRepo, userRepo, dispatcher, logger)

	cookieTTL := int(time.Duration(config.Auth.TokenTTLHours) * time.Hour / time.Second)

	return &Container{
		Config:         *config,
		Logger:         logger,
		Hub:            socketHub,
		Dispatcher:     dispatcher,
		Verifier:       verifier,
		AuthHandler:    handler.NewAuthHandler(authService, cookieTTL, config.Auth.SecureCookies),
		ChatHandler:    handler.NewChatHandler(chatService),
		MessageHandler: handler.NewMessageHandler(messageService),
		MonitorHandler: handler.NewMonitorHandler(monitor),
		mongoDatabase:  con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	if c.mongoDatabase != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoDatabase.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
