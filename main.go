package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"matchday-service/internal/config"
	"matchday-service/internal/db"
	"matchday-service/internal/handlers"
	"matchday-service/internal/middleware"
	"matchday-service/internal/observability"
	"matchday-service/internal/rabbitmq"
	"matchday-service/internal/reconcile"
	"matchday-service/internal/repositories"
	"matchday-service/internal/telemetry"
	"matchday-service/internal/ws"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(logger, cfg.AMQPURL, cfg.AuditExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	audit := telemetry.NewAuditEmitter(publisher, "audit_log.matchday", "matchday-service", cfg.Environment, logger)

	shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	gameRepo := repositories.NewGameRepo(database)
	participationRepo := repositories.NewParticipationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	playerRepo := repositories.NewPlayerRepo(database)

	hub := ws.NewHub(logger)
	gameWS := ws.NewGameWebSocketHandler(hub, gameRepo, participationRepo, []byte(cfg.JWTSecret))

	gameHandler := handlers.NewGameHandler(gameRepo, participationRepo, audit)
	participationHandler := handlers.NewParticipationHandler(participationRepo, playerRepo, hub, audit)
	chatHandler := handlers.NewChatHandler(gameRepo, participationRepo, messageRepo, playerRepo, hub, audit)

	reconciler := reconcile.New(participationRepo, logger)
	if err := reconciler.Start(cfg.ReconcileSpec); err != nil {
		logger.Fatal("failed to start reconciler", zap.Error(err))
	}
	defer reconciler.Stop()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: false,
	}))
	router.Use(otelgin.Middleware("matchday-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws/games/:game_id", gameWS.Handle)

	api := router.Group("/")
	api.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret), logger))
	{
		api.GET("/games/today", gameHandler.ListToday)
		api.GET("/games/week", gameHandler.ListWeek)
		api.GET("/games/search", gameHandler.Search)
		api.POST("/games", gameHandler.Organize)
		api.GET("/games/:game_id/meta", gameHandler.GetMeta)
		api.GET("/games/:game_id", gameHandler.GetDetail)
		api.POST("/games/:game_id/passcode", gameHandler.UnlockDetail)
		api.PUT("/games/:game_id", gameHandler.Update)
		api.DELETE("/games/:game_id", gameHandler.Cancel)

		api.GET("/games/:game_id/participants", participationHandler.List)
		api.POST("/games/:game_id/join", participationHandler.Join)
		api.DELETE("/games/:game_id/join", participationHandler.Leave)

		api.GET("/games/:game_id/messages", chatHandler.ListMessages)
		api.POST("/games/:game_id/messages", chatHandler.PostMessage)
		api.DELETE("/games/:game_id/messages/:message_id", chatHandler.DeleteMessage)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("matchday service listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
