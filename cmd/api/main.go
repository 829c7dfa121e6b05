package main

import (
	"database/sql"
	stdlog "log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mlecoq/estimation-ia-api/internal/cache"
	"github.com/mlecoq/estimation-ia-api/internal/client"
	"github.com/mlecoq/estimation-ia-api/internal/config"
	"github.com/mlecoq/estimation-ia-api/internal/database"
	"github.com/mlecoq/estimation-ia-api/internal/handler"
	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/middleware"
	"github.com/mlecoq/estimation-ia-api/internal/migration"
	"github.com/mlecoq/estimation-ia-api/internal/repository"
	"github.com/mlecoq/estimation-ia-api/internal/service"
	"github.com/mlecoq/estimation-ia-api/internal/websocket"
)

const Version = "1.0.0"

func main() {
	// Charge la configuration
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erreur de chargement de la configuration : %v", err)
	}

	// Initialise le logger structuré
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Str("feedback_store", cfg.FeedbackStore).
		Msg("Estimation IA API démarrage")

	// Store de feedback : fichier JSON par défaut, PostgreSQL en option
	var (
		db    *sql.DB
		store service.FeedbackStore
	)
	if cfg.FeedbackStore == "postgres" {
		db, err = database.Connect(database.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Connexion PostgreSQL impossible")
		}
		defer database.Close(db)

		if err := migration.NewMigrator(db).Run(); err != nil {
			log.Fatal().Err(err).Msg("Échec des migrations du schéma")
		}

		store = repository.NewPostgresFeedbackStore(db)
	} else {
		store = repository.NewFileFeedbackStore(cfg.FeedbackPath)
	}

	// Clients externes
	openaiClient := client.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
	githubClient := client.NewGitHubClient(cfg.GitHubToken, cfg.GitHubOwner, cfg.GitHubRepo)
	trelloClient := client.NewTrelloClient(cfg.TrelloKey, cfg.TrelloToken, cfg.TrelloListID)
	jiraClient := client.NewJiraClient(cfg.JiraEmail, cfg.JiraToken, cfg.JiraBaseURL, cfg.JiraProject)
	notionClient := client.NewNotionClient(cfg.NotionToken)

	// Hub websocket pour la progression des estimations
	hub := websocket.NewHub()
	go hub.Run()

	// Cache de vélocité (les API externes sont lentes et rate-limitées)
	velocityCache := cache.New(5 * time.Minute)
	defer velocityCache.Stop()

	// Services
	estimationService := service.NewEstimationService(openaiClient, store).
		WithProgressSink(hub)

	// Handlers
	estimateHandler := handler.NewEstimateHandler(estimationService)
	feedbackHandler := handler.NewFeedbackHandler(store)
	velocityHandler := handler.NewVelocityHandler(githubClient, trelloClient, velocityCache)
	exportHandler := handler.NewExportHandler(service.NewExcelGenerator(), trelloClient, jiraClient, notionClient)
	healthHandler := handler.NewHealthHandler(db, hub, Version)

	// Configure le mode de Gin
	gin.SetMode(cfg.GinMode)

	// Initialise le router
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	// Endpoints publics
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", healthHandler.Metrics)
	r.GET("/ws", hub.ServeWS)

	// Console interne (basic auth + bcrypt)
	console := r.Group("/console")
	console.Use(middleware.ConsoleAuth(middleware.ConsoleAuthConfig{
		Username:     cfg.ConsoleUser,
		PasswordHash: cfg.ConsolePasswordHash,
	}))
	{
		console.GET("/nps", feedbackHandler.ConsoleNPS)
	}

	// Groupe de routes protégées par token
	api := r.Group("/api/v1")
	api.Use(middleware.BearerAuth(middleware.AuthConfig{
		TokenAPI: cfg.TokenAPI,
	}))
	{
		api.POST("/estimate", estimateHandler.Estimate)
		api.POST("/suggest-tasks", estimateHandler.SuggestTasks)

		api.POST("/feedback", feedbackHandler.Submit)
		api.GET("/feedback", feedbackHandler.List)
		api.POST("/feedback/thumbs", feedbackHandler.Thumbs)

		api.GET("/velocity/:source", velocityHandler.Get)

		api.POST("/export/csv", exportHandler.CSV)
		api.POST("/export/excel", exportHandler.Excel)
		api.POST("/export/trello", exportHandler.Trello)
		api.POST("/export/jira", exportHandler.Jira)
		api.POST("/export/notion", exportHandler.Notion)
	}

	// Démarre le serveur
	log.Info().Str("port", cfg.Port).Msg("Serveur en écoute")

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Erreur au démarrage du serveur")
		os.Exit(1)
	}
}
