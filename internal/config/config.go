package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config regroupe les configurations de l'application
type Config struct {
	// Serveur
	Port     string
	GinMode  string
	LogLevel string
	LogJSON  bool

	// Fournisseur de complétion
	OpenAIKey   string
	OpenAIModel string

	// Token d'accès à l'API
	TokenAPI string

	// Store de feedback : "file" ou "postgres"
	FeedbackStore string
	FeedbackPath  string

	// PostgreSQL (uniquement si FeedbackStore == "postgres")
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Sources de vélocité / adaptateurs d'export (optionnels)
	GitHubToken  string
	GitHubOwner  string
	GitHubRepo   string
	TrelloKey    string
	TrelloToken  string
	TrelloListID string
	JiraEmail    string
	JiraToken    string
	JiraBaseURL  string
	JiraProject  string
	NotionToken  string

	// Console NPS (basic auth)
	ConsoleUser         string
	ConsolePasswordHash string // hash bcrypt
}

// Load charge les configurations depuis l'environnement
func Load() (*Config, error) {
	// Tente de charger .env depuis plusieurs emplacements
	_ = godotenv.Load()          // ./backend/.env
	_ = godotenv.Load("../.env") // ./.env (racine du projet)

	cfg := &Config{
		Port:     os.Getenv("PORT"),
		GinMode:  os.Getenv("GIN_MODE"),
		LogLevel: os.Getenv("LOG_LEVEL"),
		LogJSON:  parseBool(os.Getenv("LOG_JSON"), true),

		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: os.Getenv("OPENAI_MODEL"),

		TokenAPI: os.Getenv("TOKEN_API"),

		FeedbackStore: os.Getenv("FEEDBACK_STORE"),
		FeedbackPath:  os.Getenv("FEEDBACK_PATH"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  os.Getenv("DB_SSLMODE"),

		GitHubToken:  os.Getenv("GITHUB_TOKEN"),
		GitHubOwner:  os.Getenv("GITHUB_OWNER"),
		GitHubRepo:   os.Getenv("GITHUB_REPO"),
		TrelloKey:    os.Getenv("TRELLO_API_KEY"),
		TrelloToken:  os.Getenv("TRELLO_TOKEN"),
		TrelloListID: os.Getenv("TRELLO_LIST_ID"),
		JiraEmail:    os.Getenv("JIRA_EMAIL"),
		JiraToken:    os.Getenv("JIRA_API_TOKEN"),
		JiraBaseURL:  os.Getenv("JIRA_BASE_URL"),
		JiraProject:  os.Getenv("JIRA_PROJECT_KEY"),
		NotionToken:  os.Getenv("NOTION_TOKEN"),

		ConsoleUser:         os.Getenv("CONSOLE_USER"),
		ConsolePasswordHash: os.Getenv("CONSOLE_PASSWORD_HASH"),
	}

	// Validations obligatoires
	if cfg.OpenAIKey == "" {
		return nil, errors.New("OPENAI_API_KEY non configurée")
	}

	if cfg.TokenAPI == "" {
		return nil, errors.New("TOKEN_API non configuré")
	}

	// Valeurs par défaut
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.GinMode == "" {
		cfg.GinMode = "debug"
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4"
	}

	if cfg.FeedbackStore == "" {
		cfg.FeedbackStore = "file"
	}

	if cfg.FeedbackPath == "" {
		cfg.FeedbackPath = "feedbacks.json"
	}

	if cfg.JiraProject == "" {
		cfg.JiraProject = "AI"
	}

	if cfg.FeedbackStore == "postgres" {
		if cfg.DBHost == "" || cfg.DBName == "" {
			return nil, errors.New("FEEDBACK_STORE=postgres exige DB_HOST et DB_NAME")
		}
		if cfg.DBPort == "" {
			cfg.DBPort = "5432"
		}
		if cfg.DBSSLMode == "" {
			cfg.DBSSLMode = "disable"
		}
	}

	return cfg, nil
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
