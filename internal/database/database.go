package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mlecoq/estimation-ia-api/internal/logger"
	_ "github.com/lib/pq"
)

// Config contient la configuration de connexion à la base
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Pool de connexions
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // en minutes
	ConnMaxIdleTime int // en minutes
}

// Connect établit la connexion au PostgreSQL
func Connect(cfg Config) (*sql.DB, error) {
	log := logger.Global()

	// Valeurs par défaut du pool
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5
	}
	if cfg.ConnMaxIdleTime == 0 {
		cfg.ConnMaxIdleTime = 2
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("dbname", cfg.DBName).
		Str("sslmode", cfg.SSLMode).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Connexion au PostgreSQL")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("ouvrir connexion: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("tester connexion: %w", err)
	}

	log.Info().Msg("Connexion PostgreSQL établie")
	return db, nil
}

// Close ferme la connexion à la base
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
