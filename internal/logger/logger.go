package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ctxKey string

const (
	RequestIDKey    ctxKey = "request_id"
	LoggerKey       ctxKey = "logger"
	EstimationIDKey ctxKey = "estimation_id"
)

var globalLogger zerolog.Logger

// Init initialise le logger global
func Init(level string, jsonFormat bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if !jsonFormat {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	globalLogger = zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "estimation-ia-api").
		Logger()
}

// Global retourne le logger global
func Global() *zerolog.Logger {
	return &globalLogger
}

// Get retourne le logger du contexte, ou le logger global
func Get(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &globalLogger
	}
	if l, ok := ctx.Value(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	return &globalLogger
}

// FromGin extrait le logger du contexte Gin
func FromGin(c *gin.Context) *zerolog.Logger {
	return Get(c.Request.Context())
}

// WithRequestID ajoute request_id au logger et au contexte
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := globalLogger.With().Str("request_id", requestID).Logger()
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// WithEstimationID ajoute un identifiant d'estimation au contexte pour le suivi
func WithEstimationID(ctx context.Context, estimationID string) context.Context {
	existingLogger := Get(ctx)
	l := existingLogger.With().Str("estimation_id", estimationID).Logger()
	ctx = context.WithValue(ctx, EstimationIDKey, estimationID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// GetRequestID extrait request_id du contexte
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetEstimationID extrait estimation_id du contexte
func GetEstimationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(EstimationIDKey).(string); ok {
		return id
	}
	return ""
}
