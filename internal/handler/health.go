package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mlecoq/estimation-ia-api/internal/metrics"
	"github.com/mlecoq/estimation-ia-api/internal/model"
	"github.com/mlecoq/estimation-ia-api/internal/websocket"
)

// HealthHandler expose l'état du service et ses compteurs
type HealthHandler struct {
	db        *sql.DB
	hub       *websocket.Hub
	version   string
	startTime time.Time
}

// NewHealthHandler crée un nouveau handler de santé.
// db peut être nil quand le stockage fichier est utilisé.
func NewHealthHandler(db *sql.DB, hub *websocket.Hub, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		hub:       hub,
		version:   version,
		startTime: time.Now(),
	}
}

// Health renvoie le statut du service, sa version et son uptime
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	httpStatus := http.StatusOK

	data := gin.H{
		"version": h.version,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.hub != nil {
		data["ws_clients"] = h.hub.ClientCount()
	}

	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			data["database"] = "unreachable"
		} else {
			data["database"] = "ok"
		}
	}

	data["status"] = status

	c.JSON(httpStatus, model.Response{
		Success: status == "ok",
		Data:    data,
	})
}

// Metrics renvoie un instantané des compteurs internes
func (h *HealthHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    metrics.Get().GetSnapshot(),
	})
}
