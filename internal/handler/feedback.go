package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/metrics"
	"github.com/mlecoq/estimation-ia-api/internal/model"
	"github.com/mlecoq/estimation-ia-api/internal/service"
)

// FeedbackHandler gère la boucle de retour terrain
type FeedbackHandler struct {
	store service.FeedbackStore
}

// NewFeedbackHandler crée un nouveau handler de feedback
func NewFeedbackHandler(store service.FeedbackStore) *FeedbackHandler {
	return &FeedbackHandler{store: store}
}

type feedbackPayload struct {
	Feature      string  `json:"feature" binding:"required"`
	Estimation   float64 `json:"estimation"`
	RealDuration float64 `json:"real_duration"`
	NPS          *int    `json:"nps"`
	Comment      string  `json:"comment"`
	Date         string  `json:"date"`
}

// Submit enregistre un retour terrain (durée réelle vs estimée)
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var payload feedbackPayload

	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload invalide",
			Details: err.Error(),
		})
		return
	}

	if payload.NPS != nil && (*payload.NPS < 0 || *payload.NPS > 10) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "nps hors bornes",
			Details: "le score NPS doit être compris entre 0 et 10",
		})
		return
	}

	record := model.FeedbackRecord{
		Feature:      payload.Feature,
		Estimation:   payload.Estimation,
		RealDuration: payload.RealDuration,
		NPS:          payload.NPS,
		Comment:      payload.Comment,
		Date:         payload.Date,
	}
	if record.Date == "" {
		record.Date = time.Now().Format(time.RFC3339)
	}

	if err := h.store.Append(record); err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Échec de l'enregistrement du feedback")
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Success: false,
			Error:   "stockage des feedbacks indisponible",
			Details: err.Error(),
		})
		return
	}

	metrics.Get().IncrementFeedbacks()

	c.JSON(http.StatusCreated, model.Response{
		Success: true,
		Data:    gin.H{"message": "feedback enregistré"},
	})
}

// List renvoie l'historique des feedbacks.
// Une erreur de lecture dégrade en liste vide plutôt qu'en échec.
func (h *FeedbackHandler) List(c *gin.Context) {
	records, err := h.store.ReadAll()
	if err != nil {
		logger.FromGin(c).Warn().Err(err).Msg("Lecture des feedbacks impossible, liste vide renvoyée")
		records = nil
	}
	if records == nil {
		records = []model.FeedbackRecord{}
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data: gin.H{
			"feedbacks": records,
			"count":     len(records),
		},
	})
}

// Thumbs accepte un avis pouce haut/bas sur la dernière estimation.
// Simple accusé de réception, l'avis n'est pas persisté.
func (h *FeedbackHandler) Thumbs(c *gin.Context) {
	var payload struct {
		Thumb string `json:"thumb" binding:"required"`
	}

	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload invalide",
			Details: err.Error(),
		})
		return
	}

	if payload.Thumb != "up" && payload.Thumb != "down" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "valeur de pouce inconnue",
			Details: "valeurs acceptées : up, down",
		})
		return
	}

	logger.FromGin(c).Info().Str("thumb", payload.Thumb).Msg("Avis pouce reçu")

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    gin.H{"message": "merci pour votre retour"},
	})
}

// ConsoleNPS renvoie les statistiques NPS et le biais d'estimation
// pour la console interne (protégée par basic auth).
func (h *FeedbackHandler) ConsoleNPS(c *gin.Context) {
	records, err := h.store.ReadAll()
	if err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Lecture des feedbacks impossible")
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Success: false,
			Error:   "stockage des feedbacks indisponible",
			Details: err.Error(),
		})
		return
	}

	stats := computeNPSStats(records)

	data := gin.H{"nps": stats}
	if bias := service.EstimateBias(records); bias != nil {
		data["bias"] = bias
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    data,
	})
}

type npsStats struct {
	Count      int     `json:"count"`
	Promoters  int     `json:"promoters"`
	Passives   int     `json:"passives"`
	Detractors int     `json:"detractors"`
	Average    float64 `json:"average"`
	Score      float64 `json:"score"`
}

// computeNPSStats classe les notes : 9-10 promoteurs, 7-8 passifs, 0-6 détracteurs
func computeNPSStats(records []model.FeedbackRecord) npsStats {
	var stats npsStats
	var sum int

	for _, r := range records {
		if r.NPS == nil {
			continue
		}
		note := *r.NPS
		stats.Count++
		sum += note
		switch {
		case note >= 9:
			stats.Promoters++
		case note >= 7:
			stats.Passives++
		default:
			stats.Detractors++
		}
	}

	if stats.Count > 0 {
		stats.Average = float64(sum) / float64(stats.Count)
		stats.Score = (float64(stats.Promoters) - float64(stats.Detractors)) / float64(stats.Count) * 100
	}

	return stats
}
