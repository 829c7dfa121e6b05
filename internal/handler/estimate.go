package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/model"
	"github.com/mlecoq/estimation-ia-api/internal/service"
)

// EstimateHandler gère les requêtes d'estimation
type EstimateHandler struct {
	estimation *service.EstimationService
}

// NewEstimateHandler crée un nouveau handler d'estimation
func NewEstimateHandler(estimation *service.EstimationService) *EstimateHandler {
	return &EstimateHandler{estimation: estimation}
}

// Estimate exécute le pipeline complet pour une fonctionnalité décrite.
// Retourne l'estimation_id permettant de suivre la progression en websocket.
func (h *EstimateHandler) Estimate(c *gin.Context) {
	var req model.EstimationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload invalide",
			Details: err.Error(),
		})
		return
	}

	estimationID := uuid.New().String()[:8]
	ctx := logger.WithEstimationID(c.Request.Context(), estimationID)

	result, err := h.estimation.Estimate(ctx, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data: gin.H{
			"estimation_id": estimationID,
			"result":        result,
		},
	})
}

// SuggestTasks demande un simple découpage en tâches, sans durées
func (h *EstimateHandler) SuggestTasks(c *gin.Context) {
	var req struct {
		Feature string `json:"feature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload invalide",
			Details: err.Error(),
		})
		return
	}

	tasks, err := h.estimation.SuggestTasks(c.Request.Context(), req.Feature)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    gin.H{"tasks": tasks},
	})
}

// handleError mappe les erreurs du domaine vers les statuts HTTP
func (h *EstimateHandler) handleError(c *gin.Context, err error) {
	logger.FromGin(c).Error().Err(err).Msg("Échec de l'estimation")

	switch {
	case errors.Is(err, model.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "requête invalide",
			Details: err.Error(),
		})
	case errors.Is(err, model.ErrProviderTimeout):
		c.JSON(http.StatusGatewayTimeout, model.ErrorResponse{
			Success: false,
			Error:   "le modèle n'a pas répondu dans les temps",
			Details: "réessayez dans quelques instants",
		})
	case errors.Is(err, model.ErrProviderUnauthorized):
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Success: false,
			Error:   "clé API du fournisseur refusée",
			Details: "vérifiez la variable OPENAI_API_KEY",
		})
	case errors.Is(err, model.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, model.ErrorResponse{
			Success: false,
			Error:   "rate limit dépassé",
			Details: "attendez quelques secondes et réessayez",
		})
	case errors.Is(err, model.ErrProvider):
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Success: false,
			Error:   "échec du fournisseur de complétion",
			Details: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "erreur interne",
			Details: err.Error(),
		})
	}
}
