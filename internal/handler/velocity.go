package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mlecoq/estimation-ia-api/internal/cache"
	"github.com/mlecoq/estimation-ia-api/internal/client"
	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/model"
	"github.com/mlecoq/estimation-ia-api/internal/service"
)

// VelocityHandler expose la vélocité mesurée sur les outils externes
type VelocityHandler struct {
	github *client.GitHubClient
	trello *client.TrelloClient
	cache  *cache.VelocityCache
}

// NewVelocityHandler crée un nouveau handler de vélocité
func NewVelocityHandler(github *client.GitHubClient, trello *client.TrelloClient, velocityCache *cache.VelocityCache) *VelocityHandler {
	return &VelocityHandler{
		github: github,
		trello: trello,
		cache:  velocityCache,
	}
}

// Get renvoie le résumé de vélocité pour une source donnée.
// Le résultat est mis en cache pour éviter de marteler les API externes.
func (h *VelocityHandler) Get(c *gin.Context) {
	source := c.Param("source")
	listID := c.Query("list_id")
	cacheKey := source + ":" + listID

	if summary, ok := h.cache.Get(cacheKey); ok {
		h.respond(c, summary, true)
		return
	}

	var (
		summary *model.VelocitySummary
		err     error
	)

	switch source {
	case model.SourceGitHub:
		if !h.github.Configured() {
			h.notConfigured(c, "GITHUB_TOKEN, GITHUB_OWNER et GITHUB_REPO")
			return
		}
		summary, err = h.github.Velocity(c.Request.Context())
	case model.SourceTrello:
		if !h.trello.Configured() {
			h.notConfigured(c, "TRELLO_API_KEY et TRELLO_TOKEN")
			return
		}
		// liste de la requête, sinon TRELLO_LIST_ID configurée
		summary, err = h.trello.Velocity(c.Request.Context(), listID)
	default:
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "source non supportée",
			Details: "sources disponibles : github, trello",
		})
		return
	}

	if err != nil {
		logger.FromGin(c).Error().Err(err).Str("source", source).Msg("Échec du calcul de vélocité")
		status := http.StatusBadGateway
		if errors.Is(err, model.ErrSourceNotConfigured) {
			status = http.StatusBadRequest
		}
		c.JSON(status, model.ErrorResponse{
			Success: false,
			Error:   "échec de la source de vélocité",
			Details: err.Error(),
		})
		return
	}

	h.cache.Set(cacheKey, summary)
	h.respond(c, summary, false)
}

func (h *VelocityHandler) respond(c *gin.Context, summary *model.VelocitySummary, cached bool) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data: gin.H{
			"velocity": summary,
			"sentence": service.VelocitySentence(summary),
			"cached":   cached,
		},
	})
}

func (h *VelocityHandler) notConfigured(c *gin.Context, vars string) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Success: false,
		Error:   "source non configurée",
		Details: "configurez " + vars,
	})
}
