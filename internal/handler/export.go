package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mlecoq/estimation-ia-api/internal/client"
	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/metrics"
	"github.com/mlecoq/estimation-ia-api/internal/model"
	"github.com/mlecoq/estimation-ia-api/internal/service"
)

// ExportHandler pousse une estimation vers un fichier ou un outil externe
type ExportHandler struct {
	excel  *service.ExcelGenerator
	trello *client.TrelloClient
	jira   *client.JiraClient
	notion *client.NotionClient
}

// NewExportHandler crée un nouveau handler d'export
func NewExportHandler(excel *service.ExcelGenerator, trello *client.TrelloClient, jira *client.JiraClient, notion *client.NotionClient) *ExportHandler {
	return &ExportHandler{
		excel:  excel,
		trello: trello,
		jira:   jira,
		notion: notion,
	}
}

// ExportRequest transporte l'estimation à exporter et les cibles
type ExportRequest struct {
	Feature      string                  `json:"feature" binding:"required"`
	Result       *model.EstimationResult `json:"result" binding:"required"`
	ListID       string                  `json:"list_id"`
	ProjectKey   string                  `json:"project_key"`
	DatabaseID   string                  `json:"database_id"`
	StartDate    string                  `json:"start_date"`
	Dependencies []model.Dependency      `json:"dependencies"`
	Risks        string                  `json:"risks"`
}

func (h *ExportHandler) bind(c *gin.Context) (*ExportRequest, bool) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload invalide",
			Details: err.Error(),
		})
		return nil, false
	}
	return &req, true
}

// CSV renvoie l'estimation sous forme de fichier CSV téléchargeable
func (h *ExportHandler) CSV(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	buf, err := service.GenerateCSV(req.Feature, req.Result)
	if err != nil {
		h.exportFailed(c, "csv", err)
		return
	}

	metrics.Get().IncrementExports("csv")

	filename := fmt.Sprintf("estimation_%s.csv", time.Now().Format("2006-01-02_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Excel renvoie l'estimation sous forme de classeur Excel
func (h *ExportHandler) Excel(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	buf, err := h.excel.Generate(req.Feature, req.Result)
	if err != nil {
		h.exportFailed(c, "excel", err)
		return
	}

	metrics.Get().IncrementExports("excel")

	filename := fmt.Sprintf("estimation_%s.xlsx", time.Now().Format("2006-01-02_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// Trello crée une carte par tâche dans la liste indiquée
func (h *ExportHandler) Trello(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	if !h.trello.Configured() {
		h.notConfigured(c, "TRELLO_API_KEY et TRELLO_TOKEN")
		return
	}
	if req.ListID == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "paramètre manquant",
			Details: "le champ list_id est requis pour l'export Trello",
		})
		return
	}

	if err := h.trello.ExportTasks(c.Request.Context(), req.ListID, req.Result.Tasks, req.Result.DeliveryDate); err != nil {
		h.exportFailed(c, "trello", err)
		return
	}

	metrics.Get().IncrementExports("trello")

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data: gin.H{
			"message": "tâches exportées vers Trello",
			"count":   len(req.Result.Tasks),
		},
	})
}

// Jira crée un ticket par tâche dans le projet indiqué
func (h *ExportHandler) Jira(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	if !h.jira.Configured() {
		h.notConfigured(c, "JIRA_BASE_URL, JIRA_EMAIL et JIRA_API_TOKEN")
		return
	}

	tickets, err := h.jira.ExportTasks(c.Request.Context(), req.ProjectKey, req.Result.Tasks, req.Result.DeliveryDate)
	if err != nil {
		h.exportFailed(c, "jira", err)
		return
	}

	metrics.Get().IncrementExports("jira")

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data: gin.H{
			"message": "tickets créés dans Jira",
			"tickets": tickets,
		},
	})
}

// Notion crée une page de synthèse dans la base indiquée
func (h *ExportHandler) Notion(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	if !h.notion.Configured() {
		h.notConfigured(c, "NOTION_TOKEN")
		return
	}
	if req.DatabaseID == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "paramètre manquant",
			Details: "le champ database_id est requis pour l'export Notion",
		})
		return
	}

	pageID, err := h.notion.ExportPage(c.Request.Context(), req.DatabaseID, req.Feature, req.StartDate, req.Result, req.Dependencies, req.Risks)
	if err != nil {
		h.exportFailed(c, "notion", err)
		return
	}

	metrics.Get().IncrementExports("notion")

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data: gin.H{
			"message": "page créée dans Notion",
			"page_id": pageID,
		},
	})
}

func (h *ExportHandler) exportFailed(c *gin.Context, kind string, err error) {
	logger.FromGin(c).Error().Err(err).Str("kind", kind).Msg("Échec de l'export")
	c.JSON(http.StatusBadGateway, model.ErrorResponse{
		Success: false,
		Error:   "échec de l'export " + kind,
		Details: err.Error(),
	})
}

func (h *ExportHandler) notConfigured(c *gin.Context, vars string) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Success: false,
		Error:   "export non configuré",
		Details: "configurez " + vars,
	})
}
