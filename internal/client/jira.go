package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/model"
)

// JiraClient exporte des tâches estimées sous forme de tickets JIRA
type JiraClient struct {
	email      string
	apiToken   string
	baseURL    string
	projectKey string
	httpClient *http.Client
}

// NewJiraClient crée un nouveau client JIRA
func NewJiraClient(email, apiToken, baseURL, projectKey string) *JiraClient {
	return &JiraClient{
		email:      email,
		apiToken:   apiToken,
		baseURL:    baseURL,
		projectKey: projectKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured indique si le client dispose de ses credentials
func (c *JiraClient) Configured() bool {
	return c.email != "" && c.apiToken != "" && c.baseURL != ""
}

// CreatedTicket référence un ticket créé lors d'un export
type CreatedTicket struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ExportTasks crée un ticket par tâche et retourne leurs références.
// S'arrête à la première erreur : pas de création partielle silencieuse.
func (c *JiraClient) ExportTasks(ctx context.Context, projectKey string, tasks []model.Task, deliveryDate string) ([]CreatedTicket, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: JIRA (JIRA_EMAIL, JIRA_API_TOKEN, JIRA_BASE_URL)", model.ErrSourceNotConfigured)
	}
	if projectKey == "" {
		projectKey = c.projectKey
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.email + ":" + c.apiToken))
	var created []CreatedTicket

	for _, task := range tasks {
		payload, err := json.Marshal(map[string]interface{}{
			"fields": map[string]interface{}{
				"project":   map[string]string{"key": projectKey},
				"summary":   task.Name,
				"issuetype": map[string]string{"name": "Task"},
				"description": fmt.Sprintf("Durée estimée : %s jours\nDate de livraison : %s",
					strconv.FormatFloat(task.Days, 'f', -1, 64), deliveryDate),
			},
		})
		if err != nil {
			return created, fmt.Errorf("sérialiser ticket: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/api/3/issue", bytes.NewReader(payload))
		if err != nil {
			return created, fmt.Errorf("créer requête: %w", err)
		}
		req.Header.Set("Authorization", "Basic "+auth)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return created, fmt.Errorf("requête JIRA: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return created, fmt.Errorf("lecture réponse JIRA: %w", readErr)
		}
		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			return created, fmt.Errorf("export JIRA: status %d: %s", resp.StatusCode, string(body))
		}

		var ticket struct {
			Key string `json:"key"`
		}
		if err := json.Unmarshal(body, &ticket); err != nil {
			return created, fmt.Errorf("décoder ticket: %w", err)
		}

		created = append(created, CreatedTicket{
			Key: ticket.Key,
			URL: c.baseURL + "/browse/" + ticket.Key,
		})
	}

	logger.Get(ctx).Info().Int("tickets", len(created)).Msg("Export JIRA terminé")
	return created, nil
}
