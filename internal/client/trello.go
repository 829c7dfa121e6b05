package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/model"
)

const trelloBaseURL = "https://api.trello.com/1"

// TrelloClient calcule la vélocité depuis les cartes archivées d'une liste et
// sait y exporter des tâches.
type TrelloClient struct {
	apiKey     string
	token      string
	listID     string
	httpClient *http.Client
}

// NewTrelloClient crée un nouveau client Trello
func NewTrelloClient(apiKey, token, listID string) *TrelloClient {
	return &TrelloClient{
		apiKey:     apiKey,
		token:      token,
		listID:     listID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured indique si le client dispose de ses credentials
func (c *TrelloClient) Configured() bool {
	return c.apiKey != "" && c.token != ""
}

type trelloCard struct {
	ID               string     `json:"id"`
	Closed           bool       `json:"closed"`
	DateLastActivity *time.Time `json:"dateLastActivity"`
}

// Velocity analyse les cartes archivées de la liste. Trello n'expose pas de
// date de création : elle est décodée depuis les 8 premiers caractères hexa
// de l'identifiant de carte (timestamp Unix).
func (c *TrelloClient) Velocity(ctx context.Context, listID string) (*model.VelocitySummary, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: Trello (TRELLO_API_KEY, TRELLO_TOKEN)", model.ErrSourceNotConfigured)
	}
	if listID == "" {
		listID = c.listID
	}
	if listID == "" {
		return nil, fmt.Errorf("%w: aucune liste Trello spécifiée", model.ErrSourceNotConfigured)
	}

	endpoint := fmt.Sprintf("%s/lists/%s/cards?key=%s&token=%s&fields=closed,dateLastActivity&filter=closed",
		trelloBaseURL, listID, url.QueryEscape(c.apiKey), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("créer requête: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requête Trello: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, model.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Trello status %d", resp.StatusCode)
	}

	var cards []trelloCard
	if err := json.NewDecoder(resp.Body).Decode(&cards); err != nil {
		return nil, fmt.Errorf("décoder cartes: %w", err)
	}

	type span struct{ created, closed time.Time }
	var spans []span
	for _, card := range cards {
		if !card.Closed || card.DateLastActivity == nil {
			continue
		}
		created, ok := trelloCreatedAt(card.ID)
		if !ok {
			continue
		}
		spans = append(spans, span{created: created, closed: *card.DateLastActivity})
	}

	summary := &model.VelocitySummary{Source: model.SourceTrello}
	if len(spans) == 0 {
		return summary, nil
	}

	minClosed, maxClosed := spans[0].closed, spans[0].closed
	var totalResolution time.Duration
	for _, s := range spans {
		if s.closed.Before(minClosed) {
			minClosed = s.closed
		}
		if s.closed.After(maxClosed) {
			maxClosed = s.closed
		}
		totalResolution += s.closed.Sub(s.created)
	}

	weeks := int(maxClosed.Sub(minClosed).Hours()/(24*7) + 0.5)
	if weeks < 1 {
		weeks = 1
	}

	summary.TotalClosed = len(spans)
	summary.WeeksAnalyzed = weeks
	summary.UnitsPerWeek = float64(len(spans)) / float64(weeks)
	summary.AvgResolutionDays = totalResolution.Hours() / 24 / float64(len(spans))

	logger.Get(ctx).Info().
		Str("source", summary.Source).
		Float64("avg_per_week", summary.UnitsPerWeek).
		Int("total_closed", summary.TotalClosed).
		Msg("Vélocité calculée")

	return summary, nil
}

// ExportTasks crée une carte Trello par tâche dans la liste cible
func (c *TrelloClient) ExportTasks(ctx context.Context, listID string, tasks []model.Task, deliveryDate string) error {
	if !c.Configured() {
		return fmt.Errorf("%w: Trello (TRELLO_API_KEY, TRELLO_TOKEN)", model.ErrSourceNotConfigured)
	}
	if listID == "" {
		listID = c.listID
	}
	if listID == "" {
		return fmt.Errorf("%w: aucune liste Trello spécifiée", model.ErrSourceNotConfigured)
	}

	for _, task := range tasks {
		payload, err := json.Marshal(map[string]string{
			"idList": listID,
			"name":   task.Name,
			"desc":   fmt.Sprintf("Durée estimée : %s jours\nDate de livraison : %s", strconv.FormatFloat(task.Days, 'f', -1, 64), deliveryDate),
		})
		if err != nil {
			return fmt.Errorf("sérialiser carte: %w", err)
		}

		endpoint := fmt.Sprintf("%s/cards?key=%s&token=%s", trelloBaseURL, url.QueryEscape(c.apiKey), url.QueryEscape(c.token))
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
		if err != nil {
			return fmt.Errorf("créer requête: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("requête Trello: %w", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("export Trello: status %d pour %q", resp.StatusCode, task.Name)
		}
	}

	logger.Get(ctx).Info().Int("cards", len(tasks)).Msg("Export Trello terminé")
	return nil
}

// trelloCreatedAt décode la date de création depuis le préfixe hexa de l'id
func trelloCreatedAt(id string) (time.Time, bool) {
	if len(id) < 8 {
		return time.Time{}, false
	}
	ts, err := strconv.ParseInt(id[:8], 16, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(ts, 0).UTC(), true
}
