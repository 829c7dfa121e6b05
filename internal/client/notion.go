package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/model"
)

const (
	notionPagesURL   = "https://api.notion.com/v1/pages"
	notionAPIVersion = "2022-06-28"
)

// NotionClient exporte un résultat d'estimation comme page d'une base Notion
type NotionClient struct {
	token      string
	httpClient *http.Client
}

// NewNotionClient crée un nouveau client Notion
func NewNotionClient(token string) *NotionClient {
	return &NotionClient{
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured indique si le client dispose de son token
func (c *NotionClient) Configured() bool {
	return c.token != ""
}

// ExportPage crée une page avec le récapitulatif : propriétés (dates, durée)
// puis blocs tâches / dépendances / risques / résumé.
func (c *NotionClient) ExportPage(ctx context.Context, databaseID, feature, startDate string, result *model.EstimationResult, deps []model.Dependency, risks string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: Notion (NOTION_TOKEN)", model.ErrSourceNotConfigured)
	}
	if databaseID == "" {
		return "", fmt.Errorf("%w: aucune base Notion spécifiée", model.ErrSourceNotConfigured)
	}

	properties := map[string]interface{}{
		"Name": map[string]interface{}{
			"title": []interface{}{textBlock(feature)},
		},
		"Durée estimée": map[string]interface{}{
			"number": result.TotalDays,
		},
	}
	if startDate != "" {
		properties["Date de démarrage"] = map[string]interface{}{
			"date": map[string]string{"start": startDate},
		}
	}
	if iso, ok := frenchDateToISO(result.DeliveryDate); ok {
		properties["Date de livraison"] = map[string]interface{}{
			"date": map[string]string{"start": iso},
		}
	}

	children := []interface{}{heading("Tâches techniques", 2)}
	for _, task := range result.Tasks {
		children = append(children, bullet(fmt.Sprintf("%s : %g jours", task.Name, task.Days)))
	}
	if len(deps) > 0 {
		children = append(children, heading("Dépendances techniques", 3))
		for _, d := range deps {
			children = append(children, bullet(fmt.Sprintf("%s (%s)", d.Name, d.Level)))
		}
	}
	if risks != "" {
		children = append(children, heading("Risques identifiés", 3), paragraph(risks))
	}
	children = append(children, heading("Résumé", 2), paragraph(result.AIText))

	payload, err := json.Marshal(map[string]interface{}{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": properties,
		"children":   children,
	})
	if err != nil {
		return "", fmt.Errorf("sérialiser page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, notionPagesURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("créer requête: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requête Notion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("export Notion: status %d", resp.StatusCode)
	}

	var page struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return "", fmt.Errorf("décoder page: %w", err)
	}

	logger.Get(ctx).Info().Str("page_id", page.ID).Msg("Export Notion terminé")
	return page.ID, nil
}

// frenchDateToISO convertit jj/mm/aaaa vers aaaa-mm-jj (format date Notion)
func frenchDateToISO(date string) (string, bool) {
	t, err := time.Parse("02/01/2006", date)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func textBlock(content string) map[string]interface{} {
	return map[string]interface{}{
		"text": map[string]string{"content": content},
	}
}

func heading(content string, level int) map[string]interface{} {
	key := fmt.Sprintf("heading_%d", level)
	return map[string]interface{}{
		"object": "block",
		"type":   key,
		key: map[string]interface{}{
			"rich_text": []interface{}{richText(content)},
		},
	}
}

func bullet(content string) map[string]interface{} {
	return map[string]interface{}{
		"object": "block",
		"type":   "bulleted_list_item",
		"bulleted_list_item": map[string]interface{}{
			"rich_text": []interface{}{richText(content)},
		},
	}
}

func paragraph(content string) map[string]interface{} {
	return map[string]interface{}{
		"object": "block",
		"type":   "paragraph",
		"paragraph": map[string]interface{}{
			"rich_text": []interface{}{richText(content)},
		},
	}
}

func richText(content string) map[string]interface{} {
	return map[string]interface{}{
		"type": "text",
		"text": map[string]string{"content": content},
	}
}
