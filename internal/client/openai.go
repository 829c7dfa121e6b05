package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/model"
	"golang.org/x/time/rate"
)

const (
	openAIURL = "https://api.openai.com/v1/chat/completions"

	// Temperature utilisée pour les estimations
	completionTemperature = 0.5

	// OpenAIRequestsPerMinute limite conservatrice côté client
	OpenAIRequestsPerMinute = 60
)

// OpenAIClient est le fournisseur de complétion adossé à l'API OpenAI.
// Le timeout est porté par le contexte de l'appelant (budget du pipeline) ;
// le client HTTP n'en impose pas de second.
type OpenAIClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewOpenAIClient crée un nouveau client OpenAI
func NewOpenAIClient(apiKey, chatModel string) *OpenAIClient {
	return &OpenAIClient{
		apiKey: apiKey,
		model:  chatModel,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/OpenAIRequestsPerMinute), 5),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete envoie le prompt et retourne le texte de la complétion.
// Une seule tentative : le retry est la responsabilité de l'appelant externe.
func (c *OpenAIClient) Complete(ctx context.Context, systemMsg, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if mapped := mapContextErr(err); mapped != nil {
			return "", mapped
		}
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMsg},
			{Role: "user", Content: prompt},
		},
		Temperature: completionTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("sérialiser requête: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("créer requête: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if mapped := mapContextErr(err); mapped != nil {
			return "", mapped
		}
		return "", fmt.Errorf("%w: %v", model.ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: lecture réponse: %v", model.ErrProvider, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", model.ErrProviderUnauthorized
	case http.StatusTooManyRequests:
		return "", model.ErrRateLimited
	default:
		return "", fmt.Errorf("%w: status %d", model.ErrProvider, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: réponse illisible: %v", model.ErrProvider, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", model.ErrProvider, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: réponse sans contenu", model.ErrProvider)
	}

	logger.Get(ctx).Info().
		Str("model", c.model).
		Dur("latency", time.Since(start)).
		Int("completion_len", len(parsed.Choices[0].Message.Content)).
		Msg("Complétion reçue")

	return parsed.Choices[0].Message.Content, nil
}

// mapContextErr traduit les annulations de contexte en erreurs du domaine.
// Retourne nil si l'erreur n'est pas liée au contexte.
func mapContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrProviderTimeout
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: requête annulée", model.ErrProvider)
	}
	return nil
}
