package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mlecoq/estimation-ia-api/internal/model"
	"github.com/mlecoq/estimation-ia-api/internal/service"
)

type stubProvider struct {
	completion string
	err        error
}

func (p *stubProvider) Complete(ctx context.Context, systemMsg, prompt string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.completion, nil
}

type stubStore struct {
	records []model.FeedbackRecord
	err     error
}

func (s *stubStore) Append(record model.FeedbackRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func (s *stubStore) ReadAll() ([]model.FeedbackRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func estimateRouter(provider service.CompletionProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewEstimateHandler(service.NewEstimationService(provider, &stubStore{}))
	r := gin.New()
	r.POST("/estimate", h.Estimate)
	r.POST("/suggest-tasks", h.SuggestTasks)
	return r
}

const stubCompletion = `1. Conception : 2 jours
2. Développement : 4 jours
Estimation totale : 6 jours
Livraison estimée : 20/03/2026`

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEstimateEndpoint(t *testing.T) {
	router := estimateRouter(&stubProvider{completion: stubCompletion})

	w := postJSON(t, router, "/estimate", `{"feature":"export PDF","team_capacity":100}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body : %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			EstimationID string                  `json:"estimation_id"`
			Result       *model.EstimationResult `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("réponse illisible : %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if len(resp.Data.EstimationID) != 8 {
		t.Errorf("estimation_id %q, attendu 8 caractères", resp.Data.EstimationID)
	}
	if resp.Data.Result == nil || len(resp.Data.Result.Tasks) != 2 {
		t.Errorf("résultat inattendu : %+v", resp.Data.Result)
	}
}

func TestEstimateEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		provider   *stubProvider
		body       string
		wantStatus int
	}{
		{
			name:       "payload sans feature",
			provider:   &stubProvider{completion: stubCompletion},
			body:       `{"team_capacity":50}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "json invalide",
			provider:   &stubProvider{completion: stubCompletion},
			body:       `{pas du json`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "capacité hors bornes",
			provider:   &stubProvider{completion: stubCompletion},
			body:       `{"feature":"f","team_capacity":150}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "timeout du fournisseur",
			provider:   &stubProvider{err: fmt.Errorf("%w : délai dépassé", model.ErrProviderTimeout)},
			body:       `{"feature":"f"}`,
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "clé refusée",
			provider:   &stubProvider{err: fmt.Errorf("%w : status 401", model.ErrProviderUnauthorized)},
			body:       `{"feature":"f"}`,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "rate limit",
			provider:   &stubProvider{err: fmt.Errorf("%w : status 429", model.ErrRateLimited)},
			body:       `{"feature":"f"}`,
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "échec fournisseur générique",
			provider:   &stubProvider{err: fmt.Errorf("%w : status 500", model.ErrProvider)},
			body:       `{"feature":"f"}`,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, estimateRouter(tt.provider), "/estimate", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, attendu %d (body : %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestSuggestTasksEndpoint(t *testing.T) {
	router := estimateRouter(&stubProvider{completion: "- Créer le schéma\n- Écrire l'API"})

	w := postJSON(t, router, "/suggest-tasks", `{"feature":"moteur de recherche"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body : %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Tasks []string `json:"tasks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.Tasks) != 2 {
		t.Errorf("tasks = %v, attendu 2 entrées", resp.Data.Tasks)
	}

	if w := postJSON(t, router, "/suggest-tasks", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("feature obligatoire : status = %d", w.Code)
	}
}
