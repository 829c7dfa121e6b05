package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mlecoq/estimation-ia-api/internal/model"
)

func feedbackRouter(store *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewFeedbackHandler(store)
	r := gin.New()
	r.POST("/feedback", h.Submit)
	r.GET("/feedback", h.List)
	r.POST("/feedback/thumbs", h.Thumbs)
	r.GET("/console/nps", h.ConsoleNPS)
	return r
}

func TestFeedbackSubmit(t *testing.T) {
	store := &stubStore{}
	router := feedbackRouter(store)

	w := postJSON(t, router, "/feedback", `{"feature":"export PDF","estimation":5,"real_duration":7,"nps":8}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body : %s", w.Code, w.Body.String())
	}
	if len(store.records) != 1 {
		t.Fatalf("1 record attendu, obtenu %d", len(store.records))
	}
	rec := store.records[0]
	if rec.Feature != "export PDF" || rec.Estimation != 5 || rec.RealDuration != 7 {
		t.Errorf("record inattendu : %+v", rec)
	}
	if rec.NPS == nil || *rec.NPS != 8 {
		t.Errorf("NPS non transmis : %+v", rec)
	}
	if rec.Date == "" {
		t.Error("date par défaut attendue")
	}
}

func TestFeedbackSubmitValidation(t *testing.T) {
	router := feedbackRouter(&stubStore{})

	if w := postJSON(t, router, "/feedback", `{"estimation":5}`); w.Code != http.StatusBadRequest {
		t.Errorf("feature obligatoire : status = %d", w.Code)
	}
	if w := postJSON(t, router, "/feedback", `{"feature":"f","nps":11}`); w.Code != http.StatusBadRequest {
		t.Errorf("nps hors bornes : status = %d", w.Code)
	}
}

// La liste dégrade un store illisible en liste vide
func TestFeedbackListDegradesOnStoreError(t *testing.T) {
	store := &stubStore{err: model.ErrStore}
	router := feedbackRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/feedback", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, attendu 200", w.Code)
	}
	var resp struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Count != 0 {
		t.Errorf("count = %d, attendu 0", resp.Data.Count)
	}
}

func TestFeedbackThumbs(t *testing.T) {
	router := feedbackRouter(&stubStore{})

	for _, thumb := range []string{"up", "down"} {
		if w := postJSON(t, router, "/feedback/thumbs", `{"thumb":"`+thumb+`"}`); w.Code != http.StatusOK {
			t.Errorf("thumb %s : status = %d", thumb, w.Code)
		}
	}
	if w := postJSON(t, router, "/feedback/thumbs", `{"thumb":"sideways"}`); w.Code != http.StatusBadRequest {
		t.Errorf("valeur inconnue : status = %d", w.Code)
	}
}

func TestConsoleNPSStats(t *testing.T) {
	nps := func(n int) *int { return &n }
	store := &stubStore{records: []model.FeedbackRecord{
		{Feature: "a", Estimation: 4, RealDuration: 5, NPS: nps(10)}, // promoteur
		{Feature: "b", Estimation: 4, RealDuration: 5, NPS: nps(9)},  // promoteur
		{Feature: "c", Estimation: 4, RealDuration: 5, NPS: nps(7)},  // passif
		{Feature: "d", Estimation: 4, RealDuration: 5, NPS: nps(3)},  // détracteur
		{Feature: "e", Estimation: 4, RealDuration: 5},               // sans note
	}}
	router := feedbackRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/console/nps", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body : %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			NPS  npsStats          `json:"nps"`
			Bias *model.BiasResult `json:"bias"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	stats := resp.Data.NPS
	if stats.Count != 4 || stats.Promoters != 2 || stats.Passives != 1 || stats.Detractors != 1 {
		t.Errorf("répartition inattendue : %+v", stats)
	}
	if stats.Score != 25 { // (2-1)/4 * 100
		t.Errorf("score NPS = %v, attendu 25", stats.Score)
	}
	// Tous les records qualifient : le biais accompagne les stats
	if resp.Data.Bias == nil || resp.Data.Bias.AveragePercent != 25 {
		t.Errorf("biais inattendu : %+v", resp.Data.Bias)
	}
}
