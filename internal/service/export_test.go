package service

import (
	"strings"
	"testing"

	"github.com/mlecoq/estimation-ia-api/internal/model"
	"github.com/xuri/excelize/v2"
)

func sampleResult() *model.EstimationResult {
	return &model.EstimationResult{
		Tasks: []model.Task{
			{Name: "Conception", Days: 2},
			{Name: "Développement", Days: 4.5},
			{Name: "Recette", Days: 1},
		},
		TotalDays:       7.5,
		BufferDays:      2,
		DeliveryDate:    "20/03/2026",
		ConfidenceScore: 85,
	}
}

func TestGenerateCSV(t *testing.T) {
	buf, err := GenerateCSV("export PDF", sampleResult())
	if err != nil {
		t.Fatalf("erreur inattendue : %v", err)
	}

	out := buf.String()
	for _, fragment := range []string{
		"Fonctionnalité;export PDF",
		"Conception;2",
		"Développement;4.5",
		"Total (jours);7.5",
		"Marge (jours);2",
		"Date de livraison;20/03/2026",
		"Score de confiance;85",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("fragment manquant dans le CSV : %q\n%s", fragment, out)
		}
	}
}

func TestGenerateCSVEmptyResult(t *testing.T) {
	buf, err := GenerateCSV("fonctionnalité illisible", &model.EstimationResult{ConfidenceScore: 60})
	if err != nil {
		t.Fatalf("erreur inattendue : %v", err)
	}
	if !strings.Contains(buf.String(), "Date de livraison;—") {
		t.Errorf("date absente attendue en tiret :\n%s", buf.String())
	}
}

func TestExcelGenerate(t *testing.T) {
	buf, err := NewExcelGenerator().Generate("export PDF", sampleResult())
	if err != nil {
		t.Fatalf("erreur inattendue : %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("classeur illisible : %v", err)
	}
	defer f.Close()

	if f.GetSheetName(0) != "Estimation" {
		t.Errorf("sheet = %q, attendu Estimation", f.GetSheetName(0))
	}

	checks := map[string]string{
		"B1": "export PDF",
		"A3": "Tâche",
		"A4": "Conception",
		"A5": "Développement",
		"A6": "Recette",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue("Estimation", cell)
		if err != nil {
			t.Fatalf("lecture %s : %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, attendu %q", cell, got, want)
		}
	}
}

func TestExcelGenerateEmptyResult(t *testing.T) {
	buf, err := NewExcelGenerator().Generate("x", &model.EstimationResult{})
	if err != nil {
		t.Fatalf("une estimation vide doit rester exportable : %v", err)
	}
	if buf.Len() == 0 {
		t.Error("classeur vide")
	}
}
