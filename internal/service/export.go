package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/mlecoq/estimation-ia-api/internal/model"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Estimation"

// ExcelGenerator génère le classeur Excel d'un résultat d'estimation
type ExcelGenerator struct{}

// NewExcelGenerator crée un nouveau générateur Excel
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Generate produit le fichier Excel. Tolère une liste de tâches vide et une
// date de livraison absente.
func (g *ExcelGenerator) Generate(feature string, result *model.EstimationResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("renommer sheet: %w", err)
	}

	if err := f.SetCellValue(sheetName, "A1", "Fonctionnalité"); err != nil {
		return nil, fmt.Errorf("écrire titre: %w", err)
	}
	if err := f.SetCellValue(sheetName, "B1", feature); err != nil {
		return nil, fmt.Errorf("écrire titre: %w", err)
	}

	// En-têtes du tableau de tâches
	headers := []string{"Tâche", "Durée (jours)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("écrire headers: %w", err)
		}
	}

	// Lignes de tâches
	row := 4
	for _, task := range result.Tasks {
		nameCell, _ := excelize.CoordinatesToCellName(1, row)
		daysCell, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellValue(sheetName, nameCell, task.Name); err != nil {
			return nil, fmt.Errorf("écrire tâche: %w", err)
		}
		if err := f.SetCellValue(sheetName, daysCell, task.Days); err != nil {
			return nil, fmt.Errorf("écrire durée: %w", err)
		}
		row++
	}

	// Bloc résumé
	row++
	summary := [][2]interface{}{
		{"Total (jours)", result.TotalDays},
		{"Marge (jours)", result.BufferDays},
		{"Date de livraison", orDash(result.DeliveryDate)},
		{"Score de confiance", result.ConfidenceScore},
	}
	for _, s := range summary {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellValue(sheetName, labelCell, s[0]); err != nil {
			return nil, fmt.Errorf("écrire résumé: %w", err)
		}
		if err := f.SetCellValue(sheetName, valueCell, s[1]); err != nil {
			return nil, fmt.Errorf("écrire résumé: %w", err)
		}
		row++
	}

	if err := f.SetColWidth(sheetName, "A", "A", 40); err != nil {
		return nil, fmt.Errorf("ajuster colonnes: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "B", 18); err != nil {
		return nil, fmt.Errorf("ajuster colonnes: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("écrire buffer: %w", err)
	}

	return buf, nil
}

// GenerateCSV produit la version CSV (séparateur « ; », convention Excel FR).
// Tolère une liste de tâches vide et une date de livraison absente.
func GenerateCSV(feature string, result *model.EstimationResult) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	w.Comma = ';'

	rows := [][]string{
		{"Fonctionnalité", feature},
		{},
		{"Tâche", "Durée (jours)"},
	}
	for _, task := range result.Tasks {
		rows = append(rows, []string{task.Name, strconv.FormatFloat(task.Days, 'f', -1, 64)})
	}
	rows = append(rows,
		[]string{},
		[]string{"Total (jours)", strconv.FormatFloat(result.TotalDays, 'f', -1, 64)},
		[]string{"Marge (jours)", strconv.Itoa(result.BufferDays)},
		[]string{"Date de livraison", orDash(result.DeliveryDate)},
		[]string{"Score de confiance", strconv.Itoa(result.ConfidenceScore)},
	)

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("écrire csv: %w", err)
	}

	return buf, nil
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
