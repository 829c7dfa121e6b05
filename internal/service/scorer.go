package service

import (
	"math"
	"strings"

	"github.com/mlecoq/estimation-ia-api/internal/model"
)

// Constantes de scoring (variante enrichie : base 80, bornes [10,100])
const (
	ScoreBaseline = 80
	ScoreMin      = 10
	ScoreMax      = 100

	// Ratio min/max en dessous duquel la dispersion des durées est pénalisée
	DispersionRatioThreshold = 0.5

	// Vélocité en dessous de laquelle l'équipe est considérée en difficulté
	VelocityLowThreshold = 1.0
)

// Libellés du détail de score, dans l'ordre d'évaluation
const (
	LabelDispersion = "Dispersion des tâches"
	LabelDeps       = "Dépendances"
	LabelRisks      = "Risques"
	LabelVelocity   = "Vélocité"
	LabelBias       = "Biais historique"
)

// ScoreResult est le score de confiance borné accompagné de son détail
type ScoreResult struct {
	Score   int
	Details []model.ScoreFactor
}

// ComputeConfidence combine les signaux indépendants en un score borné.
// Chaque signal est évalué dans un ordre fixe et contribue une ligne au
// détail, y compris quand sa contribution est nulle.
func ComputeConfidence(tasks []model.Task, deps []model.Dependency, risks string, velocity *model.VelocitySummary, bias *model.BiasResult) ScoreResult {
	score := ScoreBaseline
	details := make([]model.ScoreFactor, 0, 5)

	add := func(label string, delta int) {
		score += delta
		details = append(details, model.ScoreFactor{Label: label, Delta: delta})
	}

	add(LabelDispersion, dispersionDelta(tasks))
	add(LabelDeps, dependenciesDelta(deps))
	add(LabelRisks, risksDelta(risks))
	add(LabelVelocity, velocityDelta(velocity))
	add(LabelBias, biasDelta(bias))

	if score < ScoreMin {
		score = ScoreMin
	}
	if score > ScoreMax {
		score = ScoreMax
	}

	return ScoreResult{Score: score, Details: details}
}

// dispersionDelta évalue l'homogénéité des durées de tâches parsées
func dispersionDelta(tasks []model.Task) int {
	switch len(tasks) {
	case 0:
		return -20
	case 1:
		return -10
	}

	min, max := tasks[0].Days, tasks[0].Days
	for _, t := range tasks[1:] {
		if t.Days < min {
			min = t.Days
		}
		if t.Days > max {
			max = t.Days
		}
	}

	if max == 0 {
		return -10
	}
	if min/max > DispersionRatioThreshold {
		return 10
	}
	return -10
}

func dependenciesDelta(deps []model.Dependency) int {
	if len(deps) == 0 {
		return 0
	}
	for _, d := range deps {
		if d.IsCritical() {
			return -15
		}
	}
	return -5
}

func risksDelta(risks string) int {
	if strings.TrimSpace(risks) != "" {
		return -10
	}
	return 0
}

func velocityDelta(velocity *model.VelocitySummary) int {
	// Vélocité indisponible : pas de signal, pas de pénalité
	if velocity == nil {
		return 0
	}
	if velocity.UnitsPerWeek < VelocityLowThreshold {
		return -10
	}
	return 0
}

func biasDelta(bias *model.BiasResult) int {
	if bias != nil && math.Abs(bias.AveragePercent) > BiasPenaltyThreshold {
		return -10
	}
	return 0
}
