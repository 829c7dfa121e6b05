package service

import (
	"fmt"

	"github.com/mlecoq/estimation-ia-api/internal/model"
)

// VelocitySentence rend le résumé de vélocité en une phrase lisible,
// templatée par source. Toutes les sources partagent la même forme de
// résumé normalisé.
func VelocitySentence(v *model.VelocitySummary) string {
	if v == nil || v.TotalClosed == 0 {
		return ""
	}

	switch v.Source {
	case model.SourceGitHub:
		return fmt.Sprintf("L'équipe ferme en moyenne %.1f tickets GitHub par semaine (résolution moyenne : %.1f jours, %d tickets sur %d semaines).",
			v.UnitsPerWeek, v.AvgResolutionDays, v.TotalClosed, v.WeeksAnalyzed)
	case model.SourceTrello:
		return fmt.Sprintf("L'équipe archive en moyenne %.1f cartes Trello par semaine (résolution moyenne : %.1f jours, %d cartes sur %d semaines).",
			v.UnitsPerWeek, v.AvgResolutionDays, v.TotalClosed, v.WeeksAnalyzed)
	case model.SourceJira:
		return fmt.Sprintf("L'équipe résout en moyenne %.1f tickets JIRA par semaine (résolution moyenne : %.1f jours, %d tickets sur %d semaines).",
			v.UnitsPerWeek, v.AvgResolutionDays, v.TotalClosed, v.WeeksAnalyzed)
	case model.SourceNotion:
		return fmt.Sprintf("L'équipe clôt en moyenne %.1f tâches Notion par semaine (résolution moyenne : %.1f jours, %d tâches sur %d semaines).",
			v.UnitsPerWeek, v.AvgResolutionDays, v.TotalClosed, v.WeeksAnalyzed)
	}

	return fmt.Sprintf("L'équipe ferme en moyenne %.1f unités par semaine (résolution moyenne : %.1f jours).",
		v.UnitsPerWeek, v.AvgResolutionDays)
}
