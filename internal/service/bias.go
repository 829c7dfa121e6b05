package service

import (
	"math"

	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/model"
)

// Seuils de matérialité du biais historique
const (
	// BiasCorrectionThreshold : au-delà, le composer injecte une consigne de correction
	BiasCorrectionThreshold = 10.0

	// BiasPenaltyThreshold : au-delà, le scorer applique la pénalité historique
	BiasPenaltyThreshold = 20.0

	// BiasWindow : nombre de feedbacks récents pris en compte
	BiasWindow = 5
)

// Libellés de tendance
const (
	TrendOptimiste  = "trop optimiste"
	TrendPessimiste = "trop pessimiste"
)

// EstimateBias calcule l'écart moyen entre estimations et durées réelles sur
// la fenêtre de feedbacks fournie. Seuls les records avec estimation et durée
// réelle strictement positives participent ; il en faut au moins 2 pour
// produire un signal, sinon retourne nil (pas de signal).
func EstimateBias(records []model.FeedbackRecord) *model.BiasResult {
	var qualifying []model.FeedbackRecord
	for _, r := range records {
		if r.Qualifies() {
			qualifying = append(qualifying, r)
		}
	}

	if len(qualifying) < 2 {
		return nil
	}

	var sum float64
	for _, r := range qualifying {
		sum += (r.RealDuration - r.Estimation) / r.Estimation * 100
	}
	avg := sum / float64(len(qualifying))

	trend := TrendPessimiste
	if avg > 0 {
		// le réel a pris plus longtemps que prévu
		trend = TrendOptimiste
	}

	logger.Global().Debug().
		Float64("average_percent", avg).
		Str("trend", trend).
		Int("count", len(qualifying)).
		Msg("Biais historique calculé")

	return &model.BiasResult{
		AveragePercent: avg,
		Trend:          trend,
		Count:          len(qualifying),
	}
}

// BiasIsMaterial indique si le signal justifie une consigne de correction
// explicite dans le prompt (|moyenne| > 10 %).
func BiasIsMaterial(bias *model.BiasResult) bool {
	return bias != nil && math.Abs(bias.AveragePercent) > BiasCorrectionThreshold
}

// RecentWindow retourne les n derniers records (ordre d'insertion préservé).
func RecentWindow(records []model.FeedbackRecord, n int) []model.FeedbackRecord {
	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}
