package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mlecoq/estimation-ia-api/internal/model"
)

// Le parseur repose sur le contrat texte entre le composer et le modèle :
// des lignes de tâches « N. Nom : D jour(s) » ou « - Nom : D jours », et la
// phrase « Livraison estimée : jj/mm/aaaa ». Tout changement ici doit rester
// synchronisé avec les consignes de format du composer.
var (
	// Ligne de tâche : puce numérotée ou tiret optionnelle, nom, deux-points,
	// durée suivie de « jour(s) ». Ponctuation résiduelle tolérée sur la durée.
	taskLineRe = regexp.MustCompile(`(?i)^\s*(?:\d+\s*[.)]\s*|[-*•]\s*)?(.+?)\s*:\s*\(?\s*(\d+(?:[.,]\d+)?)\s*\)?\s*jours?\b`)

	// Total annoncé par le modèle (affiché de préférence, jamais autoritaire)
	totalRe = regexp.MustCompile(`(?i)(?:estimation\s+totale|total(?:\s+estimé)?)\s*(?:de\s*)?:?\s*\(?\s*(\d+(?:[.,]\d+)?)\s*\)?\s*jours?`)

	// Date de livraison : « livraison estimée » ou synonymes plus lâches,
	// suivis d'un jeton jj/mm/aaaa. Première occurrence retenue.
	deliveryRe = regexp.MustCompile(`(?i)(?:livraison\s+estimée|aux\s+alentours\s+du|autour\s+du|\bsoit\b|\ble\b)\s*:?\s*(\d{2}/\d{2}/\d{4})`)
)

// ParseResult contient les données structurées extraites d'une complétion
type ParseResult struct {
	Tasks        []model.Task
	TotalDays    float64 // somme des durées parsées — valeur autoritaire
	DisplayTotal float64 // total annoncé dans le texte s'il existe, sinon la somme
	DeliveryDate string  // jj/mm/aaaa, vide si non trouvée
}

// ParseCompletion extrait les tâches, le total et la date de livraison du
// texte libre retourné par le modèle. Ne retourne jamais d'erreur : zéro
// tâche est un résultat valide (dégradé), pas une exception.
func ParseCompletion(rawText string) ParseResult {
	var result ParseResult

	for _, line := range strings.Split(rawText, "\n") {
		m := taskLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		// La ligne de total annoncé ressemble à une ligne de tâche : on l'écarte
		if name == "" || strings.Contains(strings.ToLower(name), "total") {
			continue
		}

		days := parseDays(m[2])
		if days < 0 {
			continue
		}

		result.Tasks = append(result.Tasks, model.Task{Name: name, Days: days})
		result.TotalDays += days
	}

	result.DisplayTotal = result.TotalDays
	if m := totalRe.FindStringSubmatch(rawText); m != nil {
		if v := parseDays(m[1]); v > 0 {
			result.DisplayTotal = v
		}
	}

	if m := deliveryRe.FindStringSubmatch(rawText); m != nil {
		result.DeliveryDate = m[1]
	}

	return result
}

// parseDays convertit un jeton de durée (virgule décimale tolérée).
// Retourne -1 si le jeton est inexploitable ; jamais de durée négative.
func parseDays(token string) float64 {
	token = strings.ReplaceAll(token, ",", ".")
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || v < 0 {
		return -1
	}
	return v
}
