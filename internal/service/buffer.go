package service

import (
	"strings"

	"github.com/mlecoq/estimation-ia-api/internal/model"
)

// BufferPolicy calcule les jours de marge à ajouter à la somme brute des
// durées. Politique injectable pour pouvoir tester et étendre les règles
// indépendamment du scoring.
type BufferPolicy func(deps []model.Dependency, sector, clientType, constraints string) int

// Secteurs considérés sensibles par la politique par défaut
var sensitiveSectors = []string{"banque", "santé", "public", "assurance"}

// DefaultBufferPolicy : +2 jours si au moins une dépendance critique,
// +1 jour pour un secteur sensible, +1 jour pour un client grand compte.
// Jamais négatif.
func DefaultBufferPolicy(deps []model.Dependency, sector, clientType, constraints string) int {
	buffer := 0

	for _, d := range deps {
		if d.IsCritical() {
			buffer += 2
			break
		}
	}

	sectorLower := strings.ToLower(sector)
	for _, s := range sensitiveSectors {
		if strings.Contains(sectorLower, s) {
			buffer++
			break
		}
	}

	if strings.Contains(strings.ToLower(clientType), "grand compte") {
		buffer++
	}

	return buffer
}
