package service

import (
	"strings"
	"testing"

	"github.com/mlecoq/estimation-ia-api/internal/model"
)

func TestComposePromptDeterministic(t *testing.T) {
	req := model.EstimationRequest{
		Feature:      "export PDF des factures",
		TeamCapacity: 80,
		Dependencies: []model.Dependency{
			{Name: "API facturation", Level: model.LevelCritique},
			{Name: "gabarit PDF", Level: model.LevelMineure},
		},
		Risks:  "format PDF mouvant",
		Sector: "banque",
	}
	velocity := &model.VelocitySummary{Source: model.SourceGitHub, UnitsPerWeek: 3.2, AvgResolutionDays: 2.5, TotalClosed: 32, WeeksAnalyzed: 10}
	bias := &model.BiasResult{AveragePercent: 25, Trend: TrendOptimiste, Count: 5}

	first := ComposePrompt(req, velocity, bias)
	second := ComposePrompt(req, velocity, bias)
	if first != second {
		t.Error("deux appels avec les mêmes entrées doivent produire le même prompt")
	}
}

func TestComposePromptSections(t *testing.T) {
	req := model.EstimationRequest{
		Feature:         "tableau de bord analytique",
		TeamCapacity:    70,
		TeamAbsences:    3,
		ExcludeWeekends: true,
		TeamMembers: []model.TeamMember{
			{Name: "Alice", Capacity: 50},
			{Name: "Benoît", Capacity: 80},
		},
		Dependencies: []model.Dependency{
			{Name: "entrepôt de données", Level: model.LevelCritique},
		},
		Risks:       "volumétrie inconnue",
		Sector:      "santé",
		Stack:       "Go / React",
		ClientType:  "grand compte",
		Constraints: "RGPD",
	}

	prompt := ComposePrompt(req, nil, nil)

	for _, fragment := range []string{
		`"tableau de bord analytique"`,
		"Capacité de l'équipe : 70%.",
		"Jours d'absence prévus : 3.",
		"Les week-ends ne sont pas travaillés.",
		"- Alice : 50% (cumul 50%)",
		"- Benoît : 80% (cumul 130%)",
		"- critique : entrepôt de données",
		"Prévois une marge de sécurité explicite pour les dépendances critiques.",
		"Risques identifiés : volumétrie inconnue",
		"Secteur : santé",
		"Stack technique : Go / React",
		"Type de client : grand compte",
		"Contraintes : RGPD",
		`"Estimation totale : X jours"`,
		`"Livraison estimée : jj/mm/aaaa"`,
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("fragment manquant dans le prompt : %q", fragment)
		}
	}
}

func TestComposePromptBiasCorrection(t *testing.T) {
	req := model.EstimationRequest{Feature: "module de recherche", TeamCapacity: 100}

	// Biais matériel : consigne de correction présente
	material := ComposePrompt(req, nil, &model.BiasResult{AveragePercent: 25, Trend: TrendOptimiste, Count: 5})
	if !strings.Contains(material, "trop optimiste") || !strings.Contains(material, "+25%") {
		t.Errorf("consigne de correction attendue, prompt :\n%s", material)
	}

	// Biais sous le seuil : pas de consigne
	weak := ComposePrompt(req, nil, &model.BiasResult{AveragePercent: 5, Trend: TrendOptimiste, Count: 5})
	if strings.Contains(weak, "correction") {
		t.Error("pas de consigne de correction attendue sous le seuil de 10%")
	}

	// Pas de signal : pas de consigne
	none := ComposePrompt(req, nil, nil)
	if strings.Contains(none, "correction") {
		t.Error("pas de consigne de correction attendue sans signal")
	}
}

// Le contrat de format du composer doit rester parsable par le parseur :
// une complétion qui suit les consignes à la lettre est toujours extraite.
func TestComposerParserContract(t *testing.T) {
	completion := `1. Analyse du besoin : 2 jours
2. Développement : 5 jours
3. Recette : 1 jour
Estimation totale : 8 jours
Livraison estimée : 12/10/2026`

	result := ParseCompletion(completion)
	if len(result.Tasks) != 3 {
		t.Fatalf("3 tâches attendues, obtenu %d", len(result.Tasks))
	}
	if result.TotalDays != 8 {
		t.Errorf("TotalDays = %v, attendu 8", result.TotalDays)
	}
	if result.DeliveryDate != "12/10/2026" {
		t.Errorf("DeliveryDate = %q, attendu 12/10/2026", result.DeliveryDate)
	}
}

func TestVelocitySentence(t *testing.T) {
	if got := VelocitySentence(nil); got != "" {
		t.Errorf("phrase vide attendue pour nil, obtenu %q", got)
	}
	if got := VelocitySentence(&model.VelocitySummary{Source: model.SourceGitHub}); got != "" {
		t.Errorf("phrase vide attendue sans ticket fermé, obtenu %q", got)
	}

	github := VelocitySentence(&model.VelocitySummary{
		Source: model.SourceGitHub, UnitsPerWeek: 3.2, AvgResolutionDays: 2.5, TotalClosed: 32, WeeksAnalyzed: 10,
	})
	if !strings.Contains(github, "3.2 tickets GitHub par semaine") {
		t.Errorf("phrase GitHub inattendue : %q", github)
	}

	trello := VelocitySentence(&model.VelocitySummary{
		Source: model.SourceTrello, UnitsPerWeek: 5, AvgResolutionDays: 1.2, TotalClosed: 20, WeeksAnalyzed: 4,
	})
	if !strings.Contains(trello, "cartes Trello") {
		t.Errorf("phrase Trello inattendue : %q", trello)
	}
}
