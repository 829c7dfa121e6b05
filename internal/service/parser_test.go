package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParseCompletionTaskShapes(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantName  string
		wantDays  float64
		wantMatch bool
	}{
		{
			name:      "puce numérotée avec point",
			line:      "1. Conception de la base : 2 jours",
			wantName:  "Conception de la base",
			wantDays:  2,
			wantMatch: true,
		},
		{
			name:      "puce numérotée avec parenthèse",
			line:      "3) API REST : 4 jours",
			wantName:  "API REST",
			wantDays:  4,
			wantMatch: true,
		},
		{
			name:      "tiret",
			line:      "- Intégration front : 3 jours",
			wantName:  "Intégration front",
			wantDays:  3,
			wantMatch: true,
		},
		{
			name:      "astérisque",
			line:      "* Tests end-to-end : 1 jour",
			wantName:  "Tests end-to-end",
			wantDays:  1,
			wantMatch: true,
		},
		{
			name:      "durée au singulier",
			line:      "2. Déploiement : 1 jour",
			wantName:  "Déploiement",
			wantDays:  1,
			wantMatch: true,
		},
		{
			name:      "durée décimale avec point",
			line:      "- Revue de code : 0.5 jour",
			wantName:  "Revue de code",
			wantDays:  0.5,
			wantMatch: true,
		},
		{
			name:      "durée décimale avec virgule",
			line:      "- Documentation : 1,5 jours",
			wantName:  "Documentation",
			wantDays:  1.5,
			wantMatch: true,
		},
		{
			name:      "durée entre parenthèses",
			line:      "1. Maquettes : (2) jours",
			wantName:  "Maquettes",
			wantDays:  2,
			wantMatch: true,
		},
		{
			name:      "sans puce",
			line:      "Mise en production : 1 jour",
			wantName:  "Mise en production",
			wantDays:  1,
			wantMatch: true,
		},
		{
			name:      "ligne de prose sans durée",
			line:      "Voici le découpage proposé pour cette fonctionnalité.",
			wantMatch: false,
		},
		{
			name:      "ligne de total écartée",
			line:      "Estimation totale : 10 jours",
			wantMatch: false,
		},
		{
			name:      "durée en heures ignorée",
			line:      "- Réunion de cadrage : 3 heures",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseCompletion(tt.line)

			if !tt.wantMatch {
				if len(result.Tasks) != 0 {
					t.Fatalf("aucune tâche attendue, obtenu %+v", result.Tasks)
				}
				return
			}

			if len(result.Tasks) != 1 {
				t.Fatalf("1 tâche attendue, obtenu %d", len(result.Tasks))
			}
			task := result.Tasks[0]
			if task.Name != tt.wantName {
				t.Errorf("Name = %q, attendu %q", task.Name, tt.wantName)
			}
			if task.Days != tt.wantDays {
				t.Errorf("Days = %v, attendu %v", task.Days, tt.wantDays)
			}
		})
	}
}

func TestParseCompletionFullText(t *testing.T) {
	text := `Voici le découpage proposé :

1. Conception du schéma : 2 jours
2. Développement de l'API : 4 jours
3. Interface utilisateur : 3 jours
4. Tests et recette : 1,5 jours

Estimation totale : 12 jours
Livraison estimée : 15/07/2026`

	result := ParseCompletion(text)

	if len(result.Tasks) != 4 {
		t.Fatalf("4 tâches attendues, obtenu %d : %+v", len(result.Tasks), result.Tasks)
	}
	// La somme calculée est autoritaire, pas le total annoncé
	if result.TotalDays != 10.5 {
		t.Errorf("TotalDays = %v, attendu 10.5", result.TotalDays)
	}
	if result.DisplayTotal != 12 {
		t.Errorf("DisplayTotal = %v, attendu 12 (total annoncé)", result.DisplayTotal)
	}
	if result.DeliveryDate != "15/07/2026" {
		t.Errorf("DeliveryDate = %q, attendu 15/07/2026", result.DeliveryDate)
	}
}

func TestParseCompletionDeliverySynonyms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"forme canonique", "Livraison estimée : 03/09/2026", "03/09/2026"},
		{"sans deux-points", "Livraison estimée 03/09/2026", "03/09/2026"},
		{"soit", "Le total est de 10 jours, soit 14/09/2026", "14/09/2026"},
		{"le", "La livraison est prévue pour le 21/09/2026", "21/09/2026"},
		{"autour du", "autour du 28/09/2026", "28/09/2026"},
		{"aux alentours du", "aux alentours du 05/10/2026", "05/10/2026"},
		{"absente", "Pas de date dans ce texte.", ""},
		{"format non reconnu", "Livraison estimée : 3 septembre 2026", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCompletion(tt.text).DeliveryDate
			if got != tt.want {
				t.Errorf("DeliveryDate = %q, attendu %q", got, tt.want)
			}
		})
	}
}

func TestParseCompletionEmptyIsValid(t *testing.T) {
	for _, text := range []string{"", "Je ne peux pas estimer cette demande.", "   \n\n  "} {
		result := ParseCompletion(text)
		if len(result.Tasks) != 0 || result.TotalDays != 0 {
			t.Errorf("résultat dégradé attendu pour %q, obtenu %+v", text, result)
		}
	}
}

func TestParseCompletionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("la somme des durées égale TotalDays", prop.ForAll(
		func(durations []uint8) bool {
			var b strings.Builder
			var want float64
			for i, d := range durations {
				days := float64(d%30) + 1
				want += days
				fmt.Fprintf(&b, "%d. Tâche %c : %g jours\n", i+1, 'A'+rune(i%26), days)
			}
			result := ParseCompletion(b.String())
			return len(result.Tasks) == len(durations) && result.TotalDays == want
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("parser idempotent sur le texte reformaté", prop.ForAll(
		func(durations []uint8) bool {
			var b strings.Builder
			for i, d := range durations {
				fmt.Fprintf(&b, "%d. Tâche %d : %d jours\n", i+1, i, int(d%30)+1)
			}
			first := ParseCompletion(b.String())

			// Re-sérialise le résultat et re-parse : mêmes tâches
			var b2 strings.Builder
			for i, task := range first.Tasks {
				fmt.Fprintf(&b2, "%d. %s : %g jours\n", i+1, task.Name, task.Days)
			}
			second := ParseCompletion(b2.String())

			if len(first.Tasks) != len(second.Tasks) {
				return false
			}
			for i := range first.Tasks {
				if first.Tasks[i] != second.Tasks[i] {
					return false
				}
			}
			return first.TotalDays == second.TotalDays
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
