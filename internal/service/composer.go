package service

import (
	"fmt"
	"strings"

	"github.com/mlecoq/estimation-ia-api/internal/model"
)

// Préambule de rôle envoyé en message système au fournisseur
const SystemPreamble = "Tu es un assistant en estimation produit."

// ComposePrompt assemble le prompt d'estimation à partir de la requête et des
// signaux contextuels, dans un ordre de sections fixe. Fonction pure : des
// entrées égales produisent un texte identique, ce qui garde le pipeline
// testable sans appeler le fournisseur.
func ComposePrompt(req model.EstimationRequest, velocity *model.VelocitySummary, bias *model.BiasResult) string {
	var b strings.Builder

	// 1. Rôle et mission
	b.WriteString("Tu es un assistant produit.\n")
	fmt.Fprintf(&b, "Voici une description de fonctionnalité : %q\n\n", req.Feature)
	b.WriteString("Ta mission :\n")
	b.WriteString("1. Découpe-la en 3 à 7 tâches techniques\n")
	b.WriteString("2. Estime pour chaque tâche une durée (en jours)\n")
	b.WriteString("3. Calcule ensuite le temps total estimé (en jours)\n")
	b.WriteString("4. Calcule une date de livraison réaliste\n\n")

	// 2. Contexte équipe
	fmt.Fprintf(&b, "Capacité de l'équipe : %.0f%%.\n", req.TeamCapacity)
	if req.TeamAbsences > 0 {
		fmt.Fprintf(&b, "Jours d'absence prévus : %d.\n", req.TeamAbsences)
	}
	if req.ExcludeWeekends {
		b.WriteString("Les week-ends ne sont pas travaillés.\n")
	}
	if req.ExcludeHolidays {
		b.WriteString("Les jours fériés français ne sont pas travaillés.\n")
	}
	b.WriteString("\n")

	// 3. Vélocité historique
	if sentence := VelocitySentence(velocity); sentence != "" {
		b.WriteString(sentence)
		b.WriteString("\n\n")
	}

	// 4. Détail de capacité par membre, avec total cumulé
	if len(req.TeamMembers) > 0 {
		b.WriteString("Capacité par membre :\n")
		total := 0.0
		for _, m := range req.TeamMembers {
			total += m.Capacity
			fmt.Fprintf(&b, "- %s : %.0f%% (cumul %.0f%%)\n", m.Name, m.Capacity, total)
		}
		b.WriteString("\n")
	}

	// 5. Dépendances groupées par criticité
	if len(req.Dependencies) > 0 {
		b.WriteString("Dépendances déclarées :\n")
		for _, level := range []string{model.LevelCritique, model.LevelModeree, model.LevelMineure} {
			var names []string
			for _, d := range req.Dependencies {
				if d.Level == level {
					names = append(names, d.Name)
				}
			}
			if len(names) > 0 {
				fmt.Fprintf(&b, "- %s : %s\n", level, strings.Join(names, ", "))
			}
		}
		for _, d := range req.Dependencies {
			if d.IsCritical() {
				b.WriteString("Prévois une marge de sécurité explicite pour les dépendances critiques.\n")
				break
			}
		}
		b.WriteString("\n")
	}

	// 6. Risques
	if strings.TrimSpace(req.Risks) != "" {
		fmt.Fprintf(&b, "Risques identifiés : %s\n\n", req.Risks)
	}

	// 7. Contexte projet
	if req.Sector != "" {
		fmt.Fprintf(&b, "Secteur : %s\n", req.Sector)
	}
	if req.Stack != "" {
		fmt.Fprintf(&b, "Stack technique : %s\n", req.Stack)
	}
	if req.ClientType != "" {
		fmt.Fprintf(&b, "Type de client : %s\n", req.ClientType)
	}
	if req.Constraints != "" {
		fmt.Fprintf(&b, "Contraintes : %s\n", req.Constraints)
	}

	// 8. Correction issue du feedback historique, si le signal est matériel
	if BiasIsMaterial(bias) {
		fmt.Fprintf(&b, "\nSur les %d dernières estimations, l'équipe s'est montrée %s de %.0f%% en moyenne. Applique une correction de %+.0f%% aux durées estimées.\n",
			bias.Count, bias.Trend, absFloat(bias.AveragePercent), bias.AveragePercent)
	}

	// 9. Contrat de format : les motifs que le parseur sait extraire
	b.WriteString("\nPrésente chaque tâche sur une ligne au format \"N. Nom de la tâche : D jours\".\n")
	b.WriteString("Termine par \"Estimation totale : X jours\" puis, sur une ligne séparée,\n")
	b.WriteString("\"Livraison estimée : jj/mm/aaaa\".\n")

	return b.String()
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
