package service

import (
	"testing"

	"github.com/mlecoq/estimation-ia-api/internal/model"
)

func TestDefaultBufferPolicy(t *testing.T) {
	tests := []struct {
		name       string
		deps       []model.Dependency
		sector     string
		clientType string
		want       int
	}{
		{
			name: "aucun signal",
			want: 0,
		},
		{
			name: "dépendance critique",
			deps: []model.Dependency{{Name: "API tierce", Level: model.LevelCritique}},
			want: 2,
		},
		{
			name: "plusieurs dépendances critiques comptées une fois",
			deps: []model.Dependency{
				{Name: "a", Level: model.LevelCritique},
				{Name: "b", Level: model.LevelCritique},
			},
			want: 2,
		},
		{
			name: "dépendance non critique sans marge",
			deps: []model.Dependency{{Name: "lib interne", Level: model.LevelMineure}},
			want: 0,
		},
		{
			name:   "secteur sensible",
			sector: "Banque",
			want:   1,
		},
		{
			name:   "secteur sensible en sous-chaîne",
			sector: "santé publique",
			want:   1,
		},
		{
			name:       "grand compte",
			clientType: "Grand compte",
			want:       1,
		},
		{
			name:       "cumul des trois règles",
			deps:       []model.Dependency{{Name: "API", Level: model.LevelCritique}},
			sector:     "assurance",
			clientType: "grand compte",
			want:       4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultBufferPolicy(tt.deps, tt.sector, tt.clientType, "")
			if got != tt.want {
				t.Errorf("buffer = %d, attendu %d", got, tt.want)
			}
		})
	}
}
