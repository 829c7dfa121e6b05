package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/model"
)

// FileFeedbackStore persiste les feedbacks dans un fichier JSON plat
// (liste append-only). Les appends sont sérialisés par un mutex autour de la
// séquence lecture-ajout-réécriture ; les lectures concurrentes sont sûres.
type FileFeedbackStore struct {
	mu   sync.Mutex
	path string
}

// NewFileFeedbackStore crée un store adossé au fichier donné.
// Le fichier peut ne pas exister : il sera créé au premier append.
func NewFileFeedbackStore(path string) *FileFeedbackStore {
	return &FileFeedbackStore{path: path}
}

// ReadAll retourne tous les feedbacks dans l'ordre d'ajout.
// Un fichier absent est un historique vide, pas une erreur.
func (s *FileFeedbackStore) ReadAll() ([]model.FeedbackRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Append ajoute un record en fin de liste et réécrit le fichier
func (s *FileFeedbackStore) Append(record model.FeedbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readLocked()
	if err != nil {
		return err
	}
	records = append(records, record)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: sérialisation: %v", model.ErrStore, err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: écriture %s: %v", model.ErrStore, s.path, err)
	}

	logger.Global().Info().
		Str("feature", record.Feature).
		Int("total", len(records)).
		Msg("Feedback enregistré")

	return nil
}

func (s *FileFeedbackStore) readLocked() ([]model.FeedbackRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: lecture %s: %v", model.ErrStore, s.path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var records []model.FeedbackRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: fichier corrompu %s: %v", model.ErrStore, s.path, err)
	}

	return records, nil
}
