package repository

import (
	"database/sql"
	"fmt"

	"github.com/mlecoq/estimation-ia-api/internal/model"
)

// PostgresFeedbackStore persiste les feedbacks dans une table append-only.
// L'atomicité de l'append est garantie par l'INSERT ; l'ordre de lecture est
// l'ordre d'insertion (id séquentiel).
type PostgresFeedbackStore struct {
	db *sql.DB
}

// NewPostgresFeedbackStore crée le store.
// Le schéma est géré par le package migration.
func NewPostgresFeedbackStore(db *sql.DB) *PostgresFeedbackStore {
	return &PostgresFeedbackStore{db: db}
}

// ReadAll retourne tous les feedbacks dans l'ordre d'insertion
func (s *PostgresFeedbackStore) ReadAll() ([]model.FeedbackRecord, error) {
	rows, err := s.db.Query(`SELECT feature, estimation, real_duration, nps, comment, date FROM feedbacks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: lecture feedbacks: %v", model.ErrStore, err)
	}
	defer rows.Close()

	var records []model.FeedbackRecord
	for rows.Next() {
		var r model.FeedbackRecord
		var nps sql.NullInt64
		if err := rows.Scan(&r.Feature, &r.Estimation, &r.RealDuration, &nps, &r.Comment, &r.Date); err != nil {
			return nil, fmt.Errorf("%w: scan feedback: %v", model.ErrStore, err)
		}
		if nps.Valid {
			v := int(nps.Int64)
			r.NPS = &v
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: itération feedbacks: %v", model.ErrStore, err)
	}

	return records, nil
}

// Append insère un record en fin de table
func (s *PostgresFeedbackStore) Append(record model.FeedbackRecord) error {
	var nps sql.NullInt64
	if record.NPS != nil {
		nps = sql.NullInt64{Int64: int64(*record.NPS), Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO feedbacks (feature, estimation, real_duration, nps, comment, date) VALUES ($1, $2, $3, $4, $5, $6)`,
		record.Feature, record.Estimation, record.RealDuration, nps, record.Comment, record.Date,
	)
	if err != nil {
		return fmt.Errorf("%w: insertion feedback: %v", model.ErrStore, err)
	}

	return nil
}
