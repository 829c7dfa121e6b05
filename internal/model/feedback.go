package model

// FeedbackRecord représente un retour utilisateur après livraison.
// Append-only : jamais modifié ni supprimé par le backend.
type FeedbackRecord struct {
	Feature      string  `json:"feature"`
	Estimation   float64 `json:"estimation"`    // estimation initiale, en jours
	RealDuration float64 `json:"real_duration"` // durée réelle constatée, en jours
	NPS          *int    `json:"nps,omitempty"` // note 0-10, optionnelle
	Comment      string  `json:"comment,omitempty"`
	Date         string  `json:"date"` // timestamp ISO 8601
}

// Qualifies indique si le record participe au calcul de biais :
// estimation et durée réelle doivent être strictement positives.
func (r FeedbackRecord) Qualifies() bool {
	return r.Estimation > 0 && r.RealDuration > 0
}
