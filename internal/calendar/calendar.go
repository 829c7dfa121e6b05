package calendar

import "time"

// DateKey est la clé de lookup d'un jour dans un ensemble de jours exclus
type DateKey struct {
	Year  int
	Month time.Month
	Day   int
}

// KeyOf retourne la clé d'exclusion d'une date
func KeyOf(t time.Time) DateKey {
	return DateKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// HolidaySet est un ensemble de jours fériés
type HolidaySet map[DateKey]bool

// Contains indique si la date est un jour férié de l'ensemble
func (s HolidaySet) Contains(t time.Time) bool {
	if s == nil {
		return false
	}
	return s[KeyOf(t)]
}

// ComputeDeliveryDate calcule la date de livraison à partir d'une date de
// démarrage et d'une durée en jours ouvrés.
//
// À partir du lendemain de startDate, on avance jour calendaire par jour
// calendaire ; un jour est décompté sauf s'il tombe un week-end (quand
// excludeWeekends est actif) ou s'il appartient à l'ensemble de jours fériés.
// Une durée fractionnaire est tronquée au jour entier.
//
// Sans durée ou sans date de démarrage, retourne le zéro de time.Time
// (pas de date de livraison).
func ComputeDeliveryDate(startDate time.Time, durationDays float64, excludeWeekends bool, holidays HolidaySet) time.Time {
	days := int(durationDays)
	if days <= 0 || startDate.IsZero() {
		return time.Time{}
	}

	current := startDate
	counted := 0
	for counted < days {
		current = current.AddDate(0, 0, 1)

		if excludeWeekends && isWeekend(current) {
			continue
		}
		if holidays.Contains(current) {
			continue
		}
		counted++
	}

	return current
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
