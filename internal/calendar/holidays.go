package calendar

import "time"

// FrenchHolidays retourne l'ensemble des jours fériés français d'une année :
// les fêtes fixes plus les fêtes mobiles dérivées de Pâques.
func FrenchHolidays(year int) HolidaySet {
	set := make(HolidaySet)

	fixed := []struct {
		month time.Month
		day   int
	}{
		{time.January, 1},   // Jour de l'an
		{time.May, 1},       // Fête du Travail
		{time.May, 8},       // Victoire 1945
		{time.July, 14},     // Fête nationale
		{time.August, 15},   // Assomption
		{time.November, 1},  // Toussaint
		{time.November, 11}, // Armistice 1918
		{time.December, 25}, // Noël
	}
	for _, f := range fixed {
		set[DateKey{Year: year, Month: f.month, Day: f.day}] = true
	}

	easter := easterSunday(year)
	for _, offset := range []int{1, 39, 50} { // Lundi de Pâques, Ascension, Lundi de Pentecôte
		d := easter.AddDate(0, 0, offset)
		set[KeyOf(d)] = true
	}

	return set
}

// FrenchHolidaysSpan retourne les jours fériés couvrant plusieurs années
// consécutives, pour les livraisons qui franchissent le 31 décembre.
func FrenchHolidaysSpan(firstYear, lastYear int) HolidaySet {
	set := make(HolidaySet)
	for y := firstYear; y <= lastYear; y++ {
		for k := range FrenchHolidays(y) {
			set[k] = true
		}
	}
	return set
}

// easterSunday calcule le dimanche de Pâques par l'algorithme de congruences
// de Meeus (calendrier grégorien).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
