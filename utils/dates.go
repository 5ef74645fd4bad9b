package utils

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

const (
	defaultRangeDays = 30
	// MaxRangeDays bounds the day-by-day revenue series.
	MaxRangeDays = 366
)

// ParseRange turns optional from/to query values into a half-open [from, to) window.
// A bare date for "to" includes that whole day.
func ParseRange(fromStr, toStr string, now time.Time) (time.Time, time.Time, error) {
	to := now
	if toStr != "" {
		parsed, err := dateparse.ParseIn(toStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, BadRequest("date de fin invalide")
		}
		to = parsed
		if to.Equal(StartOfDay(to)) {
			to = to.AddDate(0, 0, 1)
		}
	}

	from := StartOfDay(to.AddDate(0, 0, -defaultRangeDays))
	if fromStr != "" {
		parsed, err := dateparse.ParseIn(fromStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, BadRequest("date de début invalide")
		}
		from = parsed
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, BadRequest("la date de début doit précéder la date de fin")
	}
	if to.Sub(from) > MaxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, BadRequest(fmt.Sprintf("la période ne peut pas dépasser %d jours", MaxRangeDays))
	}
	return from, to, nil
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
