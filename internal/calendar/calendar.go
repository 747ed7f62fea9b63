// Package calendar parses the ledger date formats.
package calendar

import (
	"strings"
	"time"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
)

// ISODate is the canonical storage and wire layout.
const ISODate = "2006-01-02"

var layouts = []string{
	ISODate,
	"02.01.2006",
	"2.1.2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// ParseDate accepts YYYY-MM-DD or DD.MM.YYYY (day and month may drop the
// leading zero) and returns the date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidDate, "date is required")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Truncate(t), nil
		}
	}
	return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidDate, "unrecognized date "+s+", expected YYYY-MM-DD or DD.MM.YYYY")
}

// Truncate drops the time of day, keeping the calendar date of t.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(ISODate)
}

// ValidMonth reports whether m is a calendar month number.
func ValidMonth(m int) bool {
	return m >= 1 && m <= 12
}
