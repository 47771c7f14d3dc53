package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-management-api/internal/constants"
)

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the UTC calendar day.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(constants.DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return StartOfDay(t.UTC()), nil
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateOnly formats t as a YYYY-MM-DD calendar day.
func DateOnly(t time.Time) string {
	return t.Format(constants.DateLayout)
}
