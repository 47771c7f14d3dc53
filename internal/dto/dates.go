package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/utils"
)

// formatDate renders a date-only field, or nil when unset
func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := utils.DateOnly(t.UTC())
	return &s
}
