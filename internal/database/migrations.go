package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds the lookup indexes the aggregation queries rely on (postgres only)
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Visibility set lookups
		{"project_members", "idx_project_members_lower_email", "LOWER(member_email)"},
		{"project_members", "idx_project_members_project_user", "project_uuid, user_id"},

		// Dashboard and calendar windows
		{"tasks", "idx_tasks_project_due_date", "project_uuid, due_date"},
		{"tasks", "idx_tasks_project_created_at", "project_uuid, created_at"},
		{"projects", "idx_projects_dates", "start_date, end_date"},

		{"users", "idx_users_lower_email", "LOWER(email)"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Scan(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
