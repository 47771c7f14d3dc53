package database

import "gorm.io/gorm"

// Paginate limits a query to one page. A non-positive page or size leaves the
// query unbounded.
func Paginate(page, size int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 || size <= 0 {
			return db
		}
		return db.Offset((page - 1) * size).Limit(size)
	}
}

// InProjects restricts a query to rows whose column holds one of the project UUIDs.
func InProjects(column string, projectUUIDs []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" IN ?", projectUUIDs)
	}
}
