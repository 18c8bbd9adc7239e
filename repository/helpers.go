package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupCount is one row of a GROUP BY count.
type GroupCount struct {
	Key   string `gorm:"column:group_key"`
	Count int64  `gorm:"column:group_count"`
}

func findByID[T any](db *gorm.DB, id uuid.UUID, preloads ...string) (*T, error) {
	var out T
	q := db
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func countWhere[T any](db *gorm.DB, query string, args ...interface{}) (int64, error) {
	var count int64
	var model T
	q := db.Model(&model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func existsWhere[T any](db *gorm.DB, excludeID uuid.UUID, query string, args ...interface{}) (bool, error) {
	var model T
	q := db.Model(&model).Where(query, args...)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func countGroupedBy[T any](db *gorm.DB, column string, query string, args ...interface{}) (map[string]int64, error) {
	var model T
	var rows []GroupCount
	q := db.Model(&model).Select(column + " AS group_key, COUNT(*) AS group_count")
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}

// searchClause matches search as a case-insensitive substring of any column.
func searchClause(db *gorm.DB, search string, columns ...string) *gorm.DB {
	if strings.TrimSpace(search) == "" {
		return db
	}
	pattern := likePattern(search)
	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return db.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?.
func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}
