package specification

import (
	"strings"

	"gorm.io/gorm"
)

// ChatTitleSearch matches chats whose title contains Query, ignoring case.
// LOWER/LIKE keeps the query portable between postgres and sqlite.
type ChatTitleSearch struct {
	Query string
}

func (s ChatTitleSearch) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(strings.ToLower(s.Query)) + "%"
	return db.Where("LOWER(title) LIKE ? ESCAPE '\\'", pattern)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
