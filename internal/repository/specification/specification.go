package specification

import "gorm.io/gorm"

// Specification narrows or orders a query. Repositories accept any number
// of them and apply them in order.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

func ApplyAll(db *gorm.DB, specs ...Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}
