package option

import (
	"github.com/smallbiznis/clientbase/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a GORM statement.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryOptionFunc func(*gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

func ApplyPagination(page pagination.Pagination) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		page = page.Normalize()
		return db.Offset(page.Offset()).Limit(page.Limit)
	})
}

func ApplySortBy(column, direction string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if direction != "asc" {
			direction = "desc"
		}
		return db.Order(column + " " + direction)
	})
}
