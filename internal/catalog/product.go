package catalog

import (
	"context"
	"time"
)

// Uncategorized is the category assigned to products the catalog does not
// know about.
const Uncategorized = "Uncategorized"

// Product is a catalog row. The dashboard core only reads it.
type Product struct {
	ID                string    `gorm:"column:id;primaryKey"`
	Name              string    `gorm:"column:name"`
	Category          string    `gorm:"column:category"`
	MinStockThreshold int64     `gorm:"column:min_stock_threshold"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

// TableName keeps GORM on the migrated table name.
func (Product) TableName() string {
	return "products"
}

// Lookup resolves product metadata for a set of IDs. Implementations return
// only the products they know about; missing IDs are simply absent from the
// result map.
type Lookup interface {
	Products(ctx context.Context, ids []string) (map[string]Product, error)
}
