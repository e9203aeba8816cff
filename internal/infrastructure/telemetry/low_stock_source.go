package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLowStockSource counts low-stock products straight from the products table
type GormLowStockSource struct {
	db *gorm.DB
}

// NewGormLowStockSource creates a GormLowStockSource
func NewGormLowStockSource(db *gorm.DB) *GormLowStockSource {
	return &GormLowStockSource{db: db}
}

// LowStockCounts groups active products at or below minimum stock by tenant.
// Tenants without such products are absent from the map.
func (s *GormLowStockSource) LowStockCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []struct {
		TenantID uuid.UUID
		Count    int64
	}
	if err := s.db.WithContext(ctx).
		Table("products").
		Select("tenant_id, COUNT(*) AS count").
		Where("is_active = ? AND stock_qty <= min_stock", true).
		Group("tenant_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.TenantID] = row.Count
	}
	return counts, nil
}
