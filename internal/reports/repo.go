package reports

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/coffeepos-backend/internal/repo"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

// Repository runs the report aggregations. Both only look at completed
// orders and compare business days, never timestamps.
type Repository interface {
	SalesTotals(ctx context.Context, start, end types.Date) (int64, string, error)
	ItemQuantities(ctx context.Context, start, end types.Date, limit int) ([]ItemSales, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) SalesTotals(ctx context.Context, start, end types.Date) (int64, string, error) {
	var row struct {
		OrdersCount int64
		TotalAmount string
	}
	err := r.DB(ctx).Raw(`
SELECT COUNT(id) AS orders_count,
       CAST(COALESCE(SUM(total_amount), 0) AS TEXT) AS total_amount
FROM orders
WHERE status = ? AND order_date >= ? AND order_date <= ?`,
		enums.OrderStatusCompleted, start, end).Scan(&row).Error
	if err != nil {
		return 0, "", err
	}
	return row.OrdersCount, row.TotalAmount, nil
}

func (r *repository) ItemQuantities(ctx context.Context, start, end types.Date, limit int) ([]ItemSales, error) {
	q := r.DB(ctx).
		Table("order_items AS oi").
		Select("oi.item_name AS item_name, SUM(oi.quantity) AS quantity").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status = ?", enums.OrderStatusCompleted).
		Where("o.order_date >= ? AND o.order_date <= ?", start, end).
		Group("oi.item_name").
		Order("quantity DESC").
		Order("oi.item_name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []ItemSales
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
