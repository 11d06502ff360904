package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

// Repository defines persistence operations for the orders and order_items
// tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	NextDailyNumber(ctx context.Context, date types.Date) (int, error)

	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error)

	CreateLineItems(ctx context.Context, items []models.OrderItem) error
	FindLineItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	FindLineItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	SetLineQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	DeleteLineItem(ctx context.Context, id uuid.UUID) (int64, error)
}
