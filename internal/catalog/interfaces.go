package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
)

// Repository defines persistence operations for the menu tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCategory(ctx context.Context, category *models.Category) error
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error)
	CategoryNameExists(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	CountCategories(ctx context.Context) (int64, error)

	CreateItem(ctx context.Context, item *models.Item) error
	FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListItems(ctx context.Context, categoryID uuid.UUID, onlyActive bool) ([]models.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	DeleteItem(ctx context.Context, id uuid.UUID) (int64, error)
	ItemNameExists(ctx context.Context, categoryID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)

	CreatePrice(ctx context.Context, price *models.ItemPrice) error
	FindPrice(ctx context.Context, id uuid.UUID) (*models.ItemPrice, error)
	ListPrices(ctx context.Context, itemID uuid.UUID) ([]models.ItemPrice, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	DeletePrice(ctx context.Context, id uuid.UUID) (int64, error)
	ClearDefaultPrices(ctx context.Context, itemID uuid.UUID, exceptID uuid.UUID) error
	FindSelection(ctx context.Context, priceID uuid.UUID) (*SelectionRow, error)
}

// SelectionRow is the joined price/item/category read used when an order
// line is built from the catalog.
type SelectionRow struct {
	PriceID        uuid.UUID
	ItemID         uuid.UUID
	ItemName       string
	ItemActive     bool
	CategoryName   string
	CategoryActive bool
	OptionName     *string
	Price          decimal.Decimal
}
