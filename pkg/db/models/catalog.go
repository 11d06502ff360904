package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups menu items, e.g. "Coffee" or "Pastry".
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	SortOrder int       `gorm:"column:sort_order;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Category) TableName() string { return "categories" }

// Item is something that can be ordered; its prices live in ItemPrice rows.
type Item struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID  uuid.UUID `gorm:"column:category_id;type:uuid;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	SortOrder   int       `gorm:"column:sort_order;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Item) TableName() string { return "items" }

// ItemPrice is one price option of an item. OptionName is nil for
// single-price items.
type ItemPrice struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ItemID     uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	OptionName *string         `gorm:"column:option_name"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	IsDefault  bool            `gorm:"column:is_default;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (ItemPrice) TableName() string { return "item_prices" }
