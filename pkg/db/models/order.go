package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

// Order is a committed order. DailySequenceNumber is unique per OrderDate.
type Order struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	DailySequenceNumber int               `gorm:"column:daily_sequence_number;not null"`
	OrderDate           types.Date        `gorm:"column:order_date;type:date;not null"`
	StaffID             string            `gorm:"column:staff_id;not null"`
	TotalAmount         decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status              enums.OrderStatus `gorm:"column:status;not null"`
	CreatedAt           time.Time         `gorm:"column:created_at"`
	UpdatedAt           time.Time         `gorm:"column:updated_at"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots the item name, category and price at order time.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ItemName     string          `gorm:"column:item_name;not null"`
	CategoryName string          `gorm:"column:category_name;not null"`
	ChosenPrice  decimal.Decimal `gorm:"column:chosen_price;type:numeric(12,2);not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	Details      *string         `gorm:"column:details"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (OrderItem) TableName() string { return "order_items" }

// LineTotal is ChosenPrice x Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.ChosenPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
