package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

// OrderLine mirrors one persisted order item.
type OrderLine struct {
	ItemName     string          `json:"item_name"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Details      *string         `json:"details,omitempty"`
}

// OrderCreatedEvent is emitted when an assembled order is committed.
type OrderCreatedEvent struct {
	OrderID             uuid.UUID         `json:"order_id"`
	DailySequenceNumber int               `json:"daily_sequence_number"`
	OrderDate           types.Date        `json:"order_date"`
	StaffID             string            `json:"staff_id"`
	TotalAmount         decimal.Decimal   `json:"total_amount"`
	Status              enums.OrderStatus `json:"status"`
	Lines               []OrderLine       `json:"lines"`
}

// OrderAmendedEvent covers lines appended to, or removed from, an open order.
type OrderAmendedEvent struct {
	OrderID             uuid.UUID       `json:"order_id"`
	DailySequenceNumber int             `json:"daily_sequence_number"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	AddedLines          []OrderLine     `json:"added_lines,omitempty"`
	RemovedLines        []OrderLine     `json:"removed_lines,omitempty"`
}

// OrderCompletedEvent is emitted when an order leaves the working queue.
type OrderCompletedEvent struct {
	OrderID             uuid.UUID       `json:"order_id"`
	DailySequenceNumber int             `json:"daily_sequence_number"`
	OrderDate           types.Date      `json:"order_date"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
}

// OrderDeletedEvent is emitted when an order and its lines are removed.
type OrderDeletedEvent struct {
	OrderID             uuid.UUID  `json:"order_id"`
	DailySequenceNumber int        `json:"daily_sequence_number"`
	OrderDate           types.Date `json:"order_date"`
	Reason              string     `json:"reason"`
}

// ItemSales is one row of the sold-items breakdown.
type ItemSales struct {
	ItemName string `json:"item_name"`
	Quantity int64  `json:"quantity"`
}

// DailySalesSummaryEvent reports one closed business day.
type DailySalesSummaryEvent struct {
	Date         types.Date      `json:"date"`
	OrdersCount  int64           `json:"orders_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	AverageCheck decimal.Decimal `json:"average_check"`
	TopItems     []ItemSales     `json:"top_items"`
}
