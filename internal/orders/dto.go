package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	"github.com/angelmondragon/coffeepos-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

// Actor is the staff member performing a write. It travels into the outbox
// envelope.
type Actor struct {
	StaffID string
	Role    enums.StaffRole
}

// LineInput is one priced line handed to the store. Names and price are copied
// by value into the order.
type LineInput struct {
	ItemName     string          `json:"item_name"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Details      *string         `json:"details,omitempty"`
}

// LineTotal is Price x Quantity.
func (l LineInput) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CommitOrderInput carries an assembled order. Total is optional; when set it
// must match the lines.
type CommitOrderInput struct {
	StaffID string
	Role    enums.StaffRole
	Lines   []LineInput
	Total   *decimal.Decimal
}

// CommitResult identifies a freshly written order.
type CommitResult struct {
	OrderID             uuid.UUID       `json:"order_id"`
	DailySequenceNumber int             `json:"daily_sequence_number"`
	OrderDate           types.Date      `json:"order_date"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
}

// AmendResult is returned after lines were merged into an open order.
type AmendResult struct {
	OrderID             uuid.UUID       `json:"order_id"`
	DailySequenceNumber int             `json:"daily_sequence_number"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Lines               []LineItemDTO   `json:"lines"`
}

// ReconcileResult reports the outcome of removing one line.
type ReconcileResult struct {
	OrderID      uuid.UUID       `json:"order_id"`
	OrderDeleted bool            `json:"order_deleted"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

type OrderDTO struct {
	ID                  uuid.UUID         `json:"id"`
	DailySequenceNumber int               `json:"daily_sequence_number"`
	OrderDate           types.Date        `json:"order_date"`
	StaffID             string            `json:"staff_id"`
	TotalAmount         decimal.Decimal   `json:"total_amount"`
	Status              enums.OrderStatus `json:"status"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

type LineItemDTO struct {
	ID           uuid.UUID       `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	ItemName     string          `json:"item_name"`
	CategoryName string          `json:"category_name"`
	ChosenPrice  decimal.Decimal `json:"chosen_price"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"line_total"`
	Details      *string         `json:"details,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// OrderDetail is an order together with its lines.
type OrderDetail struct {
	Order OrderDTO      `json:"order"`
	Lines []LineItemDTO `json:"lines"`
}

func orderFromModel(o models.Order) OrderDTO {
	return OrderDTO{
		ID:                  o.ID,
		DailySequenceNumber: o.DailySequenceNumber,
		OrderDate:           o.OrderDate,
		StaffID:             o.StaffID,
		TotalAmount:         o.TotalAmount,
		Status:              o.Status,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

func lineFromModel(i models.OrderItem) LineItemDTO {
	return LineItemDTO{
		ID:           i.ID,
		OrderID:      i.OrderID,
		ItemName:     i.ItemName,
		CategoryName: i.CategoryName,
		ChosenPrice:  i.ChosenPrice,
		Quantity:     i.Quantity,
		LineTotal:    i.LineTotal(),
		Details:      i.Details,
		CreatedAt:    i.CreatedAt,
	}
}

func linesFromModels(items []models.OrderItem) []LineItemDTO {
	out := make([]LineItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, lineFromModel(item))
	}
	return out
}

func payloadLine(i models.OrderItem) payloads.OrderLine {
	return payloads.OrderLine{
		ItemName:     i.ItemName,
		CategoryName: i.CategoryName,
		Price:        i.ChosenPrice,
		Quantity:     i.Quantity,
		Details:      i.Details,
	}
}

func payloadLines(items []models.OrderItem) []payloads.OrderLine {
	out := make([]payloads.OrderLine, 0, len(items))
	for _, item := range items {
		out = append(out, payloadLine(item))
	}
	return out
}
