package reports

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

// Period names a preset range relative to the current business day.
type Period string

const (
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
)

// DateRange is an inclusive range of business days.
type DateRange struct {
	Start types.Date `json:"start"`
	End   types.Date `json:"end"`
}

// SingleDay reports whether the range covers exactly one day.
func (r DateRange) SingleDay() bool {
	return r.Start == r.End
}

type SalesSummary struct {
	Range        DateRange       `json:"range"`
	OrdersCount  int64           `json:"orders_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	AverageCheck decimal.Decimal `json:"average_check"`
}

type ItemSales struct {
	ItemName string `json:"item_name"`
	Quantity int64  `json:"quantity"`
}

type ItemsBreakdown struct {
	Range DateRange   `json:"range"`
	Items []ItemSales `json:"items"`
}
