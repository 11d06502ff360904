package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/coffeepos-backend/internal/reports"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
	"github.com/angelmondragon/coffeepos-backend/pkg/outbox"
	"github.com/angelmondragon/coffeepos-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

const defaultSummaryTopItems = 5

// dailySummaryNamespace seeds the per-day aggregate id so every worker
// derives the same id for the same business day.
var dailySummaryNamespace = uuid.MustParse("4f1d6a52-8c1e-4f5e-9d3b-2a7c0e6b9f11")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type salesReader interface {
	SalesSummary(ctx context.Context, r reports.DateRange) (*reports.SalesSummary, error)
	TopItems(ctx context.Context, r reports.DateRange, limit int) ([]reports.ItemSales, error)
}

type summaryEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) (bool, error)
}

type DailySalesSummaryJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Reports  salesReader
	Outbox   summaryEmitter
	Location *time.Location
	TopItems int
}

func NewDailySalesSummaryJob(params DailySalesSummaryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Reports == nil {
		return nil, fmt.Errorf("reports service required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	top := params.TopItems
	if top <= 0 {
		top = defaultSummaryTopItems
	}
	return &dailySalesSummaryJob{
		logg:    params.Logger,
		db:      params.DB,
		reports: params.Reports,
		outbox:  params.Outbox,
		loc:     loc,
		top:     top,
		now:     time.Now,
	}, nil
}

type dailySalesSummaryJob struct {
	logg    *logger.Logger
	db      txRunner
	reports salesReader
	outbox  summaryEmitter
	loc     *time.Location
	top     int
	now     func() time.Time
}

func (j *dailySalesSummaryJob) Name() string { return "daily_sales_summary" }

// Run reports the previous business day. Runs after the first one on the
// same day find the event already queued and do nothing.
func (j *dailySalesSummaryJob) Run(ctx context.Context) error {
	day := types.DateOf(j.now(), j.loc).AddDays(-1)
	r := reports.DateRange{Start: day, End: day}

	summary, err := j.reports.SalesSummary(ctx, r)
	if err != nil {
		return fmt.Errorf("sales summary for %s: %w", day, err)
	}
	items, err := j.reports.TopItems(ctx, r, j.top)
	if err != nil {
		return fmt.Errorf("top items for %s: %w", day, err)
	}

	top := make([]payloads.ItemSales, 0, len(items))
	for _, item := range items {
		top = append(top, payloads.ItemSales{ItemName: item.ItemName, Quantity: item.Quantity})
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventDailySalesSummary,
		AggregateType: enums.AggregateSalesReport,
		AggregateID:   DailySummaryID(day),
		Data: payloads.DailySalesSummaryEvent{
			Date:         day,
			OrdersCount:  summary.OrdersCount,
			TotalAmount:  summary.TotalAmount,
			AverageCheck: summary.AverageCheck,
			TopItems:     top,
		},
	}

	var emitted bool
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		emitted, err = j.outbox.EmitIfNotExists(ctx, tx, event)
		return err
	})
	if err != nil {
		return fmt.Errorf("emit daily summary: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"date":         day.String(),
		"orders_count": summary.OrdersCount,
		"total_amount": summary.TotalAmount.String(),
		"emitted":      emitted,
	})
	j.logg.Info(logCtx, "daily sales summary processed")
	return nil
}

// DailySummaryID is the aggregate id of the summary event for day.
func DailySummaryID(day types.Date) uuid.UUID {
	return uuid.NewSHA1(dailySummaryNamespace, []byte(day.String()))
}
