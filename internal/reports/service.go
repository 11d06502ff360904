// Package reports aggregates completed orders over ranges of business days.
package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

type Service interface {
	SalesSummary(ctx context.Context, r DateRange) (*SalesSummary, error)
	SoldItemsBreakdown(ctx context.Context, r DateRange) (*ItemsBreakdown, error)
	TopItems(ctx context.Context, r DateRange, limit int) ([]ItemSales, error)
	ResolveRange(period, start, end string) (DateRange, error)
	Today() types.Date
}

type service struct {
	repo Repository
	loc  *time.Location
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, loc *time.Location, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, loc: loc, logg: logg, now: time.Now}, nil
}

// Today is the current business day.
func (s *service) Today() types.Date {
	return types.DateOf(s.now(), s.loc)
}

// ResolveRange accepts either a preset period or an explicit start/end pair
// of YYYY-MM-DD dates.
func (s *service) ResolveRange(period, start, end string) (DateRange, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period != "" {
		if start != "" || end != "" {
			return DateRange{}, pkgerrors.New(pkgerrors.CodeValidation, "use either period or start/end, not both")
		}
		today := s.Today()
		switch Period(period) {
		case PeriodToday:
			return DateRange{Start: today, End: today}, nil
		case PeriodYesterday:
			y := today.AddDays(-1)
			return DateRange{Start: y, End: y}, nil
		default:
			return DateRange{}, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown period %q", period)
		}
	}

	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return DateRange{}, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	from, err := types.ParseDate(start)
	if err != nil {
		return DateRange{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid start date, expected YYYY-MM-DD")
	}
	to, err := types.ParseDate(end)
	if err != nil {
		return DateRange{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid end date, expected YYYY-MM-DD")
	}
	r := DateRange{Start: from, End: to}
	return r, s.validate(r)
}

func (s *service) validate(r DateRange) error {
	if r.Start.IsZero() || r.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	if r.End.Before(r.Start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date cannot be before start date")
	}
	if r.Start.After(s.Today()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "start date cannot be in the future")
	}
	return nil
}

func (s *service) SalesSummary(ctx context.Context, r DateRange) (*SalesSummary, error) {
	if err := s.validate(r); err != nil {
		return nil, err
	}
	count, rawTotal, err := s.repo.SalesTotals(ctx, r.Start, r.End)
	if err != nil {
		return nil, s.storeErr(ctx, err, "load sales summary")
	}
	total, err := decimal.NewFromString(strings.TrimSpace(rawTotal))
	if err != nil {
		return nil, s.storeErr(ctx, err, "parse sales total")
	}

	summary := &SalesSummary{
		Range:        r,
		OrdersCount:  count,
		TotalAmount:  total.Round(2),
		AverageCheck: decimal.Zero,
	}
	if count > 0 {
		summary.AverageCheck = total.Div(decimal.NewFromInt(count)).Round(2)
	}
	return summary, nil
}

func (s *service) SoldItemsBreakdown(ctx context.Context, r DateRange) (*ItemsBreakdown, error) {
	items, err := s.TopItems(ctx, r, 0)
	if err != nil {
		return nil, err
	}
	return &ItemsBreakdown{Range: r, Items: items}, nil
}

// TopItems is the breakdown cut to the first limit rows; limit <= 0 keeps all.
func (s *service) TopItems(ctx context.Context, r DateRange, limit int) ([]ItemSales, error) {
	if err := s.validate(r); err != nil {
		return nil, err
	}
	items, err := s.repo.ItemQuantities(ctx, r.Start, r.End, limit)
	if err != nil {
		return nil, s.storeErr(ctx, err, "load sold items")
	}
	if items == nil {
		items = []ItemSales{}
	}
	return items, nil
}

func (s *service) storeErr(ctx context.Context, err error, op string) error {
	s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), op+" failed")
	return pkgerrors.Store(err, op)
}
