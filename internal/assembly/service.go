// Package assembly accumulates an order line by line before it is written to
// the order store.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/coffeepos-backend/internal/catalog"
	"github.com/angelmondragon/coffeepos-backend/internal/orders"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
)

const maxLineQuantity = orders.MaxLineQuantity

// OrderStore is the part of the order service a session commits into.
type OrderStore interface {
	CommitOrder(ctx context.Context, input orders.CommitOrderInput) (*orders.CommitResult, error)
	AddItemsToExistingOrder(ctx context.Context, orderID uuid.UUID, lines []orders.LineInput, actor orders.Actor) (*orders.AmendResult, error)
	OrderByID(ctx context.Context, orderID uuid.UUID) (*orders.OrderDTO, error)
}

// CatalogResolver turns a price option into an orderable selection.
type CatalogResolver interface {
	ResolveSelection(ctx context.Context, priceID uuid.UUID) (*catalog.PriceSelection, error)
}

// StartInput chooses the commit target. A nil OrderID starts a new order.
type StartInput struct {
	OrderID *uuid.UUID
}

// CommitResult is returned by Commit for both targets.
type CommitResult struct {
	OrderID             uuid.UUID       `json:"order_id"`
	DailySequenceNumber int             `json:"daily_sequence_number"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Target              TargetKind      `json:"target"`
}

type Service interface {
	Start(ctx context.Context, staffID string, input StartInput) (*Session, error)
	AddLine(ctx context.Context, staffID string, line Line) (*Session, error)
	AddCatalogLine(ctx context.Context, staffID string, priceID uuid.UUID, quantity int, details *string) (*Session, error)
	RemoveLine(ctx context.Context, staffID string, index int) (*Session, error)
	View(ctx context.Context, staffID string) (*Session, error)
	Cancel(ctx context.Context, staffID string) error
	Commit(ctx context.Context, staffID string, role enums.StaffRole) (*CommitResult, error)
}

type service struct {
	store   Store
	orders  OrderStore
	catalog CatalogResolver
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(store Store, orderStore OrderStore, resolver CatalogResolver, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("assembly store required")
	}
	if orderStore == nil {
		return nil, fmt.Errorf("order store required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("catalog resolver required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: store, orders: orderStore, catalog: resolver, logg: logg, now: time.Now}, nil
}

// Start resets whatever the staff member had in progress.
func (s *service) Start(ctx context.Context, staffID string, input StartInput) (*Session, error) {
	staffID, err := requireStaff(staffID)
	if err != nil {
		return nil, err
	}

	target := Target{Kind: TargetNewOrder}
	if input.OrderID != nil {
		order, err := s.orders.OrderByID(ctx, *input.OrderID)
		if err != nil {
			return nil, err
		}
		if order.Status != enums.OrderStatusNew {
			return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "order #%d is %s and can no longer be edited", order.DailySequenceNumber, order.Status)
		}
		id := order.ID
		target = Target{Kind: TargetExistingOrder, OrderID: &id, DailySequenceNumber: order.DailySequenceNumber}
	}

	session := newSession(staffID, target, s.now().UTC())
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AddLine starts a new-order session when none is in progress.
func (s *service) AddLine(ctx context.Context, staffID string, line Line) (*Session, error) {
	staffID, err := requireStaff(staffID)
	if err != nil {
		return nil, err
	}
	line, err = normalizeLine(line)
	if err != nil {
		return nil, err
	}

	session, err := s.loadOrStart(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if err := session.AddLine(line); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) AddCatalogLine(ctx context.Context, staffID string, priceID uuid.UUID, quantity int, details *string) (*Session, error) {
	if priceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price id required")
	}
	selection, err := s.catalog.ResolveSelection(ctx, priceID)
	if err != nil {
		return nil, err
	}
	return s.AddLine(ctx, staffID, Line{
		Name:     selection.ItemName,
		Category: selection.CategoryName,
		Price:    selection.Price,
		Quantity: quantity,
		Details:  details,
	})
}

func (s *service) RemoveLine(ctx context.Context, staffID string, index int) (*Session, error) {
	session, err := s.load(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if err := session.RemoveLine(index); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) View(ctx context.Context, staffID string) (*Session, error) {
	return s.load(ctx, staffID)
}

func (s *service) Cancel(ctx context.Context, staffID string) error {
	staffID, err := requireStaff(staffID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, staffID); err != nil {
		return pkgerrors.Store(err, "cancel assembly session")
	}
	return nil
}

// Commit writes the accumulated lines to the target and clears the session. A
// failed commit leaves the session in place so it can be retried.
func (s *service) Commit(ctx context.Context, staffID string, role enums.StaffRole) (*CommitResult, error) {
	session, err := s.load(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if session.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to commit, add at least one line")
	}

	lines := make([]orders.LineInput, 0, len(session.Lines))
	for _, line := range session.Lines {
		lines = append(lines, orders.LineInput{
			ItemName:     line.Name,
			CategoryName: line.Category,
			Price:        line.Price,
			Quantity:     line.Quantity,
			Details:      line.Details,
		})
	}

	var result CommitResult
	switch session.Target.Kind {
	case TargetExistingOrder:
		if session.Target.OrderID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "existing order target without order id")
		}
		amended, err := s.orders.AddItemsToExistingOrder(ctx, *session.Target.OrderID, lines, orders.Actor{StaffID: session.StaffID, Role: role})
		if err != nil {
			return nil, err
		}
		result = CommitResult{
			OrderID:             amended.OrderID,
			DailySequenceNumber: session.Target.DailySequenceNumber,
			TotalAmount:         amended.TotalAmount,
			Target:              TargetExistingOrder,
		}
	default:
		total := session.Total
		created, err := s.orders.CommitOrder(ctx, orders.CommitOrderInput{
			StaffID: session.StaffID,
			Role:    role,
			Lines:   lines,
			Total:   &total,
		})
		if err != nil {
			return nil, err
		}
		result = CommitResult{
			OrderID:             created.OrderID,
			DailySequenceNumber: created.DailySequenceNumber,
			TotalAmount:         created.TotalAmount,
			Target:              TargetNewOrder,
		}
	}

	if err := s.store.Delete(ctx, session.StaffID); err != nil {
		// The order is written; a stale session only costs a manual cancel.
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"staff_id": session.StaffID,
			"order_id": result.OrderID.String(),
			"error":    err.Error(),
		}), "assembly session not cleared after commit")
	}
	return &result, nil
}

func (s *service) load(ctx context.Context, staffID string) (*Session, error) {
	staffID, err := requireStaff(staffID)
	if err != nil {
		return nil, err
	}
	session, err := s.store.Load(ctx, staffID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order in progress")
		}
		return nil, pkgerrors.Store(err, "load assembly session")
	}
	return session, nil
}

func (s *service) loadOrStart(ctx context.Context, staffID string) (*Session, error) {
	session, err := s.store.Load(ctx, staffID)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, ErrNoSession) {
		return newSession(staffID, Target{Kind: TargetNewOrder}, s.now().UTC()), nil
	}
	return nil, pkgerrors.Store(err, "load assembly session")
}

func (s *service) save(ctx context.Context, session *Session) error {
	if err := s.store.Save(ctx, session); err != nil {
		return pkgerrors.Store(err, "save assembly session")
	}
	return nil
}

func requireStaff(staffID string) (string, error) {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "staff identity missing")
	}
	return staffID, nil
}

func normalizeLine(line Line) (Line, error) {
	normalized, err := orders.NormalizeLine(orders.LineInput{
		ItemName:     line.Name,
		CategoryName: line.Category,
		Price:        line.Price,
		Quantity:     line.Quantity,
		Details:      line.Details,
	})
	if err != nil {
		return line, err
	}
	return Line{
		Name:     normalized.ItemName,
		Category: normalized.CategoryName,
		Price:    normalized.Price,
		Quantity: normalized.Quantity,
		Details:  normalized.Details,
	}, nil
}
