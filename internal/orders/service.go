package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/coffeepos-backend/pkg/db"
	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
	"github.com/angelmondragon/coffeepos-backend/pkg/metrics"
	"github.com/angelmondragon/coffeepos-backend/pkg/outbox"
	"github.com/angelmondragon/coffeepos-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

const (
	MaxLineQuantity = 99
	maxLinesPerCall = 100
	maxNameLen      = 120
	maxDetailsLen   = 500

	reasonDeletedByStaff  = "deleted_by_staff"
	reasonLastLineRemoved = "last_line_removed"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the order lifecycle: commit with a daily number, amendments,
// status changes and deletion.
type Service interface {
	CommitOrder(ctx context.Context, input CommitOrderInput) (*CommitResult, error)
	AddItemsToExistingOrder(ctx context.Context, orderID uuid.UUID, lines []LineInput, actor Actor) (*AmendResult, error)
	DeleteLineItem(ctx context.Context, lineID uuid.UUID) (*LineItemDTO, error)
	RemoveLineItemAndReconcile(ctx context.Context, orderID, lineID uuid.UUID, actor Actor) (*ReconcileResult, error)
	RecomputeTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, actor Actor) (*OrderDTO, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID, actor Actor) error

	OrdersByStatus(ctx context.Context, status enums.OrderStatus) ([]OrderDTO, error)
	OrderByID(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	LineItems(ctx context.Context, orderID uuid.UUID) ([]LineItemDTO, error)
	OrderDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outbox.Emitter
	metrics *metrics.OrderMetrics
	loc     *time.Location
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the order service. loc decides which calendar day an
// order belongs to; nil means UTC.
func NewService(repo Repository, tx txRunner, emitter outbox.Emitter, m *metrics.OrderMetrics, loc *time.Location, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  emitter,
		metrics: m,
		loc:     loc,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) CommitOrder(ctx context.Context, input CommitOrderInput) (*CommitResult, error) {
	staffID := strings.TrimSpace(input.StaffID)
	if staffID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	lines, err := normalizeLines(input.Lines)
	if err != nil {
		return nil, err
	}
	total := sumLines(lines)
	if input.Total != nil && !input.Total.Equal(total) {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "total %s does not match line items %s", input.Total.StringFixed(2), total.StringFixed(2)).
			WithDetails(map[string]any{"expected_total": total.StringFixed(2)})
	}

	now := s.now().UTC()
	order := models.Order{
		ID:          uuid.New(),
		OrderDate:   types.DateOf(now, s.loc),
		StaffID:     staffID,
		TotalAmount: total,
		Status:      enums.OrderStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	items := buildLineItems(order.ID, lines, now)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, err := repo.NextDailyNumber(ctx, order.OrderDate)
		if err != nil {
			return err
		}
		order.DailySequenceNumber = number

		if err := repo.CreateOrder(ctx, &order); err != nil {
			return err
		}
		if err := repo.CreateLineItems(ctx, items); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(Actor{StaffID: staffID, Role: input.Role}),
			OccurredAt:    now,
			Data: payloads.OrderCreatedEvent{
				OrderID:             order.ID,
				DailySequenceNumber: order.DailySequenceNumber,
				OrderDate:           order.OrderDate,
				StaffID:             staffID,
				TotalAmount:         total,
				Status:              order.Status,
				Lines:               payloadLines(items),
			},
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			s.metrics.IncSequenceConflict()
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "daily order number already taken, please retry")
		}
		return nil, s.storeErr(ctx, err, "commit order")
	}

	s.metrics.ObserveCommit(total, len(items))
	logCtx := s.logg.WithOrderID(s.logg.WithStaffID(ctx, staffID), order.ID.String())
	s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
		"daily_sequence_number": order.DailySequenceNumber,
		"order_date":            order.OrderDate.String(),
		"total_amount":          total.StringFixed(2),
		"lines":                 len(items),
	}), "order committed")

	return &CommitResult{
		OrderID:             order.ID,
		DailySequenceNumber: order.DailySequenceNumber,
		OrderDate:           order.OrderDate,
		TotalAmount:         total,
	}, nil
}

func (s *service) AddItemsToExistingOrder(ctx context.Context, orderID uuid.UUID, lines []LineInput, actor Actor) (*AmendResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	incoming, err := normalizeLines(lines)
	if err != nil {
		return nil, err
	}

	var result AmendResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.openOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		current, err := repo.FindLineItems(ctx, order.ID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		merged, created, touched, err := mergeLines(order.ID, current, incoming, now)
		if err != nil {
			return err
		}
		for id, qty := range touched {
			if err := repo.SetLineQuantity(ctx, id, qty); err != nil {
				return err
			}
		}
		if err := repo.CreateLineItems(ctx, created); err != nil {
			return err
		}

		total := sumItems(merged)
		if _, err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"total_amount": total,
			"updated_at":   now,
		}); err != nil {
			return err
		}

		added := make([]payloads.OrderLine, 0, len(incoming))
		for _, line := range incoming {
			added = append(added, payloads.OrderLine{
				ItemName:     line.ItemName,
				CategoryName: line.CategoryName,
				Price:        line.Price,
				Quantity:     line.Quantity,
				Details:      line.Details,
			})
		}

		result = AmendResult{
			OrderID:             order.ID,
			DailySequenceNumber: order.DailySequenceNumber,
			TotalAmount:         total,
			Lines:               linesFromModels(merged),
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderAmended,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			OccurredAt:    now,
			Data: payloads.OrderAmendedEvent{
				OrderID:             order.ID,
				DailySequenceNumber: order.DailySequenceNumber,
				TotalAmount:         total,
				AddedLines:          added,
			},
		})
	})
	if err != nil {
		return nil, s.storeErr(ctx, err, "add items to order")
	}

	s.metrics.IncEvent("amended")
	return &result, nil
}

// DeleteLineItem removes a single line and nothing else. The caller owns the
// follow-up: recompute the total, or delete the order when it was the last
// line. RemoveLineItemAndReconcile does both in one step.
func (s *service) DeleteLineItem(ctx context.Context, lineID uuid.UUID) (*LineItemDTO, error) {
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item id required")
	}

	var removed models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindLineItem(ctx, lineID)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
			}
			return err
		}
		if _, err := repo.DeleteLineItem(ctx, line.ID); err != nil {
			return err
		}
		removed = *line
		return nil
	})
	if err != nil {
		return nil, s.storeErr(ctx, err, "delete line item")
	}

	dto := lineFromModel(removed)
	return &dto, nil
}

func (s *service) RemoveLineItemAndReconcile(ctx context.Context, orderID, lineID uuid.UUID, actor Actor) (*ReconcileResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item id required")
	}

	result := ReconcileResult{OrderID: orderID}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.openOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		line, err := repo.FindLineItem(ctx, lineID)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
			}
			return err
		}
		if line.OrderID != order.ID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		if _, err := repo.DeleteLineItem(ctx, line.ID); err != nil {
			return err
		}

		remaining, err := repo.FindLineItems(ctx, order.ID)
		if err != nil {
			return err
		}
		now := s.now().UTC()

		if len(remaining) == 0 {
			if _, err := repo.DeleteOrder(ctx, order.ID); err != nil {
				return err
			}
			result.OrderDeleted = true
			result.TotalAmount = decimal.Zero
			return s.emitDeleted(ctx, tx, *order, reasonLastLineRemoved, actor, now)
		}

		total := sumItems(remaining)
		if _, err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"total_amount": total,
			"updated_at":   now,
		}); err != nil {
			return err
		}
		result.TotalAmount = total
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderAmended,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			OccurredAt:    now,
			Data: payloads.OrderAmendedEvent{
				OrderID:             order.ID,
				DailySequenceNumber: order.DailySequenceNumber,
				TotalAmount:         total,
				RemovedLines:        []payloads.OrderLine{payloadLine(*line)},
			},
		})
	})
	if err != nil {
		return nil, s.storeErr(ctx, err, "remove line item")
	}

	if result.OrderDeleted {
		s.metrics.IncEvent("deleted")
		s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "last line removed, order deleted")
	} else {
		s.metrics.IncEvent("amended")
	}
	return &result, nil
}

// RecomputeTotal sets total_amount to the sum of the current lines, zero when
// none remain.
func (s *service) RecomputeTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	if orderID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	total := decimal.Zero
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		items, err := repo.FindLineItems(ctx, order.ID)
		if err != nil {
			return err
		}
		total = sumItems(items)
		_, err = repo.UpdateOrder(ctx, order.ID, map[string]any{
			"total_amount": total,
			"updated_at":   s.now().UTC(),
		})
		return err
	})
	if err != nil {
		return decimal.Zero, s.storeErr(ctx, err, "recompute order total")
	}
	return total, nil
}

func (s *service) SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, actor Actor) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", status)
	}

	var updated models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		if !order.Status.CanTransitionTo(status) {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order cannot move from %s to %s", order.Status, status).
				WithDetails(map[string]any{"current_status": order.Status})
		}

		now := s.now().UTC()
		if _, err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"status":     status,
			"updated_at": now,
		}); err != nil {
			return err
		}
		order.Status = status
		order.UpdatedAt = now
		updated = *order

		if status != enums.OrderStatusCompleted {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCompleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			OccurredAt:    now,
			Data: payloads.OrderCompletedEvent{
				OrderID:             order.ID,
				DailySequenceNumber: order.DailySequenceNumber,
				OrderDate:           order.OrderDate,
				TotalAmount:         order.TotalAmount,
			},
		})
	})
	if err != nil {
		return nil, s.storeErr(ctx, err, "update order status")
	}

	s.metrics.IncEvent(string(status))
	s.logg.Info(s.logg.WithFields(s.logg.WithOrderID(ctx, orderID.String()), map[string]any{
		"status": status,
	}), "order status changed")
	dto := orderFromModel(updated)
	return &dto, nil
}

// DeleteOrder removes the order; its lines go with it through the foreign key
// cascade.
func (s *service) DeleteOrder(ctx context.Context, orderID uuid.UUID, actor Actor) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		if _, err := repo.DeleteOrder(ctx, order.ID); err != nil {
			return err
		}
		return s.emitDeleted(ctx, tx, *order, reasonDeletedByStaff, actor, s.now().UTC())
	})
	if err != nil {
		return s.storeErr(ctx, err, "delete order")
	}

	s.metrics.IncEvent("deleted")
	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order deleted")
	return nil
}

func (s *service) OrdersByStatus(ctx context.Context, status enums.OrderStatus) ([]OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", status)
	}
	rows, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, s.storeErr(ctx, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, orderFromModel(row))
	}
	return out, nil
}

func (s *service) OrderByID(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, s.storeErr(ctx, err, "load order")
	}
	dto := orderFromModel(*order)
	return &dto, nil
}

func (s *service) LineItems(ctx context.Context, orderID uuid.UUID) ([]LineItemDTO, error) {
	items, err := s.repo.FindLineItems(ctx, orderID)
	if err != nil {
		return nil, s.storeErr(ctx, err, "list line items")
	}
	return linesFromModels(items), nil
}

func (s *service) OrderDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := s.LineItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *order, Lines: lines}, nil
}

// openOrder loads and locks an order that may still be edited.
func (s *service) openOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrderForUpdate(ctx, orderID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	if order.Status != enums.OrderStatusNew {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is %s and can no longer be edited", order.Status).
			WithDetails(map[string]any{"current_status": order.Status})
	}
	return order, nil
}

func (s *service) emitDeleted(ctx context.Context, tx *gorm.DB, order models.Order, reason string, actor Actor, at time.Time) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderDeleted,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef(actor),
		OccurredAt:    at,
		Data: payloads.OrderDeletedEvent{
			OrderID:             order.ID,
			DailySequenceNumber: order.DailySequenceNumber,
			OrderDate:           order.OrderDate,
			Reason:              reason,
		},
	})
}

// storeErr keeps raw driver errors away from callers. Typed errors pass
// through untouched.
func (s *service) storeErr(ctx context.Context, err error, op string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if isNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
	}
	s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), op+" failed")
	return pkgerrors.Store(err, op)
}

func actorRef(actor Actor) *outbox.ActorRef {
	if actor.StaffID == "" {
		return nil
	}
	return &outbox.ActorRef{StaffID: actor.StaffID, Role: actor.Role}
}

func normalizeLines(lines []LineInput) ([]LineInput, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item is required")
	}
	if len(lines) > maxLinesPerCall {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d line items per call", maxLinesPerCall)
	}
	out := make([]LineInput, 0, len(lines))
	for i, line := range lines {
		normalized, err := normalizeLine(line)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return nil, typed.WithDetails(map[string]any{"line": i})
			}
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}

// NormalizeLine validates a single line and trims its text fields.
func NormalizeLine(line LineInput) (LineInput, error) {
	return normalizeLine(line)
}

func normalizeLine(line LineInput) (LineInput, error) {
	line.ItemName = strings.TrimSpace(line.ItemName)
	line.CategoryName = strings.TrimSpace(line.CategoryName)
	if line.ItemName == "" {
		return line, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if line.CategoryName == "" {
		return line, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if len([]rune(line.ItemName)) > maxNameLen || len([]rune(line.CategoryName)) > maxNameLen {
		return line, pkgerrors.Newf(pkgerrors.CodeValidation, "names must be at most %d characters", maxNameLen)
	}
	if !line.Price.IsPositive() {
		return line, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	if !line.Price.Equal(line.Price.Round(2)) {
		return line, pkgerrors.New(pkgerrors.CodeValidation, "price supports at most two decimal places")
	}
	if line.Quantity < 1 || line.Quantity > MaxLineQuantity {
		return line, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between 1 and %d", MaxLineQuantity)
	}
	if line.Details != nil {
		details := strings.TrimSpace(*line.Details)
		switch {
		case details == "":
			line.Details = nil
		case len([]rune(details)) > maxDetailsLen:
			return line, pkgerrors.Newf(pkgerrors.CodeValidation, "details must be at most %d characters", maxDetailsLen)
		default:
			line.Details = &details
		}
	}
	return line, nil
}

func buildLineItems(orderID uuid.UUID, lines []LineInput, now time.Time) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ID:           uuid.New(),
			OrderID:      orderID,
			ItemName:     line.ItemName,
			CategoryName: line.CategoryName,
			ChosenPrice:  line.Price,
			Quantity:     line.Quantity,
			Details:      line.Details,
			CreatedAt:    now,
		})
	}
	return items
}

// mergeLines folds incoming lines into current ones. A line with the same item
// name and price as an existing one bumps its quantity; anything else becomes
// a new row. It returns the resulting set, the rows to insert and the new
// quantity of every existing row that changed. A merged quantity above
// MaxLineQuantity is a validation error.
func mergeLines(orderID uuid.UUID, current []models.OrderItem, incoming []LineInput, now time.Time) ([]models.OrderItem, []models.OrderItem, map[uuid.UUID]int, error) {
	merged := make([]models.OrderItem, len(current), len(current)+len(incoming))
	copy(merged, current)
	existing := make(map[uuid.UUID]bool, len(current))
	for _, item := range current {
		existing[item.ID] = true
	}

	touched := map[uuid.UUID]int{}
	var created []models.OrderItem
	createdAt := map[uuid.UUID]int{}

	for _, line := range incoming {
		idx := -1
		for i := range merged {
			if merged[i].ItemName == line.ItemName && merged[i].ChosenPrice.Equal(line.Price) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			if merged[idx].Quantity+line.Quantity > MaxLineQuantity {
				return nil, nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation,
					"quantity of %s would exceed %d", line.ItemName, MaxLineQuantity)
			}
			merged[idx].Quantity += line.Quantity
			id := merged[idx].ID
			if existing[id] {
				touched[id] = merged[idx].Quantity
			} else {
				created[createdAt[id]].Quantity = merged[idx].Quantity
			}
			continue
		}

		item := buildLineItems(orderID, []LineInput{line}, now)[0]
		merged = append(merged, item)
		createdAt[item.ID] = len(created)
		created = append(created, item)
	}
	return merged, created, touched, nil
}

func sumLines(lines []LineInput) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total.Round(2)
}

func sumItems(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}
