package orders

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/coffeepos-backend/pkg/db"
	"github.com/angelmondragon/coffeepos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
	"github.com/angelmondragon/coffeepos-backend/pkg/metrics"
	"github.com/angelmondragon/coffeepos-backend/pkg/outbox"
	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

var barista = Actor{StaffID: "tg:1001", Role: enums.StaffRoleBarista}

type fixture struct {
	svc    *service
	client *db.Client
	clock  time.Time
}

func newFixture(t *testing.T, loc *time.Location) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	emitter := outbox.NewService(outbox.NewRepository(client.DB()), logger.Nop())
	svc, err := NewService(NewRepository(client.DB()), client, emitter, metrics.NewOrderMetrics(nil), loc, logger.Nop())
	require.NoError(t, err)

	f := &fixture{svc: svc.(*service), client: client, clock: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)}
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) tick(d time.Duration) { f.clock = f.clock.Add(d) }

func line(name, category, price string, qty int) LineInput {
	return LineInput{ItemName: name, CategoryName: category, Price: decimal.RequireFromString(price), Quantity: qty}
}

func commit(t *testing.T, f *fixture, lines ...LineInput) *CommitResult {
	t.Helper()
	res, err := f.svc.CommitOrder(context.Background(), CommitOrderInput{StaffID: barista.StaffID, Role: barista.Role, Lines: lines})
	require.NoError(t, err)
	return res
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "expected %s, got %s", want, got)
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, pkgerrors.IsCode(err, code), "expected %s, got %v", code, err)
}

func findLine(t *testing.T, lines []LineItemDTO, name, price string) LineItemDTO {
	t.Helper()
	for _, l := range lines {
		if l.ItemName == name && l.ChosenPrice.Equal(decimal.RequireFromString(price)) {
			return l
		}
	}
	t.Fatalf("line %s@%s not found", name, price)
	return LineItemDTO{}
}

func countEvents(t *testing.T, f *fixture, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.client.DB().Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&n).Error)
	return n
}

func TestCommitOrderComputesTotalAndDailyNumber(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first := commit(t, f, line("Americano", "Coffee", "120.0", 2), line("Croissant", "Pastry", "80.0", 1))
	requireDecimal(t, "320", first.TotalAmount)
	require.Equal(t, 1, first.DailySequenceNumber)
	require.Equal(t, "2026-10-19", first.OrderDate.String())

	f.tick(time.Minute)
	second := commit(t, f, line("Latte", "Coffee", "160", 1))
	require.Equal(t, first.DailySequenceNumber+1, second.DailySequenceNumber)

	detail, err := f.svc.OrderDetail(ctx, first.OrderID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusNew, detail.Order.Status)
	require.Equal(t, barista.StaffID, detail.Order.StaffID)
	requireDecimal(t, "320", detail.Order.TotalAmount)
	require.Len(t, detail.Lines, 2)
	requireDecimal(t, "240", findLine(t, detail.Lines, "Americano", "120").LineTotal)

	require.EqualValues(t, 2, countEvents(t, f, enums.EventOrderCreated))
}

func TestCommitOrderDailyNumberRestartsEachBusinessDay(t *testing.T) {
	bishkek := time.FixedZone("UTC+6", 6*60*60)
	f := newFixture(t, bishkek)

	f.clock = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	require.Equal(t, 1, commit(t, f, line("Tea", "Tea", "120", 1)).DailySequenceNumber)
	require.Equal(t, 2, commit(t, f, line("Tea", "Tea", "120", 1)).DailySequenceNumber)

	// 19:00 UTC is already the next day in the shop's zone.
	f.clock = time.Date(2026, 10, 19, 19, 0, 0, 0, time.UTC)
	next := commit(t, f, line("Tea", "Tea", "120", 1))
	require.Equal(t, 1, next.DailySequenceNumber)
	require.Equal(t, "2026-10-20", next.OrderDate.String())
}

func TestCommitOrderValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CommitOrder(ctx, CommitOrderInput{StaffID: "tg:1"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.CommitOrder(ctx, CommitOrderInput{StaffID: " ", Lines: []LineInput{line("Tea", "Tea", "120", 1)}})
	requireCode(t, err, pkgerrors.CodeValidation)

	for _, bad := range []LineInput{
		line("Tea", "Tea", "0", 1),
		line("Tea", "Tea", "-5", 1),
		line("Tea", "Tea", "1.005", 1),
		line("Tea", "Tea", "120", 0),
		line("Tea", "Tea", "120", MaxLineQuantity+1),
		line("  ", "Tea", "120", 1),
	} {
		_, err = f.svc.CommitOrder(ctx, CommitOrderInput{StaffID: "tg:1", Lines: []LineInput{bad}})
		requireCode(t, err, pkgerrors.CodeValidation)
	}

	wrong := decimal.NewFromInt(100)
	_, err = f.svc.CommitOrder(ctx, CommitOrderInput{StaffID: "tg:1", Lines: []LineInput{line("Tea", "Tea", "120", 1)}, Total: &wrong})
	requireCode(t, err, pkgerrors.CodeValidation)

	right := decimal.RequireFromString("240.00")
	res, err := f.svc.CommitOrder(ctx, CommitOrderInput{StaffID: "tg:1", Lines: []LineInput{line("Tea", "Tea", "120", 2)}, Total: &right})
	require.NoError(t, err)
	require.Equal(t, 1, res.DailySequenceNumber, "rejected commits must not consume numbers")
}

func TestConcurrentCommitsGetDistinctContiguousNumbers(t *testing.T) {
	f := newFixture(t, nil)
	const staff = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int
		errs    []error
	)
	for i := 0; i < staff; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.CommitOrder(context.Background(), CommitOrderInput{
				StaffID: uuid.NewString(),
				Lines:   []LineInput{line("Americano", "Coffee", "120", i+1)},
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, res.DailySequenceNumber)
		}(i)
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Ints(numbers)
	want := make([]int, staff)
	for i := range want {
		want[i] = i + 1
	}
	require.Equal(t, want, numbers)
}

func TestUniqueIndexRejectsDuplicateDailyNumber(t *testing.T) {
	f := newFixture(t, nil)
	first := commit(t, f, line("Tea", "Tea", "120", 1))

	dup := models.Order{
		ID:                  uuid.New(),
		DailySequenceNumber: first.DailySequenceNumber,
		OrderDate:           first.OrderDate,
		StaffID:             "tg:2",
		TotalAmount:         decimal.NewFromInt(1),
		Status:              enums.OrderStatusNew,
		CreatedAt:           f.clock,
		UpdatedAt:           f.clock,
	}
	err := f.client.DB().Create(&dup).Error
	require.True(t, db.IsUniqueViolation(err, ""), "got %v", err)
}

func TestAddItemsToExistingOrderMergesByNameAndPrice(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := commit(t, f, line("Americano", "Coffee", "120", 1), line("Croissant", "Pastry", "80", 1))

	res, err := f.svc.AddItemsToExistingOrder(ctx, order.OrderID, []LineInput{
		line("Americano", "Coffee", "120", 2),
		line("Americano", "Coffee", "140", 1),
		line("Latte", "Coffee", "160", 1),
		line("Latte", "Coffee", "160", 1),
	}, barista)
	require.NoError(t, err)
	require.Equal(t, order.DailySequenceNumber, res.DailySequenceNumber)
	// 120*3 + 80 + 140 + 160*2
	requireDecimal(t, "900", res.TotalAmount)

	lines, err := f.svc.LineItems(ctx, order.OrderID)
	require.NoError(t, err)
	require.Len(t, lines, 4)

	quantities := map[string]int{}
	for _, l := range lines {
		quantities[l.ItemName+"@"+l.ChosenPrice.String()] = l.Quantity
	}
	require.Equal(t, map[string]int{
		"Americano@120": 3,
		"Americano@140": 1,
		"Croissant@80":  1,
		"Latte@160":     2,
	}, quantities)

	stored, err := f.svc.OrderByID(ctx, order.OrderID)
	require.NoError(t, err)
	requireDecimal(t, "900", stored.TotalAmount)
	require.EqualValues(t, 1, countEvents(t, f, enums.EventOrderAmended))
}

func TestAddItemsCapsMergedQuantity(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := commit(t, f, line("Espresso", "Coffee", "100", 60))

	_, err := f.svc.AddItemsToExistingOrder(ctx, order.OrderID, []LineInput{line("Espresso", "Coffee", "100", 60)}, barista)
	requireCode(t, err, pkgerrors.CodeValidation)

	lines, err := f.svc.LineItems(ctx, order.OrderID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, 60, lines[0].Quantity)
	require.Zero(t, countEvents(t, f, enums.EventOrderAmended))

	_, err = f.svc.AddItemsToExistingOrder(ctx, order.OrderID, []LineInput{line("Espresso", "Coffee", "100", MaxLineQuantity-60)}, barista)
	require.NoError(t, err)
}

func TestAddItemsRequiresOpenOrder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := commit(t, f, line("Tea", "Tea", "120", 1))

	_, err := f.svc.SetStatus(ctx, order.OrderID, enums.OrderStatusCompleted, barista)
	require.NoError(t, err)

	_, err = f.svc.AddItemsToExistingOrder(ctx, order.OrderID, []LineInput{line("Tea", "Tea", "120", 1)}, barista)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	_, err = f.svc.AddItemsToExistingOrder(ctx, uuid.New(), []LineInput{line("Tea", "Tea", "120", 1)}, barista)
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.AddItemsToExistingOrder(ctx, order.OrderID, nil, barista)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestRemovingLastLineDeletesOrder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := commit(t, f, line("Raf", "Coffee", "240", 1))

	lines, err := f.svc.LineItems(ctx, order.OrderID)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	res, err := f.svc.RemoveLineItemAndReconcile(ctx, order.OrderID, lines[0].ID, barista)
	require.NoError(t, err)
	require.True(t, res.OrderDeleted)
	require.True(t, res.TotalAmount.IsZero())

	_, err = f.svc.OrderByID(ctx, order.OrderID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	var orphans int64
	require.NoError(t, f.client.DB().Model(&models.OrderItem{}).Where("order_id = ?", order.OrderID).Count(&orphans).Error)
	require.Zero(t, orphans)
	require.EqualValues(t, 1, countEvents(t, f, enums.EventOrderDeleted))
}

func TestRemovingOneOfSeveralLinesRecomputesTotal(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := commit(t, f, line("Americano", "Coffee", "120", 2), line("Croissant", "Pastry", "80", 1))

	lines, err := f.svc.LineItems(ctx, order.OrderID)
	require.NoError(t, err)

	croissant := findLine(t, lines, "Croissant", "80")
	res, err := f.svc.RemoveLineItemAndReconcile(ctx, order.OrderID, croissant.ID, barista)
	require.NoError(t, err)
	require.False(t, res.OrderDeleted)
	requireDecimal(t, "240", res.TotalAmount)

	stored, err := f.svc.OrderByID(ctx, order.OrderID)
	require.NoError(t, err)
	requireDecimal(t, "240", stored.TotalAmount)

	other := commit(t, f, line("Tea", "Tea", "120", 1))
	otherLines, err := f.svc.LineItems(ctx, other.OrderID)
	require.NoError(t, err)
	_, err = f.svc.RemoveLineItemAndReconcile(ctx, order.OrderID, otherLines[0].ID, barista)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteLineThenRecomputeKeepsTotalConsistent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := commit(t, f, line("Latte", "Coffee", "160", 1), line("Latte", "Coffee", "230", 2), line("Cinnabon", "Pastry", "140", 1))

	_, err := f.svc.AddItemsToExistingOrder(ctx, order.OrderID, []LineInput{line("Cinnabon", "Pastry", "140", 2)}, barista)
	require.NoError(t, err)

	lines, err := f.svc.LineItems(ctx, order.OrderID)
	require.NoError(t, err)
	latte := findLine(t, lines, "Latte", "160")
	removed, err := f.svc.DeleteLineItem(ctx, latte.ID)
	require.NoError(t, err)
	require.Equal(t, order.OrderID, removed.OrderID)

	total, err := f.svc.RecomputeTotal(ctx, order.OrderID)
	require.NoError(t, err)

	remaining, err := f.svc.LineItems(ctx, order.OrderID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, l := range remaining {
		sum = sum.Add(l.ChosenPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	require.True(t, sum.Equal(total))
	requireDecimal(t, "880", total)

	stored, err := f.svc.OrderByID(ctx, order.OrderID)
	require.NoError(t, err)
	require.True(t, stored.TotalAmount.Equal(total))

	_, err = f.svc.DeleteLineItem(ctx, latte.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestSetStatusOnlyCompletesNewOrders(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := commit(t, f, line("Tea", "Tea", "120", 1))

	_, err := f.svc.SetStatus(ctx, order.OrderID, enums.OrderStatusNew, barista)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	f.tick(5 * time.Minute)
	done, err := f.svc.SetStatus(ctx, order.OrderID, enums.OrderStatusCompleted, barista)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCompleted, done.Status)
	require.True(t, done.UpdatedAt.Equal(f.clock))

	_, err = f.svc.SetStatus(ctx, order.OrderID, enums.OrderStatusCompleted, barista)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	_, err = f.svc.SetStatus(ctx, order.OrderID, enums.OrderStatus("cancelled"), barista)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.SetStatus(ctx, uuid.New(), enums.OrderStatusCompleted, barista)
	requireCode(t, err, pkgerrors.CodeNotFound)

	require.EqualValues(t, 1, countEvents(t, f, enums.EventOrderCompleted))
}

func TestOrdersByStatusOldestFirst(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a := commit(t, f, line("Tea", "Tea", "120", 1))
	f.tick(time.Minute)
	b := commit(t, f, line("Tea", "Tea", "120", 1))
	f.tick(time.Minute)
	c := commit(t, f, line("Tea", "Tea", "120", 1))

	_, err := f.svc.SetStatus(ctx, b.OrderID, enums.OrderStatusCompleted, barista)
	require.NoError(t, err)

	open, err := f.svc.OrdersByStatus(ctx, enums.OrderStatusNew)
	require.NoError(t, err)
	require.Len(t, open, 2)
	require.Equal(t, a.OrderID, open[0].ID)
	require.Equal(t, c.OrderID, open[1].ID)

	completed, err := f.svc.OrdersByStatus(ctx, enums.OrderStatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)

	_, err = f.svc.OrdersByStatus(ctx, enums.OrderStatus("bogus"))
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteOrderCascadesLines(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := commit(t, f, line("Tea", "Tea", "120", 1), line("Sobora", "Pastry", "120", 1))

	require.NoError(t, f.svc.DeleteOrder(ctx, order.OrderID, Actor{StaffID: "tg:1", Role: enums.StaffRoleAdmin}))

	var lines int64
	require.NoError(t, f.client.DB().Model(&models.OrderItem{}).Where("order_id = ?", order.OrderID).Count(&lines).Error)
	require.Zero(t, lines)

	requireCode(t, f.svc.DeleteOrder(ctx, order.OrderID, barista), pkgerrors.CodeNotFound)
}

func TestMergeLinesFoldsIncomingDuplicates(t *testing.T) {
	orderID := uuid.New()
	now := time.Now()
	existing := buildLineItems(orderID, []LineInput{line("Raf", "Coffee", "240", 1)}, now)

	merged, created, touched, err := mergeLines(orderID, existing, []LineInput{
		line("Raf", "Coffee", "240", 1),
		line("Bumble", "Coffee", "220", 1),
		line("Bumble", "Coffee", "220", 2),
		line("raf", "Coffee", "240", 1),
	}, now)
	require.NoError(t, err)

	require.Len(t, merged, 3, "names match case-sensitively")
	require.Len(t, created, 2)
	require.Equal(t, 3, created[0].Quantity)
	require.Equal(t, map[uuid.UUID]int{existing[0].ID: 2}, touched)
	requireDecimal(t, "1380", sumItems(merged))
}

func TestOrderDateUsesTypesDate(t *testing.T) {
	f := newFixture(t, nil)
	res := commit(t, f, line("Tea", "Tea", "120", 1))

	var stored models.Order
	require.NoError(t, f.client.DB().Where("id = ?", res.OrderID).First(&stored).Error)
	require.Equal(t, types.Date{Year: 2026, Month: 10, Day: 19}, stored.OrderDate)
}
