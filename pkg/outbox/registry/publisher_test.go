package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/coffeepos-backend/pkg/config"
	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	"github.com/angelmondragon/coffeepos-backend/pkg/outbox"
	"github.com/angelmondragon/coffeepos-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders-topic", ReportsTopic: "reports-topic"})
	require.NoError(t, err)
	return reg
}

func mustEnvelope(t *testing.T, data any) types.JSONPayload {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	require.NoError(t, err)
	return types.JSONPayload(envelope)
}

func TestEventRegistryResolveOrderCreated(t *testing.T) {
	reg := newTestEventRegistry(t)
	orderID := uuid.New()

	resolved, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload: mustEnvelope(t, payloads.OrderCreatedEvent{
			OrderID:             orderID,
			DailySequenceNumber: 3,
			TotalAmount:         decimal.RequireFromString("215.00"),
		}),
	})
	require.NoError(t, err)
	require.Equal(t, "orders-topic", resolved.Descriptor.Topic)
	require.NotEmpty(t, resolved.Envelope.EventID)

	payload, ok := resolved.Payload.(*payloads.OrderCreatedEvent)
	require.True(t, ok)
	require.Equal(t, orderID, payload.OrderID)
	require.Equal(t, 3, payload.DailySequenceNumber)
	require.True(t, payload.TotalAmount.Equal(decimal.RequireFromString("215")))
}

func TestEventRegistryRoutesSummaryToReportsTopic(t *testing.T) {
	reg := newTestEventRegistry(t)
	resolved, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventDailySalesSummary,
		AggregateType: enums.AggregateSalesReport,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, payloads.DailySalesSummaryEvent{OrdersCount: 4}),
	})
	require.NoError(t, err)
	require.Equal(t, "reports-topic", resolved.Descriptor.Topic)
	require.ElementsMatch(t, []string{"orders-topic", "reports-topic"}, reg.Topics())
}

func TestEventRegistryResolveRejections(t *testing.T) {
	reg := newTestEventRegistry(t)

	cases := map[string]models.OutboxEvent{
		"unknown type": {
			EventType:     "order.exploded",
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, map[string]any{"a": 1}),
		},
		"aggregate mismatch": {
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateSalesReport,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, payloads.OrderCreatedEvent{}),
		},
		"missing aggregate": {
			EventType:     enums.EventOrderDeleted,
			AggregateType: enums.AggregateOrder,
			Payload:       mustEnvelope(t, payloads.OrderDeletedEvent{}),
		},
		"null data": {
			EventType:     enums.EventOrderCompleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, nil),
		},
		"broken envelope": {
			EventType:     enums.EventOrderCompleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       types.JSONPayload(`{"data":`),
		},
	}
	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(event)
			require.Error(t, err)
			var nonRetry NonRetryableError
			require.True(t, errors.As(err, &nonRetry))
		})
	}
}

func TestNewEventRegistryRequiresTopics(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders"})
	require.Error(t, err)
	_, err = NewEventRegistry(config.PubSubConfig{ReportsTopic: "reports"})
	require.Error(t, err)
}
