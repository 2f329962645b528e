package fulfillment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dispatch/internal/entities"
	"dispatch/internal/pkg/config"
	"dispatch/internal/pkg/factory/sla_deadline"
	"dispatch/internal/repository/memory"
	"dispatch/internal/service/assignment"
	"dispatch/internal/service/fulfillment"
	"dispatch/internal/service/verification"
	"dispatch/pkg/logger"

	"github.com/AlekSi/pointer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fleetStub struct{}

func (fleetStub) ApplyCourier(entities.Courier) {}

func (fleetStub) Silent(time.Duration) []entities.Courier {
	return nil
}

type publisherStub struct {
	mu     sync.Mutex
	orders []entities.Order
}

func (p *publisherStub) PublishOrder(order *entities.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, *order)
}

type emitterStub struct {
	mu            sync.Mutex
	notifications []entities.Notification
	audit         []entities.AuditEvent
}

func (e *emitterStub) Notify(_ context.Context, n entities.Notification) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifications = append(e.notifications, n)
}

func (e *emitterStub) Audit(_ context.Context, event entities.AuditEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.audit = append(e.audit, event)
}

func (e *emitterStub) count(typ entities.NotificationType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, notification := range e.notifications {
		if notification.Type == typ {
			n++
		}
	}
	return n
}

type fixture struct {
	mem         *memory.Store
	emitter     *emitterStub
	publisher   *publisherStub
	coordinator *assignment.Coordinator
	ledger      *verification.Ledger
	machine     *fulfillment.StateMachine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := memory.New()
	deadlines := sla_deadline.New(&config.Dispatch{
		AcceptTimeout: time.Minute,
		SLAStandard:   time.Hour,
		SLAAtomic:     30 * time.Minute,
	})
	f := &fixture{
		mem:       mem,
		emitter:   &emitterStub{},
		publisher: &publisherStub{},
	}
	f.coordinator = assignment.New(
		logger.NewNop(), mem.Orders(), mem.Couriers(), mem.Assignments(),
		fleetStub{}, f.publisher, f.emitter, deadlines, mem, 2*time.Minute,
	)
	t.Cleanup(f.coordinator.Close)

	f.ledger = verification.New(mem.Verification(), mem.Orders(), mem)
	f.machine = fulfillment.New(
		logger.NewNop(), mem.Orders(), mem.Assignments(), f.ledger, f.coordinator,
		f.publisher, f.emitter, deadlines, mem, 3,
	)
	return f
}

func (f *fixture) addCourier(t *testing.T, id string) {
	t.Helper()

	_, err := f.mem.Couriers().Create(context.Background(), entities.CourierModify{
		ID:     pointer.To(id),
		Name:   pointer.To("Courier " + id),
		Phone:  pointer.To(""),
		Status: pointer.To(entities.CourierOnline),
	})
	require.NoError(t, err)
}

func orderCreate(items int) entities.OrderCreate {
	create := entities.OrderCreate{
		CustomerID:  "customer-1",
		VendorID:    "vendor-1",
		DeliveryFee: decimal.RequireFromString("2.50"),
		Currency:    "USD",
		Pickup:      entities.Address{Label: "Store", Coordinate: entities.Coordinate{Lat: 55.75, Lon: 37.61}},
		Dropoff:     entities.Address{Label: "Home", Coordinate: entities.Coordinate{Lat: 55.76, Lon: 37.64}},
	}
	for i := range items {
		create.Items = append(create.Items, entities.LineItem{
			ProductRef: "sku-" + string(rune('a'+i)),
			Quantity:   i + 1,
			UnitPrice:  decimal.RequireFromString("10.00"),
		})
	}
	return create
}

// readyOrder проводит заказ через вендорские шаги до READY_FOR_PICKUP.
func (f *fixture) readyOrder(t *testing.T, items int) *entities.Order {
	t.Helper()
	ctx := context.Background()

	order, err := f.machine.CreateOrder(ctx, orderCreate(items))
	require.NoError(t, err)
	_, err = f.machine.Accept(ctx, order.ID)
	require.NoError(t, err)
	_, err = f.machine.StartPacking(ctx, order.ID)
	require.NoError(t, err)
	order, err = f.machine.MarkReady(ctx, order.ID)
	require.NoError(t, err)
	return order
}

// assignedOrder - готовый заказ, принятый курьером.
func (f *fixture) assignedOrder(t *testing.T, items int, courierID string) *entities.Order {
	t.Helper()
	ctx := context.Background()

	order := f.readyOrder(t, items)
	offer, err := f.coordinator.Offer(ctx, order.ID, courierID)
	require.NoError(t, err)
	_, err = f.coordinator.Respond(ctx, offer.ID, courierID, entities.DecisionAccept)
	require.NoError(t, err)
	return order
}

func (f *fixture) markAll(t *testing.T, orderID, courierID string, indexes ...int) {
	t.Helper()
	for _, i := range indexes {
		_, err := f.ledger.MarkItem(context.Background(), orderID, courierID, i, "photo://item")
		require.NoError(t, err)
	}
}

// shippedOrder - заказ в пути.
func (f *fixture) shippedOrder(t *testing.T, courierID string) *entities.Order {
	t.Helper()

	order := f.assignedOrder(t, 1, courierID)
	f.markAll(t, order.ID, courierID, 0)
	order, err := f.machine.ConfirmPickup(context.Background(), order.ID, courierID)
	require.NoError(t, err)
	require.Equal(t, entities.OrderShipped, order.Status)
	return order
}

// assertBusyInvariant - курьер BUSY тогда и только тогда, когда держит заказ в ASSIGNED..SHIPPED.
func (f *fixture) assertBusyInvariant(t *testing.T, courierID string) {
	t.Helper()
	ctx := context.Background()

	courier, err := f.mem.Couriers().GetByID(ctx, courierID)
	require.NoError(t, err)

	if courier.Status != entities.CourierBusy {
		assert.Nil(t, courier.ActiveOrderID)
		return
	}
	require.NotNil(t, courier.ActiveOrderID)
	order, err := f.mem.Orders().GetByID(ctx, *courier.ActiveOrderID)
	require.NoError(t, err)
	assert.True(t, order.Status.IsActiveDelivery(), "order status %s", order.Status)
	assert.True(t, order.AssignedTo(courierID))
}

func (f *fixture) courierStatus(t *testing.T, id string) entities.CourierStatusType {
	t.Helper()
	c, err := f.mem.Couriers().GetByID(context.Background(), id)
	require.NoError(t, err)
	return c.Status
}

func errorAssertion(expectedError error, expectedErrMsg string) require.ErrorAssertionFunc {
	return func(t require.TestingT, err error, msgAndArgs ...interface{}) {
		require.Error(t, err, msgAndArgs...)

		if expectedError != nil {
			assert.ErrorIs(t, err, expectedError, msgAndArgs...)
		}

		if expectedErrMsg != "" {
			assert.Contains(t, err.Error(), expectedErrMsg, msgAndArgs...)
		}
	}
}
