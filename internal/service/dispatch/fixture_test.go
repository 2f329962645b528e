package dispatch_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/entities"
	"dispatch/internal/pkg/config"
	"dispatch/internal/pkg/factory/sla_deadline"
	"dispatch/internal/repository/memory"
	"dispatch/internal/service/assignment"
	"dispatch/internal/service/broadcast"
	"dispatch/internal/service/courier"
	"dispatch/internal/service/dispatch"
	"dispatch/internal/service/fulfillment"
	"dispatch/internal/service/location"
	"dispatch/internal/service/matching"
	"dispatch/internal/service/verification"
	"dispatch/pkg/logger"
	"dispatch/pkg/retrier"

	"github.com/AlekSi/pointer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fleetStub struct{}

func (fleetStub) GetCourierProfile(context.Context, string) (*entities.CourierProfile, error) {
	return nil, entities.ErrCourierNotFound
}

type emitterStub struct{}

func (emitterStub) Notify(context.Context, entities.Notification) {}

func (emitterStub) Audit(context.Context, entities.AuditEvent) {}

type fixture struct {
	mem     *memory.Store
	machine *fulfillment.StateMachine
	gateway *dispatch.Gateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := memory.New()
	log := logger.NewNop()
	broadcaster := broadcast.New(4)
	deadlines := sla_deadline.New(&config.Dispatch{
		AcceptTimeout: time.Minute,
		SLAStandard:   time.Hour,
		SLAAtomic:     30 * time.Minute,
	})

	registry := courier.New(mem.Couriers(), fleetStub{}, mem)
	locations := location.New(log, mem.Couriers(), registry, broadcaster, nil, mem, time.Minute)
	coordinator := assignment.New(
		log, mem.Orders(), mem.Couriers(), mem.Assignments(),
		locations, broadcaster, emitterStub{}, deadlines, mem, 2*time.Minute,
	)
	t.Cleanup(coordinator.Close)

	ledger := verification.New(mem.Verification(), mem.Orders(), mem)
	machine := fulfillment.New(
		log, mem.Orders(), mem.Assignments(), ledger, coordinator,
		broadcaster, emitterStub{}, deadlines, mem, 3,
	)

	return &fixture{
		mem:     mem,
		machine: machine,
		gateway: dispatch.New(
			log, coordinator, machine, ledger, locations, matching.New(locations),
			registry, broadcaster, retrier.Once{},
		),
	}
}

// onlineCourier регистрирует курьера, выводит на линию и отправляет первый пинг.
func (f *fixture) onlineCourier(t *testing.T, id string, at entities.Coordinate) {
	t.Helper()
	ctx := context.Background()

	_, err := f.gateway.RegisterCourier(ctx, entities.CourierModify{
		ID:            pointer.To(id),
		Name:          pointer.To("Courier " + id),
		Phone:         pointer.To("+70000000000"),
		TransportType: pointer.To(entities.Bicycle),
		Hub:           pointer.To("center"),
	})
	require.NoError(t, err)
	_, err = f.gateway.SetAvailability(ctx, id, entities.CourierOnline)
	require.NoError(t, err)
	_, err = f.gateway.UpdateLocation(ctx, id, at, time.Now())
	require.NoError(t, err)
}

func pickupRequest() entities.PickupRequest {
	return entities.PickupRequest{
		Pickup:  entities.Address{Label: "Office", Coordinate: entities.Coordinate{Lat: 55.75, Lon: 37.61}},
		Dropoff: entities.Address{Label: "Home", Coordinate: entities.Coordinate{Lat: 55.79, Lon: 37.70}},
		Items: []entities.LineItem{
			{ProductRef: "parcel", Quantity: 1, UnitPrice: decimal.Zero},
			{ProductRef: "envelope", Quantity: 2, UnitPrice: decimal.Zero},
		},
		DeliveryFee: decimal.RequireFromString("4.90"),
		Currency:    "EUR",
	}
}

// readyPickup - забор, прошедший вендорские шаги до очереди без курьера.
func (f *fixture) readyPickup(t *testing.T, customerID string) *entities.Order {
	t.Helper()
	ctx := context.Background()

	order, err := f.gateway.RequestPickup(ctx, customerID, pickupRequest())
	require.NoError(t, err)
	for _, step := range []func(context.Context, string) (*entities.Order, error){
		f.machine.Accept, f.machine.StartPacking, f.machine.MarkReady,
	} {
		order, err = step(ctx, order.ID)
		require.NoError(t, err)
	}
	return order
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no message received")
	}
	var zero T
	return zero
}

// receiveUntil читает поток, пока не придёт значение, удовлетворяющее условию.
func receiveUntil[T any](t *testing.T, ch <-chan T, cond func(T) bool) T {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case v, ok := <-ch:
			require.True(t, ok, "channel closed")
			if cond(v) {
				return v
			}
		case <-deadline:
			require.FailNow(t, "condition not reached")
		}
	}
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
