package app

import (
	"context"

	"dispatch/internal/entities"
	"dispatch/internal/gateway/events"
	"dispatch/internal/gateway/grpc/fleet"
	"dispatch/internal/handlers/rest/assignment_post"
	"dispatch/internal/handlers/rest/assignment_response_post"
	"dispatch/internal/handlers/rest/courier_availability_put"
	"dispatch/internal/handlers/rest/courier_get"
	"dispatch/internal/handlers/rest/courier_location_put"
	"dispatch/internal/handlers/rest/courier_post"
	"dispatch/internal/handlers/rest/courier_put"
	"dispatch/internal/handlers/rest/couriers_get"
	"dispatch/internal/handlers/rest/couriers_nearby_get"
	"dispatch/internal/handlers/rest/couriers_subscribe_get"
	"dispatch/internal/handlers/rest/order_cancel_post"
	"dispatch/internal/handlers/rest/order_delivery_post"
	"dispatch/internal/handlers/rest/order_get"
	"dispatch/internal/handlers/rest/order_item_proof_put"
	"dispatch/internal/handlers/rest/order_pickup_post"
	"dispatch/internal/handlers/rest/order_subscribe_get"
	"dispatch/internal/handlers/rest/order_verification_get"
	"dispatch/internal/handlers/rest/orders_unassigned_get"
	"dispatch/internal/handlers/rest/pickup_post"
	"dispatch/internal/handlers/tasks/assignment_expiry"
	"dispatch/internal/handlers/tasks/fleet_sync"
	"dispatch/internal/handlers/tasks/heartbeat_monitor"
	"dispatch/internal/pkg/config"
	"dispatch/internal/pkg/factory/order_handle"
	"dispatch/internal/pkg/factory/sla_deadline"
	"dispatch/internal/pkg/kafka"
	"dispatch/internal/service/assignment"
	"dispatch/internal/service/broadcast"
	courierService "dispatch/internal/service/courier"
	"dispatch/internal/service/dispatch"
	"dispatch/internal/service/fulfillment"
	"dispatch/internal/service/location"
	"dispatch/internal/service/matching"
	"dispatch/internal/service/orderevents"
	"dispatch/internal/service/verification"
	"dispatch/pkg/background"
	"dispatch/pkg/logger"
	"dispatch/pkg/retrier"
	"dispatch/pkg/retrier/backoff_adapter"
	"dispatch/pkg/token_bucket"

	"google.golang.org/grpc"
)

// ServiceDispatch - всё, что REST-слой вызывает у DispatchGateway.
type ServiceDispatch interface {
	courier_get.Service
	couriers_get.Service
	courier_post.Service
	courier_put.Service
	courier_location_put.Service
	courier_availability_put.Service
	couriers_nearby_get.Service
	couriers_subscribe_get.Service
	pickup_post.Service
	orders_unassigned_get.Service
	order_get.Service
	order_subscribe_get.Service
	assignment_post.Service
	assignment_response_post.Service
	order_item_proof_put.Service
	order_verification_get.Service
	order_pickup_post.Service
	order_delivery_post.Service
	order_cancel_post.Service
}

type EventEmitter interface {
	Notify(ctx context.Context, notification entities.Notification)
	Audit(ctx context.Context, event entities.AuditEvent)
}

type Application struct {
	Storage           *Storage
	ServiceDispatch   ServiceDispatch
	Coordinator       *assignment.Coordinator
	BackgroundWorkers *background.Worker
}

type KafkaWorkerApp struct {
	OrderEvents *orderevents.Service
	Coordinator *assignment.Coordinator
}

func provideFleetGateway(conn *grpc.ClientConn) courierService.FleetGateway {
	if conn == nil {
		return fleet.Standalone{}
	}
	return fleet.New(conn)
}

func provideEventEmitter(log logger.Logger, producer *kafka.Producer, cfg *config.Config) EventEmitter {
	if producer == nil {
		return events.NewLogEmitter(log.With(logger.NewField("component", "events")))
	}
	return events.NewKafkaEmitter(log, producer, cfg.Kafka.NotificationsTopic, cfg.Kafka.AuditTopic)
}

func providePingLimiter(cfg *config.Config) location.PingLimiter {
	perMinute := cfg.Dispatch.PingsPerMinute
	if perMinute <= 0 {
		return nil
	}
	return token_bucket.NewKeyed(perMinute, float64(perMinute)/60)
}

// provideRetrier - memory-драйвер не отдаёт инфраструктурных ошибок, повторять нечего.
func provideRetrier(cfg *config.Config, storage *Storage) dispatch.Retrier {
	if storage.Driver == config.StorageDriverMemory {
		return retrier.Once{}
	}
	return backoff_adapter.New(retrier.Config{
		InitialInterval: cfg.Gateway.RetryInitialInterval,
		MaxInterval:     cfg.Gateway.RetryMaxElapsed / 2,
		MaxElapsedTime:  cfg.Gateway.RetryMaxElapsed,
		Randomization:   0.5,
		Multiplier:      2,
		ShouldRetry:     dispatch.ShouldRetry,
	})
}

func provideDeadlineFactory(cfg *config.Config) *sla_deadline.DeadlineFactory {
	return sla_deadline.New(&cfg.Dispatch)
}

func provideBroadcaster(cfg *config.Config) *broadcast.Broadcaster {
	return broadcast.New(cfg.Dispatch.SubscriptionBuffer)
}

func provideCourierService(storage *Storage, fleetGateway courierService.FleetGateway) *courierService.Courier {
	return courierService.New(storage.Couriers, fleetGateway, storage.TxManager)
}

func provideLocationStore(
	cfg *config.Config,
	log logger.Logger,
	storage *Storage,
	registry *courierService.Courier,
	broadcaster *broadcast.Broadcaster,
	limiter location.PingLimiter,
) *location.Store {
	return location.New(
		log.With(logger.NewField("component", "location")),
		storage.Couriers,
		registry,
		broadcaster,
		limiter,
		storage.TxManager,
		cfg.Dispatch.MaxPingSkew,
	)
}

func provideMatcher(store *location.Store) *matching.Matcher {
	return matching.New(store)
}

func provideLedger(storage *Storage) *verification.Ledger {
	return verification.New(storage.Verification, storage.Orders, storage.TxManager)
}

func provideCoordinator(
	log logger.Logger,
	storage *Storage,
	store *location.Store,
	broadcaster *broadcast.Broadcaster,
	emitter EventEmitter,
	deadlines *sla_deadline.DeadlineFactory,
	cfg *config.Config,
) *assignment.Coordinator {
	return assignment.New(
		log.With(logger.NewField("component", "assignment")),
		storage.Orders,
		storage.Couriers,
		storage.Assignments,
		store,
		broadcaster,
		emitter,
		deadlines,
		storage.TxManager,
		cfg.Dispatch.HeartbeatTimeout,
	)
}

func provideStateMachine(
	log logger.Logger,
	storage *Storage,
	ledger *verification.Ledger,
	coordinator *assignment.Coordinator,
	broadcaster *broadcast.Broadcaster,
	emitter EventEmitter,
	deadlines *sla_deadline.DeadlineFactory,
	cfg *config.Config,
) *fulfillment.StateMachine {
	return fulfillment.New(
		log.With(logger.NewField("component", "fulfillment")),
		storage.Orders,
		storage.Assignments,
		ledger,
		coordinator,
		broadcaster,
		emitter,
		deadlines,
		storage.TxManager,
		cfg.Dispatch.PINFailureThreshold,
	)
}

func provideDispatchGateway(
	log logger.Logger,
	coordinator *assignment.Coordinator,
	machine *fulfillment.StateMachine,
	ledger *verification.Ledger,
	store *location.Store,
	matcher *matching.Matcher,
	registry *courierService.Courier,
	broadcaster *broadcast.Broadcaster,
	retrier dispatch.Retrier,
) *dispatch.Gateway {
	return dispatch.New(
		log.With(logger.NewField("component", "dispatch")),
		coordinator,
		machine,
		ledger,
		store,
		matcher,
		registry,
		broadcaster,
		retrier,
	)
}

func provideStatusHandlerFactory(machine *fulfillment.StateMachine) *order_handle.StatusHandlerFactory {
	return order_handle.NewStatusHandlerFactory(machine)
}

func provideOrderEvents(factory *order_handle.StatusHandlerFactory) *orderevents.Service {
	return orderevents.New(factory)
}

func provideTaskList(
	log logger.Logger,
	cfg *config.Config,
	coordinator *assignment.Coordinator,
	registry *courierService.Courier,
	store *location.Store,
	conn *grpc.ClientConn,
) []background.Task {
	return []background.Task{
		fleet_sync.NewFleetSync(log, registry, store, cfg.Tasks.FleetSyncInterval, conn != nil),
		assignment_expiry.NewAssignmentExpiry(log, coordinator, cfg.Tasks.AssignmentExpiryInterval),
		heartbeat_monitor.NewHeartbeatMonitor(log, coordinator, cfg.Tasks.HeartbeatCheckInterval),
	}
}

func provideBackgroundWorkers(ctx context.Context, log logger.Logger, tasks []background.Task) (*background.Worker, error) {
	return background.New(ctx, log.With(logger.NewField("component", "background")), tasks)
}
