//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"dispatch/internal/pkg/config"
	"dispatch/internal/pkg/kafka"
	"dispatch/internal/service/dispatch"
	"dispatch/pkg/logger"

	"github.com/google/wire"
	"google.golang.org/grpc"
)

var domainSet = wire.NewSet(
	provideFleetGateway,
	provideEventEmitter,
	providePingLimiter,
	provideDeadlineFactory,
	provideBroadcaster,

	provideCourierService,
	provideLocationStore,
	provideLedger,
	provideCoordinator,
	provideStateMachine,
)

// InitializeApplication для HTTP сервиса (cmd/service)
func InitializeApplication(
	ctx context.Context,
	log logger.Logger,
	cfg *config.Config,
	storage *Storage,
	conn *grpc.ClientConn,
	producer *kafka.Producer,
) (*Application, error) {
	wire.Build(
		domainSet,

		provideRetrier,
		provideMatcher,
		provideDispatchGateway,

		provideTaskList,
		provideBackgroundWorkers,

		wire.Bind(new(ServiceDispatch), new(*dispatch.Gateway)),
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}

// InitializeKafkaWorkerApp для Kafka воркера (cmd/worker-order-status-changed)
func InitializeKafkaWorkerApp(
	ctx context.Context,
	log logger.Logger,
	cfg *config.Config,
	storage *Storage,
	conn *grpc.ClientConn,
	producer *kafka.Producer,
) (*KafkaWorkerApp, error) {
	wire.Build(
		domainSet,

		provideStatusHandlerFactory,
		provideOrderEvents,

		wire.Struct(new(KafkaWorkerApp), "*"),
	)
	return nil, nil
}
