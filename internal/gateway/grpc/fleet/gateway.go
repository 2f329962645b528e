package fleet

import (
	"context"
	"fmt"
	"time"

	"dispatch/internal/entities"
	retrierconfig "dispatch/pkg/retrier"
	"dispatch/pkg/retrier/backoff_adapter"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName = "fleet-service"

	methodGetCourierProfile = "/fleet.v1.FleetService/GetCourierProfile"
)

const (
	initialInterval = 100 * time.Millisecond
	maxInterval     = 2 * time.Second
	maxElapsedTime  = 1 * time.Second
	randomization   = 0.5
	multiplier      = 2.0
)

// Gateway читает профиль курьера из fleet-домена. Сообщения - google.protobuf.Struct,
// поэтому сгенерированный клиент не нужен.
type Gateway struct {
	conn    invoker
	retrier retrier
}

func New(conn invoker) *Gateway {
	return &Gateway{
		conn: conn,
		retrier: backoff_adapter.New(retrierconfig.Config{
			InitialInterval: initialInterval,
			MaxInterval:     maxInterval,
			MaxElapsedTime:  maxElapsedTime,
			Randomization:   randomization,
			Multiplier:      multiplier,
			ShouldRetry:     isRetryableCode,
		}),
	}
}

func (g *Gateway) GetCourierProfile(ctx context.Context, courierID string) (*entities.CourierProfile, error) {
	req, err := toRequest(courierID)
	if err != nil {
		return nil, fmt.Errorf("gateway fleet, build request: %w", err)
	}

	resp := &structpb.Struct{}
	err = g.executeWithMetrics(ctx, "GetCourierProfile", func(ctx context.Context) error {
		resp.Reset()
		return g.conn.Invoke(ctx, methodGetCourierProfile, req, resp)
	})
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("gateway fleet, get profile %s: %w", courierID, entities.ErrCourierNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("gateway fleet, get profile %s: %w", courierID, err)
	}

	return toDomain(courierID, resp)
}

func isRetryableCode(err error) bool {
	if err == nil {
		return false
	}
	st, ok := status.FromError(err)
	if !ok {
		return false
	}

	switch st.Code() {
	case codes.ResourceExhausted,
		codes.Unavailable,
		codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

func (g *Gateway) executeWithMetrics(ctx context.Context, method string, fn func(context.Context) error) error {
	var attempt uint64
	start := time.Now()

	err := g.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		attempt++
		return fn(ctx)
	})

	grpcCode := getGRPCCode(err)
	GatewayRequestDuration.WithLabelValues(serviceName, method, grpcCode).Observe(time.Since(start).Seconds())
	if attempt > 1 {
		GatewayRetriesTotal.WithLabelValues(serviceName, method, grpcCode).Inc()
	}

	return err
}

func getGRPCCode(err error) string {
	if err == nil {
		return "OK"
	}
	if st, ok := status.FromError(err); ok {
		return st.Code().String()
	}
	return "UNKNOWN"
}

// Standalone используется, когда адрес fleet-сервиса не задан: незнакомых курьеров
// нельзя зарегистрировать по первому пингу, только через POST /courier.
type Standalone struct{}

func (Standalone) GetCourierProfile(_ context.Context, courierID string) (*entities.CourierProfile, error) {
	return nil, fmt.Errorf("fleet service is not configured, courier %s: %w", courierID, entities.ErrCourierNotFound)
}
