//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=couriers_nearby_get_test
package couriers_nearby_get

import (
	"context"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Service interface {
	FindNearby(ctx context.Context, origin entities.Coordinate, radiusKm float64, limit int) ([]entities.Candidate, error)
}
