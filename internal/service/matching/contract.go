//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=matching_test
package matching

import "dispatch/internal/entities"

// Fleet - живой срез парка из CourierLocationStore.
type Fleet interface {
	Snapshot(filter entities.CourierFilter) []entities.CourierSnapshot
}
