package courier

import "time"

type CourierDB struct {
	ID             string
	Name           string
	Phone          string
	TransportType  string
	Plate          string
	Hub            string
	Status         string
	ActiveOrderID  *string
	PendingOffline bool
	NeedsAttention bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CourierModifyDB struct {
	ID             *string
	Name           *string
	Phone          *string
	TransportType  *string
	Plate          *string
	Hub            *string
	Status         *string
	ActiveOrderID  **string
	PendingOffline *bool
	NeedsAttention *bool
}

const courierColumns = "id, name, phone, transport_type, plate, hub, status, active_order_id, " +
	"pending_offline, needs_attention, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanCourier(row scanner) (CourierDB, error) {
	var c CourierDB
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.TransportType,
		&c.Plate,
		&c.Hub,
		&c.Status,
		&c.ActiveOrderID,
		&c.PendingOffline,
		&c.NeedsAttention,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
