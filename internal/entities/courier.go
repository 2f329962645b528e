package entities

import (
	"time"
)

type Courier struct {
	ID            string
	Name          string
	Phone         string
	TransportType CourierTransportType
	Plate         string
	Hub           string
	Status        CourierStatusType
	// ActiveOrderID - заказ в ASSIGNED..SHIPPED, который держит курьер.
	ActiveOrderID *string
	// PendingOffline - курьер ушёл в OFFLINE во время доставки; применяется после освобождения.
	PendingOffline bool
	NeedsAttention bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CourierTransportType string

const (
	OnFoot  CourierTransportType = "on_foot"
	Bicycle CourierTransportType = "bicycle"
	Scooter CourierTransportType = "scooter"
	Car     CourierTransportType = "car"
)

const DefaultTransportType = OnFoot

func (t CourierTransportType) String() string {
	return string(t)
}

func (t CourierTransportType) Valid() bool {
	switch t {
	case OnFoot, Bicycle, Scooter, Car:
		return true
	default:
		return false
	}
}

// SpeedKmh - средняя скорость в городе, используется для оценки ETA.
func (t CourierTransportType) SpeedKmh() float64 {
	switch t {
	case Bicycle:
		return 15
	case Scooter:
		return 25
	case Car:
		return 30
	default:
		return 5
	}
}

type CourierStatusType string

const (
	CourierOffline   CourierStatusType = "offline"
	CourierOnline    CourierStatusType = "online"
	CourierBusy      CourierStatusType = "busy"
	CourierSuspended CourierStatusType = "suspended"
)

const DefaultStatusType = CourierOffline

func (t CourierStatusType) String() string {
	return string(t)
}

func (t CourierStatusType) Valid() bool {
	switch t {
	case CourierOffline, CourierOnline, CourierBusy, CourierSuspended:
		return true
	default:
		return false
	}
}

type CourierModify struct {
	ID             *string
	Name           *string
	Phone          *string
	Status         *CourierStatusType
	TransportType  *CourierTransportType
	Plate          *string
	Hub            *string
	ActiveOrderID  **string
	PendingOffline *bool
	NeedsAttention *bool
}

type CourierFilter struct {
	Statuses []CourierStatusType
	Hub      string
}

func (f CourierFilter) Match(c *Courier) bool {
	return f.match(c.Hub, c.Status)
}

func (f CourierFilter) MatchSnapshot(s CourierSnapshot) bool {
	return f.match(s.Hub, s.Status)
}

func (f CourierFilter) match(hub string, status CourierStatusType) bool {
	if f.Hub != "" && hub != f.Hub {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if status == s {
			return true
		}
	}
	return false
}

// CourierPosition - живая ячейка координат: одна запись на курьера, последняя запись выигрывает.
// PingAt задаёт устройство и упорядочивает пинги, ReceivedAt - время приёма сервером.
type CourierPosition struct {
	CourierID  string
	Coordinate Coordinate
	PingAt     time.Time
	ReceivedAt time.Time
}

// CourierProfile - данные курьера, которыми владеет внешний fleet-домен.
type CourierProfile struct {
	ID            string
	Name          string
	Phone         string
	TransportType CourierTransportType
	Plate         string
	Hub           string
	Suspended     bool
}
