package dto

import (
	"time"

	"dispatch/internal/entities"
)

type CourierCreate struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	TransportType string `json:"transport_type"`
	Plate         string `json:"plate,omitempty"`
	Hub           string `json:"hub"`
}

type CourierUpdate struct {
	Name          *string `json:"name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	TransportType *string `json:"transport_type,omitempty"`
	Plate         *string `json:"plate,omitempty"`
	Hub           *string `json:"hub,omitempty"`
	Status        *string `json:"status,omitempty"`
}

type Courier struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	TransportType  string  `json:"transport_type"`
	Plate          string  `json:"plate,omitempty"`
	Hub            string  `json:"hub"`
	Status         string  `json:"status"`
	ActiveOrderID  *string `json:"active_order_id,omitempty"`
	PendingOffline bool    `json:"pending_offline"`
	NeedsAttention bool    `json:"needs_attention"`
}

func NewCourier(c *entities.Courier) Courier {
	return Courier{
		ID:             c.ID,
		Name:           c.Name,
		Phone:          c.Phone,
		TransportType:  c.TransportType.String(),
		Plate:          c.Plate,
		Hub:            c.Hub,
		Status:         c.Status.String(),
		ActiveOrderID:  c.ActiveOrderID,
		PendingOffline: c.PendingOffline,
		NeedsAttention: c.NeedsAttention,
	}
}

type LocationUpdate struct {
	Lat       *float64   `json:"lat"`
	Lon       *float64   `json:"lon"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type Position struct {
	CourierID string    `json:"courier_id"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	PingAt    time.Time `json:"ping_at"`
}

func NewPosition(p entities.CourierPosition) Position {
	return Position{
		CourierID: p.CourierID,
		Lat:       p.Coordinate.Lat,
		Lon:       p.Coordinate.Lon,
		PingAt:    p.PingAt,
	}
}

type AvailabilityUpdate struct {
	Status string `json:"status"`
}

type Candidate struct {
	CourierID  string    `json:"courier_id"`
	DistanceKm float64   `json:"distance_km"`
	ETASeconds int64     `json:"eta_seconds"`
	LastPingAt time.Time `json:"last_ping_at"`
}

func NewCandidates(candidates []entities.Candidate) []Candidate {
	result := make([]Candidate, len(candidates))
	for i, c := range candidates {
		result[i] = Candidate{
			CourierID:  c.CourierID,
			DistanceKm: c.DistanceKm,
			ETASeconds: int64(c.ETA.Seconds()),
			LastPingAt: c.LastPingAt,
		}
	}
	return result
}
