package order

import (
	"dispatch/internal/entities"
)

func ToDomain(o *OrderDB) *entities.Order {
	if o == nil {
		return nil
	}

	items := make([]entities.LineItem, len(o.LineItems))
	for i, li := range o.LineItems {
		items[i] = entities.LineItem{
			ProductRef:   li.ProductRef,
			Quantity:     li.Quantity,
			UnitPrice:    li.UnitPrice,
			VariantLabel: li.VariantLabel,
		}
	}

	return &entities.Order{
		ID:          o.ID,
		Number:      o.Number,
		CustomerID:  o.CustomerID,
		VendorID:    o.VendorID,
		Product:     o.Product,
		Items:       items,
		Total:       o.Total,
		DeliveryFee: o.DeliveryFee,
		Currency:    o.Currency,
		Pickup: entities.Address{
			Label:      o.PickupLabel,
			Coordinate: entities.Coordinate{Lat: o.PickupLat, Lon: o.PickupLon},
		},
		Dropoff: entities.Address{
			Label:      o.DropoffLabel,
			Coordinate: entities.Coordinate{Lat: o.DropoffLat, Lon: o.DropoffLon},
		},
		CourierID:         o.CourierID,
		ClaimToken:        o.ClaimToken,
		Status:            entities.OrderStatusType(o.Status),
		DeliveryPIN:       o.DeliveryPIN,
		Atomic:            o.Atomic,
		SLADeadline:       o.SLADeadline,
		FailedPINAttempts: o.FailedPINAttempts,
		CancelReason:      o.CancelReason,
		Timeline: entities.OrderTimeline{
			CreatedAt:   o.CreatedAt,
			AcceptedAt:  o.AcceptedAt,
			PackingAt:   o.PackingAt,
			ReadyAt:     o.ReadyAt,
			AssignedAt:  o.AssignedAt,
			PickedUpAt:  o.PickedUpAt,
			ShippedAt:   o.ShippedAt,
			DeliveredAt: o.DeliveredAt,
			CancelledAt: o.CancelledAt,
		},
		UpdatedAt: o.UpdatedAt,
		Version:   o.Version,
	}
}

func FromDomain(o *entities.Order) *OrderDB {
	items := make([]lineItemDB, len(o.Items))
	for i, li := range o.Items {
		items[i] = lineItemDB{
			ProductRef:   li.ProductRef,
			Quantity:     li.Quantity,
			UnitPrice:    li.UnitPrice,
			VariantLabel: li.VariantLabel,
		}
	}

	return &OrderDB{
		ID:                o.ID,
		Number:            o.Number,
		CustomerID:        o.CustomerID,
		VendorID:          o.VendorID,
		Product:           o.Product,
		LineItems:         items,
		Total:             o.Total,
		DeliveryFee:       o.DeliveryFee,
		Currency:          o.Currency,
		PickupLabel:       o.Pickup.Label,
		PickupLat:         o.Pickup.Coordinate.Lat,
		PickupLon:         o.Pickup.Coordinate.Lon,
		DropoffLabel:      o.Dropoff.Label,
		DropoffLat:        o.Dropoff.Coordinate.Lat,
		DropoffLon:        o.Dropoff.Coordinate.Lon,
		CourierID:         o.CourierID,
		ClaimToken:        o.ClaimToken,
		Status:            o.Status.String(),
		DeliveryPIN:       o.DeliveryPIN,
		Atomic:            o.Atomic,
		SLADeadline:       o.SLADeadline,
		FailedPINAttempts: o.FailedPINAttempts,
		CancelReason:      o.CancelReason,
		CreatedAt:         o.Timeline.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

func ToDomainList(ordersDB []OrderDB) []entities.Order {
	result := make([]entities.Order, len(ordersDB))
	for i := range ordersDB {
		result[i] = *ToDomain(&ordersDB[i])
	}
	return result
}
