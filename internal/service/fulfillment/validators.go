package fulfillment

import (
	"fmt"
	"strings"

	"dispatch/internal/entities"
)

func validateCreate(o entities.OrderCreate) error {
	if strings.TrimSpace(o.CustomerID) == "" || len(o.Items) == 0 {
		return ErrMissingRequiredFields
	}
	if !isValidCurrency(o.Currency) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, o.Currency)
	}
	for i, item := range o.Items {
		if strings.TrimSpace(item.ProductRef) == "" || item.Quantity <= 0 || item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: line %d", ErrInvalidLineItem, i)
		}
	}
	if o.DeliveryFee.IsNegative() {
		return fmt.Errorf("%w: negative delivery fee", ErrInvalidLineItem)
	}
	if err := o.Pickup.Coordinate.Validate(); err != nil {
		return fmt.Errorf("pickup: %w", err)
	}
	if err := o.Dropoff.Coordinate.Validate(); err != nil {
		return fmt.Errorf("dropoff: %w", err)
	}
	return nil
}

func isValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
