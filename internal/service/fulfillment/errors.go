package fulfillment

import "errors"

var (
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrInvalidLineItem       = errors.New("invalid line item")
	ErrInvalidCurrency       = errors.New("invalid currency code")
	ErrInvalidID             = errors.New("empty id")
)
