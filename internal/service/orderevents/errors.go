package orderevents

import "errors"

var (
	ErrUndefinedStatus = errors.New("undefined order event status")
	ErrMissingOrderID  = errors.New("order id is required")
	ErrMissingPayload  = errors.New("created event without order payload")
)
