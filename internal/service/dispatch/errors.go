package dispatch

import "errors"

var (
	ErrInvalidCustomerID = errors.New("invalid customer id")
	ErrInvalidViewer     = errors.New("invalid viewer")
	ErrInvalidFilter     = errors.New("invalid fleet filter")
)
