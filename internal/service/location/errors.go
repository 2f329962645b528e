package location

import "errors"

var (
	ErrPingRateLimited = errors.New("location ping rate limited")
	ErrInvalidStatus   = errors.New("invalid availability status")
)
