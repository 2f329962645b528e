package assignment

import "errors"

var (
	ErrInvalidDecision = errors.New("decision must be accept or reject")
	ErrInvalidID       = errors.New("empty id")
	ErrNotClaimed      = errors.New("order is not claimed by any courier")
)
