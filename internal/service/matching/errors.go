package matching

import "errors"

var (
	ErrInvalidRadius = errors.New("radius must be positive")
	ErrInvalidLimit  = errors.New("limit must be positive")
)
