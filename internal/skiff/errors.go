package skiff

import "errors"

var (
	ErrTruncated = errors.New("skiff: truncated data")
	ErrMalformed = errors.New("skiff: malformed data")
)
