package insights

import "errors"

// Sentinel errors for the insights service layer.
var (
	ErrNoData          = errors.New("no analytics rows in range")
	ErrArchiveDisabled = errors.New("snapshot archive is not configured")
)
