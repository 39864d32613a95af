package reports

import "errors"

var (
	ErrArchiveDisabled = errors.New("export archive is not configured")
	ErrInvalidFilter   = errors.New("invalid export filter")
)
