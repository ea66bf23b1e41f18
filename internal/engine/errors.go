package engine

import (
	"errors"

	"github.com/tartampluch/go-timetrack/internal/config"
)

// Hard failures. These signal a caller contract violation; soft outcomes are
// reported as Exclusion values instead.
var (
	ErrMissingEnd             = errors.New(config.ErrMissingEnd)
	ErrScheduleNotConvertible = errors.New(config.ErrScheduleNotConvert)
	ErrUnsupportedItem        = errors.New(config.ErrUnsupportedItem)
)
