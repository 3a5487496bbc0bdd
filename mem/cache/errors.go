package cache

import (
	"errors"
	"fmt"
)

// ErrStatisticsUnavailable is returned when a rate is requested before any
// request of the kind has been recorded.
var ErrStatisticsUnavailable = errors.New("statistics unavailable")

// A ConfigurationError reports a geometry that cannot be used to build a cache
// organization.
type ConfigurationError struct {
	Kind     Kind
	Geometry Geometry
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s geometry (blocks %d, log2 block size %d, "+
		"group size %d): %v",
		e.Kind,
		e.Geometry.BlockCount,
		e.Geometry.Log2BlockSize,
		e.Geometry.GroupSize,
		e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
