package img2ascii

import (
	"errors"
	"fmt"
)

// ErrAccelerationUnavailable is reported when an optional working
// structure cannot be sized. Rendering carries on without it.
var ErrAccelerationUnavailable = errors.New("acceleration structure unavailable")

// ConfigError describes a rejected configuration value.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s '%s': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ErrEmptyRaster is returned when asked to render a raster with no pixels.
var ErrEmptyRaster = errors.New("empty raster")
