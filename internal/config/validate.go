package config

import "fmt"

// Temperature bounds accepted by hyprsunset.
const (
	minTemperature = 1000
	maxTemperature = 20000
)

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return fmt.Errorf("location.latitude %v out of range [-90, 90]", c.Location.Latitude)
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return fmt.Errorf("location.longitude %v out of range [-180, 180]", c.Location.Longitude)
	}
	if c.Location.Altitude < 0 {
		return fmt.Errorf("location.altitude %v must be >= 0 meters", c.Location.Altitude)
	}
	if c.Filter.NightTemperature < minTemperature || c.Filter.NightTemperature > maxTemperature {
		return fmt.Errorf("filter.night_temperature %d out of range [%d, %d]",
			c.Filter.NightTemperature, minTemperature, maxTemperature)
	}
	if c.Hyprsunset.Mode != ModeSocket && c.Hyprsunset.Mode != ModeProcess {
		return fmt.Errorf("hyprsunset.mode %q must be %q or %q", c.Hyprsunset.Mode, ModeSocket, ModeProcess)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be \"console\" or \"json\"", c.Logging.Format)
	}
	return nil
}
