package solar

import (
	"fmt"
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// Location is the observer position used for almanac queries. Loaded once at
// startup and immutable afterwards.
type Location struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// Day holds the sunrise and sunset instants for one calendar date, in UTC,
// rounded to whole seconds. Both fields are zero when the sun never crosses
// the horizon on that date.
type Day struct {
	Sunrise time.Time
	Sunset  time.Time
}

// Almanac computes day boundaries for a fixed, validated location. Results
// are deterministic: the same date always yields the same pair.
type Almanac struct {
	loc Location
}

// New validates the location and returns an almanac bound to it.
func New(loc Location) (*Almanac, error) {
	if math.IsNaN(loc.Latitude) || loc.Latitude < -90 || loc.Latitude > 90 {
		return nil, fmt.Errorf("latitude %v out of range [-90, 90]", loc.Latitude)
	}
	if math.IsNaN(loc.Longitude) || loc.Longitude < -180 || loc.Longitude > 180 {
		return nil, fmt.Errorf("longitude %v out of range [-180, 180]", loc.Longitude)
	}
	if math.IsNaN(loc.Altitude) || loc.Altitude < 0 {
		return nil, fmt.Errorf("altitude %v must be >= 0 meters", loc.Altitude)
	}
	return &Almanac{loc: loc}, nil
}

// Location returns the position the almanac is bound to.
func (a *Almanac) Location() Location {
	return a.loc
}

// Boundaries returns sunrise and sunset for the UTC calendar day containing
// date. The events are assembled from the library's orbital primitives so the
// Julian-to-Unix conversion can round once at the end;
// sunrise.SunriseSunset truncates there instead, which lands one second
// early whenever the instant's fractional second is .5 or above.
func (a *Almanac) Boundaries(date time.Time) Day {
	year, month, day := date.UTC().Date()

	var (
		noon              = sunrise.MeanSolarNoon(a.loc.Longitude, year, month, day)
		solarAnomaly      = sunrise.SolarMeanAnomaly(noon)
		equationOfCenter  = sunrise.EquationOfCenter(solarAnomaly)
		eclipticLongitude = sunrise.EclipticLongitude(solarAnomaly, equationOfCenter, noon)
		solarTransit      = sunrise.SolarTransit(noon, solarAnomaly, eclipticLongitude)
		declination       = sunrise.Declination(eclipticLongitude)
	)

	var frac float64
	if a.loc.Altitude > 0 {
		elevation := sunriseElevation - horizonDip(a.loc.Altitude)
		cosHourAngle := (math.Sin(elevation*sunrise.Degree) -
			math.Sin(a.loc.Latitude*sunrise.Degree)*math.Sin(declination*sunrise.Degree)) /
			(math.Cos(a.loc.Latitude*sunrise.Degree) * math.Cos(declination*sunrise.Degree))
		hourAngle := math.Acos(cosHourAngle)
		if math.IsNaN(hourAngle) {
			return Day{}
		}
		frac = hourAngle / (2 * math.Pi)
	} else {
		hourAngle := sunrise.HourAngle(a.loc.Latitude, declination)
		if hourAngle == math.MaxFloat64 || hourAngle == -math.MaxFloat64 {
			return Day{}
		}
		frac = hourAngle / 360
	}

	return Day{
		Sunrise: julianDayToTime(solarTransit - frac),
		Sunset:  julianDayToTime(solarTransit + frac),
	}
}

const unixEpochJulianDay = 2440587.5

func julianDayToTime(d float64) time.Time {
	return time.Unix(int64(math.Round((d-unixEpochJulianDay)*86400)), 0).UTC()
}

// sunriseElevation is the standard solar elevation at sunrise and sunset,
// accounting for atmospheric refraction and the solar disc radius.
const sunriseElevation = -50.0 / 60.0

// horizonDip returns the geometric dip of the horizon, in degrees, for an
// observer alt meters above the surrounding terrain.
func horizonDip(alt float64) float64 {
	return 1.76 * math.Sqrt(alt) / 60.0
}
