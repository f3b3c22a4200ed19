package solar_test

import (
	"testing"
	"time"

	"solshift/internal/solar"
)

func TestBoundariesAtEquatorEpoch(t *testing.T) {
	almanac, err := solar.New(solar.Location{})
	if err != nil {
		t.Fatalf("solar.New: %v", err)
	}

	date := time.Date(1970, time.January, 1, 12, 0, 0, 0, time.UTC)
	day := almanac.Boundaries(date)

	wantRise := time.Date(1970, time.January, 1, 5, 59, 54, 0, time.UTC)
	wantSet := time.Date(1970, time.January, 1, 18, 7, 8, 0, time.UTC)
	if !day.Sunrise.Equal(wantRise) {
		t.Errorf("sunrise = %v, want %v", day.Sunrise, wantRise)
	}
	if !day.Sunset.Equal(wantSet) {
		t.Errorf("sunset = %v, want %v", day.Sunset, wantSet)
	}
}

func TestBoundariesDeterministic(t *testing.T) {
	almanac, err := solar.New(solar.Location{Latitude: -1.2921, Longitude: 36.8219})
	if err != nil {
		t.Fatalf("solar.New: %v", err)
	}

	date := time.Date(2024, time.June, 21, 9, 30, 0, 0, time.UTC)
	first := almanac.Boundaries(date)
	second := almanac.Boundaries(date)
	if !first.Sunrise.Equal(second.Sunrise) || !first.Sunset.Equal(second.Sunset) {
		t.Errorf("repeat call diverged: %+v vs %+v", first, second)
	}
}

func TestBoundariesSameDayRegardlessOfClock(t *testing.T) {
	almanac, err := solar.New(solar.Location{Latitude: -1.2921, Longitude: 36.8219})
	if err != nil {
		t.Fatalf("solar.New: %v", err)
	}

	morning := almanac.Boundaries(time.Date(2024, time.March, 10, 0, 30, 0, 0, time.UTC))
	evening := almanac.Boundaries(time.Date(2024, time.March, 10, 23, 30, 0, 0, time.UTC))
	if !morning.Sunrise.Equal(evening.Sunrise) {
		t.Errorf("sunrise depends on time of day: %v vs %v", morning.Sunrise, evening.Sunrise)
	}
}

func TestNewRejectsInvalidCoordinates(t *testing.T) {
	cases := []struct {
		name string
		loc  solar.Location
	}{
		{"latitude too high", solar.Location{Latitude: 90.5}},
		{"latitude too low", solar.Location{Latitude: -91}},
		{"longitude too high", solar.Location{Longitude: 180.1}},
		{"longitude too low", solar.Location{Longitude: -181}},
		{"negative altitude", solar.Location{Altitude: -10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := solar.New(tc.loc); err == nil {
				t.Errorf("solar.New(%+v) accepted invalid location", tc.loc)
			}
		})
	}
}
