// Package ranging turns the phase samples exchanged over a connection's
// ranging header field into a distance estimate, and computes the
// great-circle distance between two known positions, using the same
// coordinate-conversion and spherical-geometry libraries used elsewhere in
// the stack's ecosystem for position math.
package ranging

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/tzneal/coordconv"
)

// speedOfLightMetersPerSecond is the propagation speed used to relate a
// carrier frequency to the wavelength PhaseDistance takes; a real deployment
// calibrates wavelengthMeters from the radio's configured channel.
const speedOfLightMetersPerSecond = 299792458.0

// PhaseDistance estimates one-way distance in meters from a set of
// unwrapped phase-difference samples (in radians) taken at the given
// wavelength, using the mean of all samples to reduce multipath noise.
func PhaseDistance(phasesRadians []float64, wavelengthMeters float64) float64 {
	if len(phasesRadians) == 0 {
		return 0
	}
	var sum float64
	for _, p := range phasesRadians {
		sum += p
	}
	mean := sum / float64(len(phasesRadians))
	return (mean / (2 * math.Pi)) * wavelengthMeters
}

// Fix is a WGS84 position in degrees, the hemisphere-qualified form a
// config file or NMEA sentence would carry.
type Fix struct {
	LatDegrees float64
	LatHemi    coordconv.Hemisphere
	LngDegrees float64
	LngHemi    coordconv.Hemisphere
}

// LatLng normalizes a Fix's hemisphere-qualified degrees into a signed
// s2.LatLng suitable for distance math.
func (f Fix) LatLng() s2.LatLng {
	lat := f.LatDegrees
	if f.LatHemi == coordconv.HemisphereSouth {
		lat = -lat
	}
	lng := f.LngDegrees
	// coordconv's hemisphere enum only names north/south; longitude sign is
	// the caller's responsibility (east positive) since no west/east
	// constant exists to normalize against here.
	return s2.LatLngFromDegrees(lat, lng)
}

// DistanceMeters returns the great-circle distance between two fixes.
func DistanceMeters(a, b Fix) float64 {
	angle := a.LatLng().Distance(b.LatLng())
	return angle.Radians() * s2EarthRadiusMeters
}

const s2EarthRadiusMeters = 6371010.0
