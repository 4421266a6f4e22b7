package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"aircraft-fusion/pkg/models"
)

func TestToECEFReferencePoints(t *testing.T) {
	equator := ToECEF(models.GeodeticPosition{Lat: 0, Lon: 0})
	assert.InDelta(t, EquatorialRadius, equator.X, 1e-6)
	assert.InDelta(t, 0, equator.Y, 1e-6)
	assert.InDelta(t, 0, equator.Z, 1e-6)

	lon90 := ToECEF(models.GeodeticPosition{Lat: 0, Lon: 90})
	assert.InDelta(t, 0, lon90.X, 1e-6)
	assert.InDelta(t, EquatorialRadius, lon90.Y, 1e-6)

	pole := ToECEF(models.GeodeticPosition{Lat: 90, Lon: 0})
	assert.InDelta(t, 0, pole.X, 1e-6)
	assert.InDelta(t, PolarRadius, pole.Z, 1e-3)
}

func TestToECEFAltitudeAlongNormal(t *testing.T) {
	ground := ToECEF(models.GeodeticPosition{Lat: 0, Lon: 0})
	up := ToECEF(models.GeodeticPosition{Lat: 0, Lon: 0, Alt: 1000})
	assert.InDelta(t, 1000, up.X-ground.X, 1e-6)
	assert.InDelta(t, 0, up.Y-ground.Y, 1e-6)
}

func TestENUToECEFRotationBasis(t *testing.T) {
	// At lat 0 lon 0 local east is ECEF +Y, north is +Z, up is +X.
	r := ENUToECEFRotation(models.GeodeticPosition{Lat: 0, Lon: 0})

	assert.InDelta(t, 1, r.At(1, 0), 1e-12) // east
	assert.InDelta(t, 1, r.At(2, 1), 1e-12) // north
	assert.InDelta(t, 1, r.At(0, 2), 1e-12) // up

	// Columns stay orthonormal at an arbitrary location.
	r = ENUToECEFRotation(models.GeodeticPosition{Lat: 37.5, Lon: -122.3})
	for c := 0; c < 3; c++ {
		n := 0.0
		for i := 0; i < 3; i++ {
			n += r.At(i, c) * r.At(i, c)
		}
		assert.InDelta(t, 1, math.Sqrt(n), 1e-12)
	}
	dot := 0.0
	for i := 0; i < 3; i++ {
		dot += r.At(i, 0) * r.At(i, 1)
	}
	assert.InDelta(t, 0, dot, 1e-12)
}

func TestSurfaceDistance(t *testing.T) {
	a := models.GeodeticPosition{Lat: 0, Lon: 0}
	b := models.GeodeticPosition{Lat: 0, Lon: 1}

	// One degree of longitude at the equator over the mean radius.
	expected := 2 * math.Pi * meanRadius / 360
	assert.InDelta(t, expected, SurfaceDistance(a, b), 1)

	assert.InDelta(t, 0, SurfaceDistance(a, a), 1e-9)

	// Altitude is ignored.
	c := models.GeodeticPosition{Lat: 0, Lon: 1, Alt: 10000}
	assert.InDelta(t, SurfaceDistance(a, b), SurfaceDistance(a, c), 1e-9)
}
