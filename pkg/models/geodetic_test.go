package models

import "testing"

func TestBoundsContains(t *testing.T) {
	b := GeodeticBounds{
		Min: GeodeticPosition{Lat: 40, Lon: -75},
		Max: GeodeticPosition{Lat: 42, Lon: -73},
	}

	if !b.Contains(GeodeticPosition{Lat: 41, Lon: -74}) {
		t.Error("expected interior point inside")
	}
	if !b.Contains(GeodeticPosition{Lat: 40, Lon: -75}) {
		t.Error("expected min corner inside")
	}
	if b.Contains(GeodeticPosition{Lat: 43, Lon: -74}) {
		t.Error("expected point north of bounds outside")
	}
	if b.Contains(GeodeticPosition{Lat: 41, Lon: -72}) {
		t.Error("expected point east of bounds outside")
	}
}

func TestBoundsContainsAcrossAntimeridian(t *testing.T) {
	b := GeodeticBounds{
		Min: GeodeticPosition{Lat: -10, Lon: 170},
		Max: GeodeticPosition{Lat: 10, Lon: -170},
	}

	if !b.Contains(GeodeticPosition{Lat: 0, Lon: 175}) {
		t.Error("expected lon 175 inside wrapped bounds")
	}
	if !b.Contains(GeodeticPosition{Lat: 0, Lon: -175}) {
		t.Error("expected lon -175 inside wrapped bounds")
	}
	if b.Contains(GeodeticPosition{Lat: 0, Lon: 0}) {
		t.Error("expected lon 0 outside wrapped bounds")
	}
}

func TestBoundsAroundWrapsLongitude(t *testing.T) {
	b := BoundsAround(GeodeticPosition{Lat: 0, Lon: 179.5}, 2, 2)
	if b.Min.Lon != 178.5 {
		t.Fatalf("expected min lon 178.5 got %v", b.Min.Lon)
	}
	if b.Max.Lon != -179.5 {
		t.Fatalf("expected max lon -179.5 got %v", b.Max.Lon)
	}
	if !b.Contains(GeodeticPosition{Lat: 0, Lon: 179.9}) {
		t.Error("expected point near antimeridian inside")
	}
}

func TestBoundsAroundClampsLatitude(t *testing.T) {
	b := BoundsAround(GeodeticPosition{Lat: 89.5, Lon: 0}, 2, 2)
	if b.Max.Lat != 90 {
		t.Fatalf("expected max lat clamped to 90, got %v", b.Max.Lat)
	}
	if b.Min.Lat != 88.5 {
		t.Fatalf("expected min lat 88.5 got %v", b.Min.Lat)
	}
}
