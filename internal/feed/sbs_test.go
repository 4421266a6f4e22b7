package feed

import (
	"math"
	"testing"
)

const sampleMSG = "MSG,3,1,1,ABC123,1,2026/08/30,12:00:00.000,2026/08/30,12:00:00.000,UAL123 ,35000,450.0,90.5,40.6413,-73.7781,1280,,,,,0"

func TestParseSBS(t *testing.T) {
	s := ParseSBS(sampleMSG)
	if s == nil {
		t.Fatal("expected parsed state")
	}

	if s.ID != 0xABC123 {
		t.Fatalf("expected ICAO ABC123 got %s", s.ID)
	}
	if s.Callsign != "UAL123" {
		t.Fatalf("expected trimmed callsign, got %q", s.Callsign)
	}
	if s.Position == nil {
		t.Fatal("expected position")
	}
	if s.Position.Lat != 40.6413 || s.Position.Lon != -73.7781 {
		t.Fatalf("unexpected position %+v", s.Position)
	}
	if math.Abs(s.Position.Alt-35000*0.3048) > 1e-9 {
		t.Fatalf("expected altitude in meters, got %v", s.Position.Alt)
	}
	if s.Velocity == nil || math.Abs(*s.Velocity-450*0.514444) > 1e-9 {
		t.Fatal("expected ground speed converted from knots")
	}
	if s.Heading == nil || *s.Heading != 90.5 {
		t.Fatal("expected heading in degrees")
	}
	if s.VerticalRate == nil || math.Abs(*s.VerticalRate-1280*0.3048/60) > 1e-9 {
		t.Fatal("expected vertical rate converted from ft/min")
	}
	if s.OnGround {
		t.Fatal("expected airborne")
	}
}

func TestParseSBSOnGround(t *testing.T) {
	line := "MSG,3,1,1,ABC123,1,2026/08/30,12:00:00.000,2026/08/30,12:00:00.000,,0,5.0,270.0,40.6413,-73.7781,0,,,,,-1"
	s := ParseSBS(line)
	if s == nil {
		t.Fatal("expected parsed state")
	}
	if !s.OnGround {
		t.Fatal("expected on-ground flag")
	}
}

func TestParseSBSPartialFields(t *testing.T) {
	line := "MSG,1,1,1,ABC123,1,2026/08/30,12:00:00.000,2026/08/30,12:00:00.000,UAL123,,,,,,,,,,,0"
	s := ParseSBS(line)
	if s == nil {
		t.Fatal("expected parsed state")
	}
	if s.Position != nil || s.Velocity != nil || s.Heading != nil {
		t.Fatal("expected empty fields left unset")
	}
}

func TestParseSBSRejectsJunk(t *testing.T) {
	for _, line := range []string{
		"",
		"MSG,3,1,1",
		"STA,,1,1,ABC123,1,2026/08/30,12:00:00.000,2026/08/30,12:00:00.000,,,,,,,,,,,,0",
		"MSG,3,1,1,NOTHEX7,1,2026/08/30,12:00:00.000,2026/08/30,12:00:00.000,,,,,,,,,,,,0",
	} {
		if s := ParseSBS(line); s != nil {
			t.Errorf("expected nil for %q, got %+v", line, s)
		}
	}
}
