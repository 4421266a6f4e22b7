package models

import "testing"

func TestParseAircraftID(t *testing.T) {
	id, err := ParseAircraftID("ABC123")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if id != 0xABC123 {
		t.Fatalf("expected ABC123 got %s", id)
	}

	short, err := ParseAircraftID("4ca")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if short.String() != "0004CA" {
		t.Fatalf("expected zero padded string, got %s", short)
	}
}

func TestParseAircraftIDRejectsInvalid(t *testing.T) {
	for _, s := range []string{"", "1234567", "XYZ", "12 34"} {
		if _, err := ParseAircraftID(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestAircraftIDFromInt(t *testing.T) {
	if _, err := AircraftIDFromInt(0xFFFFFF); err != nil {
		t.Fatalf("max address rejected: %v", err)
	}
	if _, err := AircraftIDFromInt(0x1000000); err == nil {
		t.Fatal("expected error for address above 24 bits")
	}
}

func TestAircraftIDTextRoundTrip(t *testing.T) {
	id := AircraftID(0x4CA123)
	b, err := id.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back AircraftID
	if err := back.UnmarshalText(b); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back != id {
		t.Fatalf("expected %s got %s", id, back)
	}
}
