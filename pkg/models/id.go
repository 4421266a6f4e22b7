package models

import (
	"fmt"
	"strconv"
)

// AircraftID is a 24-bit ICAO transponder address.
type AircraftID uint32

const maxAircraftID = 0xFFFFFF

// AircraftIDFromInt validates that v fits in 24 bits.
func AircraftIDFromInt(v uint32) (AircraftID, error) {
	if v > maxAircraftID {
		return 0, fmt.Errorf("aircraft id %#x exceeds 24 bits", v)
	}
	return AircraftID(v), nil
}

// ParseAircraftID parses a 1-6 digit hex transponder address.
func ParseAircraftID(s string) (AircraftID, error) {
	if len(s) < 1 || len(s) > 6 {
		return 0, fmt.Errorf("aircraft id %q: must be 1-6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("aircraft id %q: not a hex address", s)
	}
	return AircraftID(v), nil
}

// String renders the address as zero-padded uppercase hex.
func (id AircraftID) String() string {
	return fmt.Sprintf("%06X", uint32(id))
}

func (id AircraftID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AircraftID) UnmarshalText(b []byte) error {
	v, err := ParseAircraftID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
