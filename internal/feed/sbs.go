package feed

import (
	"strconv"
	"strings"
	"time"

	"aircraft-fusion/pkg/models"
)

// BaseStation CSV field layout.
const (
	idxMessageType = 0
	idxICAO        = 4
	idxCallsign    = 10
	idxAltitude    = 11
	idxGroundSpeed = 12
	idxHeading     = 13
	idxLatitude    = 14
	idxLongitude   = 15
	idxVertRate    = 16
	idxOnGround    = 21
	minFields      = 22
)

const (
	feetToMeters     = 0.3048
	knotsToMetersSec = 0.514444
)

// ParseSBS converts one BaseStation CSV line into a state snapshot, with
// feet/knots normalized to meters and m/s. Returns nil for non-MSG lines and
// lines without a valid transponder address.
func ParseSBS(line string) *models.StateData {
	fields := strings.Split(line, ",")
	if len(fields) < minFields {
		return nil
	}
	if fields[idxMessageType] != "MSG" {
		return nil
	}

	id, err := models.ParseAircraftID(strings.TrimSpace(fields[idxICAO]))
	if err != nil {
		return nil
	}

	s := &models.StateData{
		ID:   id,
		Time: time.Now().UTC(),
	}

	if cs := strings.TrimSpace(fields[idxCallsign]); cs != "" {
		s.Callsign = cs
	}

	lat := parseFloat(fields[idxLatitude])
	lon := parseFloat(fields[idxLongitude])
	if lat != nil && lon != nil {
		pos := models.GeodeticPosition{Lat: *lat, Lon: *lon}
		if alt := parseFloat(fields[idxAltitude]); alt != nil {
			pos.Alt = *alt * feetToMeters
		}
		s.Position = &pos
	}

	if spd := parseFloat(fields[idxGroundSpeed]); spd != nil {
		ms := *spd * knotsToMetersSec
		s.Velocity = &ms
	}
	if hdg := parseFloat(fields[idxHeading]); hdg != nil {
		s.Heading = hdg
	}
	if vr := parseFloat(fields[idxVertRate]); vr != nil {
		ms := *vr * feetToMeters / 60
		s.VerticalRate = &ms
	}

	ground := strings.TrimSpace(fields[idxOnGround])
	s.OnGround = ground == "-1" || ground == "1"

	return s
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
