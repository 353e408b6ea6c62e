package machine

import (
	"github.com/mastercactapus/grblctl/coord"
)

// MovementMode is the distance mode last pushed to the device.
type MovementMode int

const (
	// ModeUnknown means the device modal state has not been set by us
	// since connecting, or was lost to a reset.
	ModeUnknown MovementMode = iota
	ModeAbsolute
	ModeRelative
)

func (m MovementMode) String() string {
	switch m {
	case ModeAbsolute:
		return "absolute"
	case ModeRelative:
		return "relative"
	}
	return "unknown"
}

func (m MovementMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Session is the local view of the device for one connection.
//
// Position is whatever was last set with an origin command. It is never
// checked against the device.
type Session struct {
	Position     coord.Point
	Mode         MovementMode
	DefaultSpeed float64
}

// Status is a parsed GRBL status report.
type Status struct {
	State string
	MPos  coord.Point
	WCO   coord.Point
	Feed  float64
	Speed float64
}

// WPos returns the work position for the report.
func (s Status) WPos() coord.Point {
	return s.MPos.Sub(s.WCO)
}
