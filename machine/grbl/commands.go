package grbl

import "github.com/mastercactapus/grblctl/coord"

// Realtime commands. GRBL acts on these as soon as they arrive, so they are
// written as a single byte with no line terminator.
const (
	RealtimeStatus     byte = '?'
	RealtimeFeedHold   byte = '!'
	RealtimeCycleStart byte = '~'
	RealtimeReset      byte = 0x18
)

func isRealtime(b byte) bool {
	switch b {
	case RealtimeStatus, RealtimeFeedHold, RealtimeCycleStart, RealtimeReset:
		return true
	}
	return false
}

const (
	cmdUnlock       = "$X"
	cmdStatus       = "?"
	cmdParameters   = "#"
	cmdParserState  = "$G"
	cmdModalDefault = "G0 G54 G17 G21 G90 G94"
	cmdToolOffset   = "G43.1Z0.000"
	cmdSteppersOn   = "M17"
	cmdFeedHold     = "!"
)

var (
	rawParserState = []byte("$G\n")
	rawAbsolute    = []byte("G90\r\n")
	rawRelative    = []byte("G91\r\n")
)

func setOriginCommand(p coord.Point) string {
	return "G92 x" + coord.FormatFloat(p.X) +
		" y" + coord.FormatFloat(p.Y) +
		" z" + coord.FormatFloat(p.Z) + "\n"
}
