package rpm

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Counter counts rising edges on the shaft sensor line.
//
// OnEdge is called from the edge event context; ReadAndReset from the
// sampling loop. The read and the reset are one atomic exchange, so no edge
// is lost between them.
type Counter struct {
	n atomic.Uint32
}

func (c *Counter) OnEdge() { c.n.Add(1) }

// ReadAndReset returns the edges seen since the previous call and zeroes the
// count.
func (c *Counter) ReadAndReset() uint32 { return c.n.Swap(0) }

// Mode selects how a pulse count is reported.
type Mode int

const (
	// ModePulse reports count*1000/elapsed_ms (the rig's "kHz" output).
	ModePulse Mode = iota
	// ModeRPM further converts to revolutions per minute.
	ModeRPM
)

// DefaultPulsesPerRev matches the 60/360 factor of the rig's shaft sensor.
const DefaultPulsesPerRev = 360

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pulse", "khz":
		return ModePulse, nil
	case "rpm":
		return ModeRPM, nil
	default:
		return ModePulse, fmt.Errorf("rpm: unknown mode %q", s)
	}
}

func (m Mode) String() string {
	if m == ModeRPM {
		return "rpm"
	}
	return "pulse"
}

// Scale converts a pulse count over an interval to the configured unit.
type Scale struct {
	Mode         Mode
	PulsesPerRev float32
}

// Rate returns count * (1000 / elapsed_ms), converted to rpm in ModeRPM.
// A non-positive interval yields 0.
func (s Scale) Rate(count uint32, elapsed time.Duration) float32 {
	if elapsed <= 0 {
		return 0
	}
	ms := float32(elapsed) / float32(time.Millisecond)
	rate := float32(count) * (1000 / ms)
	if s.Mode == ModeRPM {
		ppr := s.PulsesPerRev
		if ppr <= 0 {
			ppr = DefaultPulsesPerRev
		}
		rate *= 60 / ppr
	}
	return rate
}
