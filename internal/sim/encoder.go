package sim

import (
	"sync/atomic"

	"senstel/internal/pitch"
)

// Encoder is a 12-bit bit-serial absolute encoder. Each rising clock edge
// presents the next position bit, MSB first; after the last bit the next
// rising edge starts a new transfer with a freshly latched position.
type Encoder struct {
	pos atomic.Uint32

	clk     int
	bit     int
	latched uint16
	out     int
}

func NewEncoder(position uint16) *Encoder {
	e := &Encoder{}
	e.SetPosition(position)
	return e
}

// SetPosition changes the position latched at the start of the next transfer.
func (e *Encoder) SetPosition(p uint16) { e.pos.Store(uint32(p & pitch.MaxPosition)) }

func (e *Encoder) Position() uint16 { return uint16(e.pos.Load()) }

// SetValue drives the clock input.
func (e *Encoder) SetValue(v int) error {
	rising := e.clk == 0 && v != 0
	e.clk = v
	if !rising {
		return nil
	}
	if e.bit == 0 {
		e.latched = e.Position()
	}
	e.out = int(e.latched>>(pitch.Bits-1-e.bit)) & 1
	e.bit++
	if e.bit == pitch.Bits {
		e.bit = 0
	}
	return nil
}

// Value reads the data output.
func (e *Encoder) Value() (int, error) { return e.out, nil }
