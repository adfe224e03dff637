package pitch

import (
	"fmt"
	"time"
)

// Bits is the number of clock cycles per position read.
const Bits = 12

// MaxPosition is the largest position a read can produce.
const MaxPosition = 1<<Bits - 1

// DefaultHalfPeriod is the hold time after each clock edge.
const DefaultHalfPeriod = time.Microsecond

// ClockLine is the master-driven clock output.
type ClockLine interface {
	SetValue(v int) error
}

// DataLine is the encoder's serial data output, sampled by the master.
type DataLine interface {
	Value() (int, error)
}

// hold waits for d. time.Sleep resolution is far coarser than the encoder
// half period, so this spins.
var hold = func(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

// Encoder reads a 12-bit absolute position over a clock/data line pair.
//
// The protocol has no handshake: the encoder is trusted to settle within one
// half period, and a garbled transfer silently yields a wrong position.
type Encoder struct {
	clk        ClockLine
	data       DataLine
	halfPeriod time.Duration
}

func New(clk ClockLine, data DataLine, halfPeriod time.Duration) (*Encoder, error) {
	if clk == nil {
		return nil, fmt.Errorf("pitch: clock line is nil")
	}
	if data == nil {
		return nil, fmt.Errorf("pitch: data line is nil")
	}
	if halfPeriod <= 0 {
		halfPeriod = DefaultHalfPeriod
	}
	return &Encoder{clk: clk, data: data, halfPeriod: halfPeriod}, nil
}

// ReadPosition clocks out Bits cycles and assembles the sampled bits MSB
// first. Any nonzero data level is a 1.
func (e *Encoder) ReadPosition() (uint16, error) {
	var pos uint16
	for i := 0; i < Bits; i++ {
		pos <<= 1
		if err := e.clk.SetValue(0); err != nil {
			return 0, fmt.Errorf("pitch: clock low (bit %d): %w", i, err)
		}
		hold(e.halfPeriod)
		if err := e.clk.SetValue(1); err != nil {
			return 0, fmt.Errorf("pitch: clock high (bit %d): %w", i, err)
		}
		hold(e.halfPeriod)
		v, err := e.data.Value()
		if err != nil {
			return 0, fmt.Errorf("pitch: sample (bit %d): %w", i, err)
		}
		if v != 0 {
			pos |= 1
		}
	}
	return pos, nil
}
