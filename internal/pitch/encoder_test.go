package pitch

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

// fakeBus records clock levels and serves one scripted bit per rising edge.
type fakeBus struct {
	bits    []int
	clock   []int
	rises   int
	level   int
	setErr  error
	readErr error
}

func (f *fakeBus) SetValue(v int) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.level == 0 && v == 1 {
		f.rises++
	}
	f.level = v
	f.clock = append(f.clock, v)
	return nil
}

func (f *fakeBus) Value() (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	if f.rises == 0 || f.rises > len(f.bits) {
		return 0, nil
	}
	return f.bits[f.rises-1], nil
}

func noHold(t *testing.T) {
	t.Helper()
	old := hold
	hold = func(time.Duration) {}
	t.Cleanup(func() { hold = old })
}

func TestReadPosition_MSBFirst(t *testing.T) {
	noHold(t)
	bus := &fakeBus{bits: []int{1, 0, 1, 1, 0, 0, 0, 0, 1, 0, 0, 1}}
	enc, err := New(bus, bus, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := enc.ReadPosition()
	if err != nil {
		t.Fatalf("ReadPosition: %v", err)
	}
	if got != 0xB09 {
		t.Fatalf("position=%#x want 0xb09", got)
	}
	if bus.rises != Bits {
		t.Fatalf("rising edges=%d want %d", bus.rises, Bits)
	}
	if len(bus.clock) != 2*Bits {
		t.Fatalf("clock writes=%d want %d", len(bus.clock), 2*Bits)
	}
	for i, v := range bus.clock {
		want := i % 2
		if v != want {
			t.Fatalf("clock[%d]=%d want %d (low then high each cycle)", i, v, want)
		}
	}
}

func TestReadPosition_NonzeroLevelIsOne(t *testing.T) {
	noHold(t)
	bus := &fakeBus{bits: []int{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5}}
	enc, _ := New(bus, bus, time.Microsecond)
	got, err := enc.ReadPosition()
	if err != nil {
		t.Fatalf("ReadPosition: %v", err)
	}
	if got != MaxPosition {
		t.Fatalf("position=%d want %d", got, MaxPosition)
	}
}

func TestReadPosition_RandomBitsRoundTrip(t *testing.T) {
	noHold(t)
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		want := uint16(rng.Intn(MaxPosition + 1))
		bits := make([]int, Bits)
		for i := 0; i < Bits; i++ {
			bits[i] = int(want>>(Bits-1-i)) & 1
		}
		bus := &fakeBus{bits: bits}
		enc, _ := New(bus, bus, 0)
		got, err := enc.ReadPosition()
		if err != nil {
			t.Fatalf("ReadPosition: %v", err)
		}
		if got != want {
			t.Fatalf("position=%d want %d bits=%v", got, want, bits)
		}
		if got > MaxPosition {
			t.Fatalf("position=%d out of range", got)
		}
	}
}

func TestReadPosition_PropagatesLineErrors(t *testing.T) {
	noHold(t)
	boom := errors.New("boom")

	enc, _ := New(&fakeBus{setErr: boom}, &fakeBus{}, 0)
	if _, err := enc.ReadPosition(); !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}

	bus := &fakeBus{readErr: boom}
	enc, _ = New(bus, bus, 0)
	if _, err := enc.ReadPosition(); !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
}

func TestNew_RequiresLines(t *testing.T) {
	if _, err := New(nil, &fakeBus{}, 0); err == nil {
		t.Fatalf("expected error for nil clock")
	}
	if _, err := New(&fakeBus{}, nil, 0); err == nil {
		t.Fatalf("expected error for nil data")
	}
}

func TestHold_SpinsAtLeastDuration(t *testing.T) {
	start := time.Now()
	hold(200 * time.Microsecond)
	if el := time.Since(start); el < 200*time.Microsecond {
		t.Fatalf("hold returned after %v", el)
	}
}
