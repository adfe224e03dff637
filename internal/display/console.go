package display

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"senstel/internal/record"
)

// clearScreen erases the terminal and homes the cursor.
const clearScreen = "\x1b[2J\x1b[H"

// Console renders the record to a terminal each time the ready flag is
// raised. It is the external consumer of the acquisition core: it polls the
// flag at its own cadence and clears it after rendering.
type Console struct {
	w         io.Writer
	rec       *record.Record
	flag      *record.ReadyFlag
	period    time.Duration
	rateLabel string
}

func NewConsole(w io.Writer, rec *record.Record, flag *record.ReadyFlag, period time.Duration, rateLabel string) (*Console, error) {
	if w == nil {
		return nil, fmt.Errorf("display: writer is nil")
	}
	if rec == nil || flag == nil {
		return nil, fmt.Errorf("display: record and flag are required")
	}
	if period <= 0 {
		period = 5 * time.Millisecond
	}
	if rateLabel == "" {
		rateLabel = "rpm"
	}
	return &Console{w: w, rec: rec, flag: flag, period: period, rateLabel: rateLabel}, nil
}

// Run polls until ctx is done. Write errors are returned; a terminal that
// goes away ends the consumer, not the acquisition loops.
func (c *Console) Run(ctx context.Context) error {
	t := time.NewTicker(c.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := c.Poll(); err != nil {
				return err
			}
		}
	}
}

// Poll renders once if the flag is raised and reports whether it did.
func (c *Console) Poll() (bool, error) {
	if !c.flag.Take() {
		return false, nil
	}
	return true, Render(c.w, c.rec.Snapshot(), c.rateLabel)
}

// Render writes one screen for snap.
func Render(w io.Writer, snap record.Snapshot, rateLabel string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, clearScreen)
	fmt.Fprintf(bw, "Torque = %f Nm\n\r", snap.TorqueNm)
	fmt.Fprintf(bw, "Loadcell = %f N\n\r", snap.LoadcellN)
	fmt.Fprintf(bw, "RPM = %f %s\n\r", snap.RotorRate, rateLabel)
	fmt.Fprintf(bw, "Wind direction = %f degs\n\r", snap.WindDirDeg)
	fmt.Fprintf(bw, "Wind speed = %f knots\n\r", snap.WindSpeedKt)
	fmt.Fprintf(bw, "Pitch = %d \n\r", snap.Pitch)
	return bw.Flush()
}
