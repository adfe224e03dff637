package serialio

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// pollTimeout bounds each Readable probe on the go.bug.st backend.
const pollTimeout = time.Millisecond

func openBugst(device string, baud int) (Port, error) {
	p, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("serialio: open %s: %w", device, err)
	}
	if err := p.SetReadTimeout(pollTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("serialio: set read timeout on %s: %w", device, err)
	}
	return &peekPort{r: p, c: p}, nil
}

// Ports lists serial devices visible to the go.bug.st backend.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serialio: list ports: %w", err)
	}
	return ports, nil
}
