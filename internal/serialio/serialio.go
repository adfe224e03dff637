package serialio

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultBaud is the weather station's line rate.
const DefaultBaud = 4800

// Backends accepted by Open.
const (
	BackendTermios = "termios"
	BackendBugst   = "bugst"
)

// ErrNotReady is returned by ReadByte when no byte is waiting.
var ErrNotReady = errors.New("serialio: no data ready")

// Port is a byte-oriented serial input polled without blocking.
type Port interface {
	// Readable reports whether ReadByte will return a byte immediately.
	Readable() (bool, error)
	ReadByte() (byte, error)
	Close() error
}

var openTermiosFn = openTermios
var openBugstFn = openBugst

// Open opens device at baud with the named backend. An empty backend
// selects termios.
func Open(backend, device string, baud int) (Port, error) {
	device = strings.TrimSpace(device)
	if device == "" {
		return nil, fmt.Errorf("serialio: device is required")
	}
	if baud <= 0 {
		baud = DefaultBaud
	}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendTermios:
		return openTermiosFn(device, baud)
	case BackendBugst:
		return openBugstFn(device, baud)
	default:
		return nil, fmt.Errorf("serialio: unknown backend %q", backend)
	}
}

// peekPort adapts a reader with a short read timeout to Port: Readable
// performs a one-byte read and holds the result for ReadByte.
type peekPort struct {
	r       io.Reader
	c       io.Closer
	one     [1]byte
	pending bool
}

func (p *peekPort) Readable() (bool, error) {
	if p.pending {
		return true, nil
	}
	n, err := p.r.Read(p.one[:])
	if n == 1 {
		p.pending = true
	}
	if err != nil && !p.pending {
		return false, err
	}
	return p.pending, nil
}

func (p *peekPort) ReadByte() (byte, error) {
	if !p.pending {
		ok, err := p.Readable()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrNotReady
		}
	}
	p.pending = false
	return p.one[0], nil
}

func (p *peekPort) Close() error {
	if p.c == nil {
		return nil
	}
	return p.c.Close()
}
