//go:build linux

package serialio

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

func openTermios(path string, baud int) (Port, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("serialio: open %s: %w", path, err)
	}

	ok := false
	defer func() {
		if !ok {
			_ = unix.Close(fd)
		}
	}()

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("serialio: get termios %s: %w", path, err)
	}
	spd, err := baudToUnix(baud)
	if err != nil {
		return nil, err
	}

	// Raw 8N1, no echo or line discipline.
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL

	// Reads are only issued after poll reports data, so a single byte
	// satisfies them.
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	t.Cflag &^= unix.CBAUD
	t.Cflag |= spd
	t.Ispeed = spd
	t.Ospeed = spd

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return nil, fmt.Errorf("serialio: set termios %s: %w", path, err)
	}

	f := os.NewFile(uintptr(fd), path)
	if f == nil {
		return nil, fmt.Errorf("serialio: os.NewFile failed for %s", path)
	}
	ok = true
	return newFDPort(f), nil
}

// fdPort polls a file descriptor for readability before each read.
type fdPort struct {
	f   *os.File
	fd  int32
	one [1]byte
}

func newFDPort(f *os.File) *fdPort {
	return &fdPort{f: f, fd: int32(f.Fd())}
}

func (p *fdPort) Readable() (bool, error) {
	fds := []unix.PollFd{{Fd: p.fd, Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, fmt.Errorf("serialio: poll: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	rev := fds[0].Revents
	if rev&unix.POLLIN != 0 {
		return true, nil
	}
	if rev&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
		return false, io.ErrUnexpectedEOF
	}
	return false, nil
}

func (p *fdPort) ReadByte() (byte, error) {
	n, err := p.f.Read(p.one[:])
	if n == 1 {
		return p.one[0], nil
	}
	if err == nil {
		err = ErrNotReady
	}
	return 0, err
}

func (p *fdPort) Close() error { return p.f.Close() }

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	default:
		return 0, fmt.Errorf("serialio: unsupported baud %d", baud)
	}
}
