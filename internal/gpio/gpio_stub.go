//go:build !linux

package gpio

import "fmt"

var errUnsupported = fmt.Errorf("gpio: unsupported on this platform")

type Output struct{}

type Input struct{}

func OpenOutput(chip, line, consumer string, initial int) (*Output, error) {
	return nil, errUnsupported
}

func OpenInput(chip, line, consumer string) (*Input, error) { return nil, errUnsupported }

func WatchRising(chip, line, consumer string, fn func()) (*Input, error) {
	return nil, errUnsupported
}

func (o *Output) SetValue(v int) error { return errUnsupported }
func (o *Output) Toggle() error        { return errUnsupported }
func (o *Output) Close() error         { return nil }
func (i *Input) Value() (int, error)   { return 0, errUnsupported }
func (i *Input) Close() error          { return nil }
