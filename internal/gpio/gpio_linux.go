//go:build linux

package gpio

import (
	"fmt"
	"os"

	"github.com/warthog618/go-gpiocdev"
)

// Output is a requested output line.
type Output struct {
	chip  *gpiocdev.Chip
	line  *gpiocdev.Line
	level int
}

// Input is a requested input line, optionally watched for edges.
type Input struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func OpenOutput(chip, line, consumer string, initial int) (*Output, error) {
	c, l, err := request(chip, line, gpiocdev.AsOutput(initial), gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}
	return &Output{chip: c, line: l, level: initial}, nil
}

func (o *Output) SetValue(v int) error {
	if o == nil || o.line == nil {
		return fmt.Errorf("gpio: output not open")
	}
	if err := o.line.SetValue(v); err != nil {
		return err
	}
	o.level = v
	return nil
}

// Toggle inverts the last level written.
func (o *Output) Toggle() error {
	if o == nil {
		return fmt.Errorf("gpio: output not open")
	}
	next := 1
	if o.level != 0 {
		next = 0
	}
	return o.SetValue(next)
}

func (o *Output) Close() error {
	if o == nil || o.line == nil {
		return nil
	}
	_ = o.line.SetValue(0)
	err := o.line.Close()
	o.line = nil
	if o.chip != nil {
		_ = o.chip.Close()
		o.chip = nil
	}
	return err
}

func OpenInput(chip, line, consumer string) (*Input, error) {
	c, l, err := request(chip, line, gpiocdev.AsInput, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}
	return &Input{chip: c, line: l}, nil
}

// WatchRising requests line as an input and calls fn once per rising edge.
// fn runs on the gpiocdev event goroutine and must not block.
func WatchRising(chip, line, consumer string, fn func()) (*Input, error) {
	if fn == nil {
		return nil, fmt.Errorf("gpio: edge handler is nil")
	}
	handler := func(evt gpiocdev.LineEvent) {
		if evt.Type == gpiocdev.LineEventRisingEdge {
			fn()
		}
	}
	c, l, err := request(chip, line,
		gpiocdev.AsInput,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(handler),
		gpiocdev.WithConsumer(consumer),
	)
	if err != nil {
		return nil, err
	}
	return &Input{chip: c, line: l}, nil
}

func (i *Input) Value() (int, error) {
	if i == nil || i.line == nil {
		return 0, fmt.Errorf("gpio: input not open")
	}
	return i.line.Value()
}

func (i *Input) Close() error {
	if i == nil || i.line == nil {
		return nil
	}
	err := i.line.Close()
	i.line = nil
	if i.chip != nil {
		_ = i.chip.Close()
		i.chip = nil
	}
	return err
}

func request(chipPath, line string, opts ...gpiocdev.LineReqOption) (*gpiocdev.Chip, *gpiocdev.Line, error) {
	ref, err := parseLineRef(line)
	if err != nil {
		return nil, nil, err
	}

	var names []string
	if entries, err := os.ReadDir("/dev"); err == nil {
		for _, e := range entries {
			names = append(names, e.Name())
		}
	}

	var lastErr error
	for _, cp := range chipCandidates(chipPath, names) {
		chip, err := gpiocdev.NewChip(cp)
		if err != nil {
			lastErr = err
			continue
		}
		offset := ref.offset
		if offset < 0 {
			offset, err = findLine(chip, ref.name)
			if err != nil {
				_ = chip.Close()
				lastErr = err
				continue
			}
		}
		l, err := chip.RequestLine(offset, opts...)
		if err != nil {
			_ = chip.Close()
			lastErr = err
			continue
		}
		return chip, l, nil
	}
	if lastErr != nil {
		return nil, nil, fmt.Errorf("gpio: line %s not available: %w", ref, lastErr)
	}
	return nil, nil, fmt.Errorf("gpio: line %s not found", ref)
}

func findLine(chip *gpiocdev.Chip, name string) (int, error) {
	for off := 0; off < chip.Lines(); off++ {
		info, err := chip.LineInfo(off)
		if err != nil {
			return 0, err
		}
		if info.Name == name {
			return off, nil
		}
	}
	return 0, fmt.Errorf("gpio: no line named %q on %s", name, chip.Name)
}
