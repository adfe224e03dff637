// Package adc reads the rig's analog transducers.
//
// Readings come from Linux IIO raw sysfs attributes (in_voltageN_raw). A raw
// count is normalized to [0, 1] against the converter's full scale and then
// mapped to physical units with a linear calibration.
package adc

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// DefaultFullScale is the 12-bit converter maximum.
const DefaultFullScale = 4095

var readFile = os.ReadFile

// Calibration maps a normalized reading n to Scale*n + Offset.
type Calibration struct {
	Scale  float32
	Offset float32
}

// Identity leaves the normalized reading unchanged.
var Identity = Calibration{Scale: 1}

func (c Calibration) Apply(n float32) float32 { return c.Scale*n + c.Offset }

// Channel is one IIO voltage input.
type Channel struct {
	path      string
	fullScale float32
	cal       Calibration
}

func NewChannel(path string, fullScale float32, cal Calibration) (*Channel, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("adc: path is required")
	}
	if fullScale <= 0 || math32.IsNaN(fullScale) || math32.IsInf(fullScale, 0) {
		return nil, fmt.Errorf("adc: invalid full scale %v for %s", fullScale, path)
	}
	if cal.Scale == 0 && cal.Offset == 0 {
		cal = Identity
	}
	return &Channel{path: path, fullScale: fullScale, cal: cal}, nil
}

func (c *Channel) Path() string { return c.path }

// Read samples the channel and returns the calibrated value.
func (c *Channel) Read() (float32, error) {
	b, err := readFile(c.path)
	if err != nil {
		return 0, fmt.Errorf("adc: read %s: %w", c.path, err)
	}
	raw, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 32)
	if err != nil {
		return 0, fmt.Errorf("adc: parse %s: %w", c.path, err)
	}
	return c.cal.Apply(Normalize(float32(raw), c.fullScale)), nil
}

// Normalize maps raw onto [0, 1] against fullScale, clamping out-of-range
// counts. NaN maps to 0.
func Normalize(raw, fullScale float32) float32 {
	if fullScale <= 0 || math32.IsNaN(raw) {
		return 0
	}
	return math32.Max(0, math32.Min(1, raw/fullScale))
}
