package adc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRaw(t *testing.T, contents string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "in_voltage0_raw")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestChannel_ReadNormalizes(t *testing.T) {
	p := writeRaw(t, "2048\n")
	ch, err := NewChannel(p, 4096, Calibration{})
	require.NoError(t, err)

	v, err := ch.Read()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-6)
	assert.Equal(t, p, ch.Path())
}

func TestChannel_ReadAppliesCalibration(t *testing.T) {
	p := writeRaw(t, "4095")
	ch, err := NewChannel(p, DefaultFullScale, Calibration{Scale: 200, Offset: -10})
	require.NoError(t, err)

	v, err := ch.Read()
	require.NoError(t, err)
	assert.InDelta(t, 190, v, 1e-4)
}

func TestChannel_ReadErrors(t *testing.T) {
	ch, err := NewChannel(filepath.Join(t.TempDir(), "missing"), DefaultFullScale, Identity)
	require.NoError(t, err)
	_, err = ch.Read()
	assert.Error(t, err)

	ch, err = NewChannel(writeRaw(t, "n/a"), DefaultFullScale, Identity)
	require.NoError(t, err)
	_, err = ch.Read()
	assert.Error(t, err)
}

func TestChannel_ReadFileSeam(t *testing.T) {
	old := readFile
	t.Cleanup(func() { readFile = old })
	boom := errors.New("boom")
	readFile = func(string) ([]byte, error) { return nil, boom }

	ch, err := NewChannel("/sys/bus/iio/devices/iio:device0/in_voltage1_raw", DefaultFullScale, Identity)
	require.NoError(t, err)
	_, err = ch.Read()
	assert.ErrorIs(t, err, boom)
}

func TestNewChannel_Validation(t *testing.T) {
	_, err := NewChannel(" ", DefaultFullScale, Identity)
	assert.Error(t, err)
	_, err = NewChannel("/x", 0, Identity)
	assert.Error(t, err)
	_, err = NewChannel("/x", math32.NaN(), Identity)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, float32(0), Normalize(-5, 4095))
	assert.Equal(t, float32(1), Normalize(5000, 4095))
	assert.Equal(t, float32(0), Normalize(math32.NaN(), 4095))
	assert.Equal(t, float32(0), Normalize(100, 0))
	assert.InDelta(t, 0.25, Normalize(1024, 4096), 1e-6)
}
