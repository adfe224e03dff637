package rpm

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_ReadAndResetReturnsEdges(t *testing.T) {
	var c Counter
	for i := 0; i < 40; i++ {
		c.OnEdge()
	}
	assert.Equal(t, uint32(40), c.ReadAndReset())
	assert.Equal(t, uint32(0), c.ReadAndReset(), "second read with no edges must be 0")
}

func TestCounter_ConcurrentEdgesAreNotLost(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	var total uint32
	var mu sync.Mutex

	const writers = 4
	const perWriter = 5000

	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				mu.Lock()
				total += c.ReadAndReset()
				mu.Unlock()
				return
			default:
				mu.Lock()
				total += c.ReadAndReset()
				mu.Unlock()
			}
		}
	}()

	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				c.OnEdge()
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-readerDone

	assert.Equal(t, uint32(writers*perWriter), total)
}

func TestScale_Rate(t *testing.T) {
	tests := []struct {
		name    string
		scale   Scale
		count   uint32
		elapsed time.Duration
		want    float32
	}{
		{name: "pulse mode 40 edges over 20ms", scale: Scale{Mode: ModePulse}, count: 40, elapsed: 20 * time.Millisecond, want: 2000},
		{name: "pulse mode zero edges", scale: Scale{Mode: ModePulse}, count: 0, elapsed: 20 * time.Millisecond, want: 0},
		{name: "rpm mode default pulses per rev", scale: Scale{Mode: ModeRPM}, count: 36, elapsed: 100 * time.Millisecond, want: 60},
		{name: "rpm mode one pulse per rev", scale: Scale{Mode: ModeRPM, PulsesPerRev: 1}, count: 1, elapsed: time.Second, want: 60},
		{name: "zero interval", scale: Scale{Mode: ModePulse}, count: 10, elapsed: 0, want: 0},
		{name: "negative interval", scale: Scale{Mode: ModePulse}, count: 10, elapsed: -time.Millisecond, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.scale.Rate(tt.count, tt.elapsed)
			assert.InDelta(t, tt.want, got, 1e-3)
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModePulse, m)

	m, err = ParseMode(" RPM ")
	require.NoError(t, err)
	assert.Equal(t, ModeRPM, m)
	assert.Equal(t, "rpm", m.String())

	_, err = ParseMode("hz")
	assert.Error(t, err)
}
