package sim

import (
	"math"
	"time"
)

// Analog is a sinusoidal transducer stand-in producing normalized readings.
type Analog struct {
	Base      float32
	Amplitude float32
	Period    time.Duration

	now func() time.Time
}

func (a *Analog) Read() (float32, error) {
	now := time.Now()
	if a.now != nil {
		now = a.now()
	}
	period := a.Period
	if period <= 0 {
		period = 10 * time.Second
	}
	phase := float64(now.UnixNano()%period.Nanoseconds()) / float64(period.Nanoseconds())
	v := float64(a.Base) + float64(a.Amplitude)*math.Sin(2*math.Pi*phase)
	return float32(math.Max(0, math.Min(1, v))), nil
}
