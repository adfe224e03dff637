package sim

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// WeatherStation emits the station's serial stream: one MWV sentence per
// Period, with a foreign XDR sentence interleaved every third period so the
// decoder has something to ignore.
//
// Direction and speed wander sinusoidally around the configured values.
type WeatherStation struct {
	DirectionDeg float64
	SpeedKt      float64
	Period       time.Duration

	now func() time.Time

	mu     sync.Mutex
	buf    []byte
	next   time.Time
	n      int
	closed bool
}

func (w *WeatherStation) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}

func (w *WeatherStation) Readable() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false, fmt.Errorf("sim: weather station closed")
	}
	w.fillLocked(w.clock())
	return len(w.buf) > 0, nil
}

func (w *WeatherStation) ReadByte() (byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, fmt.Errorf("sim: weather station closed")
	}
	w.fillLocked(w.clock())
	if len(w.buf) == 0 {
		return 0, fmt.Errorf("sim: no data ready")
	}
	b := w.buf[0]
	w.buf = w.buf[1:]
	return b, nil
}

func (w *WeatherStation) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.buf = nil
	return nil
}

func (w *WeatherStation) fillLocked(now time.Time) {
	if now.Before(w.next) {
		return
	}
	period := w.Period
	if period <= 0 {
		period = time.Second
	}
	dir, spd := w.Wind(now)
	w.buf = append(w.buf, MWVSentence(dir, spd)...)
	if w.n%3 == 2 {
		w.buf = append(w.buf, nmeaLine("WIXDR,C,021.5,C,AIRTEMP")...)
	}
	w.n++
	w.next = now.Add(period)
}

// Wind returns the simulated direction and speed at now.
func (w *WeatherStation) Wind(now time.Time) (dirDeg, speedKt float64) {
	const cycle = 60 * time.Second
	phase := float64(now.UnixNano()%cycle.Nanoseconds()) / float64(cycle.Nanoseconds())
	wv := 2 * math.Pi * phase

	dirDeg = math.Mod(w.DirectionDeg+15*math.Sin(wv)+360, 360)
	speedKt = math.Max(0, w.SpeedKt+2*math.Sin(2*wv))
	return dirDeg, speedKt
}

// MWVSentence formats a relative-wind MWV sentence in the station's fixed
// column layout.
func MWVSentence(dirDeg, speedKt float64) string {
	return nmeaLine(fmt.Sprintf("IIMWV,%05.1f,R,%05.1f,N,A", dirDeg, speedKt))
}

func nmeaLine(payload string) string {
	ck := byte(0)
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X\r\n", payload, ck)
}
