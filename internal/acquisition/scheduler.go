package acquisition

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"senstel/internal/record"
	"senstel/internal/rpm"
	"senstel/internal/weather"
)

// ByteSource is the weather station's serial input.
type ByteSource interface {
	Readable() (bool, error)
	ReadByte() (byte, error)
}

// Analog is one analog transducer channel.
type Analog interface {
	Read() (float32, error)
}

// PositionReader is the pitch encoder.
type PositionReader interface {
	ReadPosition() (uint16, error)
}

// Indicator is a status output toggled by the loops (typically an LED).
type Indicator interface {
	Toggle() error
}

// Devices are the rig inputs the loops sample. A nil device is skipped and
// its record field keeps its zero value.
type Devices struct {
	Weather  ByteSource
	Torque   Analog
	Loadcell Analog
	Pitch    PositionReader

	WeatherLED Indicator
	SampleLED  Indicator
	PublishLED Indicator
}

type Config struct {
	SamplePeriod  time.Duration
	PublishPeriod time.Duration
	WeatherPoll   time.Duration
	LogEvery      time.Duration
	Scale         rpm.Scale
	// DebugLEDs toggles SampleLED and PublishLED once per iteration.
	DebugLEDs bool
}

type Stats struct {
	WeatherBytes   uint64 `json:"weather_bytes"`
	Sentences      uint64 `json:"sentences"`
	WindUpdates    uint64 `json:"wind_updates"`
	Overflows      uint64 `json:"overflows"`
	Samples        uint64 `json:"samples"`
	SampleFaults   uint64 `json:"sample_faults"`
	PitchFaults    uint64 `json:"pitch_faults"`
	Publishes      uint64 `json:"publishes"`
	Panics         uint64 `json:"panics"`
	LastError      string `json:"last_error,omitempty"`
	LastErrorAtUTC string `json:"last_error_at_utc,omitempty"`
}

var nowFn = time.Now

// Scheduler runs the weather, sampling and publish loops. Each loop owns a
// disjoint set of record fields.
type Scheduler struct {
	cfg     Config
	dev     Devices
	rec     *record.Record
	counter *rpm.Counter
	pub     *record.Publisher

	// Owned by the weather loop.
	asm weather.Assembler
	// Owned by the sampling loop.
	lastSample time.Time

	weatherBytes atomic.Uint64
	sentences    atomic.Uint64
	windUpdates  atomic.Uint64
	overflows    atomic.Uint64
	samples      atomic.Uint64
	sampleFaults atomic.Uint64
	pitchFaults  atomic.Uint64
	publishes    atomic.Uint64
	panics       atomic.Uint64

	errMu     sync.Mutex
	lastErr   string
	lastErrAt time.Time
	lastLog   map[string]time.Time

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(cfg Config, dev Devices, rec *record.Record, counter *rpm.Counter, pub *record.Publisher) (*Scheduler, error) {
	if rec == nil {
		return nil, fmt.Errorf("acquisition: record is nil")
	}
	if counter == nil {
		return nil, fmt.Errorf("acquisition: counter is nil")
	}
	if pub == nil {
		return nil, fmt.Errorf("acquisition: publisher is nil")
	}
	if cfg.SamplePeriod <= 0 {
		cfg.SamplePeriod = 20 * time.Millisecond
	}
	if cfg.PublishPeriod <= 0 {
		cfg.PublishPeriod = 5 * cfg.SamplePeriod
	}
	if cfg.WeatherPoll <= 0 {
		cfg.WeatherPoll = 2 * time.Millisecond
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 5 * time.Second
	}
	return &Scheduler{
		cfg:     cfg,
		dev:     dev,
		rec:     rec,
		counter: counter,
		pub:     pub,
		lastLog: map[string]time.Time{},
		stopCh:  make(chan struct{}),
	}, nil
}

// Start launches the loops and returns immediately. They run until ctx is
// done or Close is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("acquisition: scheduler is nil")
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.started = true

	if s.dev.Weather != nil {
		s.goLoop(ctx, "weather", s.cfg.WeatherPoll, s.pollWeather)
	}
	s.goLoop(ctx, "sample", s.cfg.SamplePeriod, s.sampleOnce)
	s.goLoop(ctx, "publish", s.cfg.PublishPeriod, s.publishOnce)

	log.Printf("acquisition started sample=%s publish=%s weather_poll=%s rate=%s",
		s.cfg.SamplePeriod, s.cfg.PublishPeriod, s.cfg.WeatherPoll, s.cfg.Scale.Mode)
	return nil
}

// Close stops the loops and waits for them to return. Safe to call more than
// once and before Start.
func (s *Scheduler) Close() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Scheduler) goLoop(ctx context.Context, name string, period time.Duration, step func(now time.Time)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case now := <-t.C:
				s.guard(name, func() { step(now) })
			}
		}
	}()
}

// guard runs one loop iteration; a panic is recorded and the loop goes on.
func (s *Scheduler) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.panics.Add(1)
			s.fault(name, fmt.Errorf("acquisition: %s loop panic: %v", name, r))
		}
	}()
	fn()
}

// pollWeather drains every byte currently readable from the station.
func (s *Scheduler) pollWeather(time.Time) {
	for {
		ok, err := s.dev.Weather.Readable()
		if err != nil {
			s.fault("weather", fmt.Errorf("acquisition: weather poll: %w", err))
			return
		}
		if !ok {
			return
		}
		b, err := s.dev.Weather.ReadByte()
		if err != nil {
			s.fault("weather", fmt.Errorf("acquisition: weather read: %w", err))
			return
		}
		s.weatherBytes.Add(1)
		s.feedWeather(b)
	}
}

func (s *Scheduler) feedWeather(b byte) {
	sentence, ok, err := s.asm.Feed(b)
	if errors.Is(err, weather.ErrOverflow) {
		s.overflows.Add(1)
		s.fault("weather-overflow", err)
	}
	if !ok {
		return
	}
	s.sentences.Add(1)
	w, ok := weather.ParseMWV(sentence)
	if !ok {
		return
	}
	s.rec.SetWind(w.DirectionDeg, w.SpeedKt)
	s.windUpdates.Add(1)
	if s.dev.WeatherLED != nil {
		_ = s.dev.WeatherLED.Toggle()
	}
}

func (s *Scheduler) sampleOnce(now time.Time) {
	if s.dev.Torque != nil {
		if v, err := s.dev.Torque.Read(); err != nil {
			s.sampleFaults.Add(1)
			s.fault("torque", err)
		} else {
			s.rec.SetTorque(v)
		}
	}
	if s.dev.Loadcell != nil {
		if v, err := s.dev.Loadcell.Read(); err != nil {
			s.sampleFaults.Add(1)
			s.fault("loadcell", err)
		} else {
			s.rec.SetLoadcell(v)
		}
	}

	count := s.counter.ReadAndReset()
	elapsed := s.cfg.SamplePeriod
	if !s.lastSample.IsZero() {
		elapsed = now.Sub(s.lastSample)
	}
	s.lastSample = now
	s.rec.SetRotorRate(s.cfg.Scale.Rate(count, elapsed))

	if s.dev.Pitch != nil {
		if p, err := s.dev.Pitch.ReadPosition(); err != nil {
			s.pitchFaults.Add(1)
			s.fault("pitch", err)
		} else {
			s.rec.SetPitch(p)
		}
	}

	s.samples.Add(1)
	if s.cfg.DebugLEDs && s.dev.SampleLED != nil {
		_ = s.dev.SampleLED.Toggle()
	}
}

func (s *Scheduler) publishOnce(time.Time) {
	s.pub.Publish()
	s.publishes.Add(1)
	if s.cfg.DebugLEDs && s.dev.PublishLED != nil {
		_ = s.dev.PublishLED.Toggle()
	}
}

// fault keeps err as the last error and logs it at most once per LogEvery
// for each source.
func (s *Scheduler) fault(source string, err error) {
	now := nowFn().UTC()
	s.errMu.Lock()
	s.lastErr = err.Error()
	s.lastErrAt = now
	last, seen := s.lastLog[source]
	shouldLog := !seen || now.Sub(last) >= s.cfg.LogEvery
	if shouldLog {
		s.lastLog[source] = now
	}
	s.errMu.Unlock()

	if shouldLog {
		log.Printf("acquisition: %s: %v", source, err)
	}
}

func (s *Scheduler) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	st := Stats{
		WeatherBytes: s.weatherBytes.Load(),
		Sentences:    s.sentences.Load(),
		WindUpdates:  s.windUpdates.Load(),
		Overflows:    s.overflows.Load(),
		Samples:      s.samples.Load(),
		SampleFaults: s.sampleFaults.Load(),
		PitchFaults:  s.pitchFaults.Load(),
		Publishes:    s.publishes.Load(),
		Panics:       s.panics.Load(),
	}
	s.errMu.Lock()
	st.LastError = s.lastErr
	if !s.lastErrAt.IsZero() {
		st.LastErrorAtUTC = s.lastErrAt.Format(time.RFC3339Nano)
	}
	s.errMu.Unlock()
	return st
}
