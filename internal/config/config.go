package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	RPM         RPMConfig         `yaml:"rpm"`
	Weather     WeatherConfig     `yaml:"weather"`
	Analog      AnalogConfig      `yaml:"analog"`
	Pitch       PitchConfig       `yaml:"pitch"`
	Debug       DebugConfig       `yaml:"debug"`
	Display     DisplayConfig     `yaml:"display"`
	Sim         SimConfig         `yaml:"sim"`
}

type AcquisitionConfig struct {
	SamplePeriod  time.Duration `yaml:"sample_period"`
	PublishPeriod time.Duration `yaml:"publish_period"`
	WeatherPoll   time.Duration `yaml:"weather_poll"`
	// LogEvery limits repeated device error logs to one line per source.
	LogEvery time.Duration `yaml:"log_every"`
}

type RPMConfig struct {
	// Mode is "pulse" (count*1000/ms) or "rpm".
	Mode         string  `yaml:"mode"`
	PulsesPerRev float64 `yaml:"pulses_per_rev"`
	Chip         string  `yaml:"chip"`
	Line         string  `yaml:"line"`
}

type WeatherConfig struct {
	Enable  bool   `yaml:"enable"`
	Backend string `yaml:"backend"`
	Device  string `yaml:"device"`
	Baud    int    `yaml:"baud"`
}

type AnalogConfig struct {
	Torque   ChannelConfig `yaml:"torque"`
	Loadcell ChannelConfig `yaml:"loadcell"`
}

type ChannelConfig struct {
	Path      string  `yaml:"path"`
	FullScale float64 `yaml:"full_scale"`
	Scale     float64 `yaml:"scale"`
	Offset    float64 `yaml:"offset"`
}

type PitchConfig struct {
	Chip       string        `yaml:"chip"`
	Clock      string        `yaml:"clock"`
	Data       string        `yaml:"data"`
	HalfPeriod time.Duration `yaml:"half_period"`
}

type DebugConfig struct {
	// LEDs enables the per-iteration sample and publish indicators.
	LEDs       bool   `yaml:"leds"`
	Chip       string `yaml:"chip"`
	WeatherLED string `yaml:"weather_led"`
	SampleLED  string `yaml:"sample_led"`
	PublishLED string `yaml:"publish_led"`
}

type DisplayConfig struct {
	Enable *bool         `yaml:"enable"`
	Period time.Duration `yaml:"period"`
}

// Enabled reports whether the console display runs; it is on unless set false.
func (d DisplayConfig) Enabled() bool { return d.Enable == nil || *d.Enable }

type SimConfig struct {
	Enable      bool          `yaml:"enable"`
	WindDirDeg  float64       `yaml:"wind_dir_deg"`
	WindSpeedKt float64       `yaml:"wind_speed_kt"`
	RotorHz     float64       `yaml:"rotor_hz"`
	Pitch       int           `yaml:"pitch"`
	Period      time.Duration `yaml:"period"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := DefaultAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultAndValidate fills unset fields and rejects inconsistent settings.
func DefaultAndValidate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	a := &cfg.Acquisition
	if a.SamplePeriod < 0 {
		return fmt.Errorf("acquisition.sample_period must be > 0")
	}
	if a.SamplePeriod == 0 {
		a.SamplePeriod = 20 * time.Millisecond
	}
	if a.PublishPeriod < 0 {
		return fmt.Errorf("acquisition.publish_period must be > 0")
	}
	if a.PublishPeriod == 0 {
		a.PublishPeriod = 5 * a.SamplePeriod
	}
	if a.WeatherPoll < 0 {
		return fmt.Errorf("acquisition.weather_poll must be > 0")
	}
	if a.WeatherPoll == 0 {
		a.WeatherPoll = 2 * time.Millisecond
	}
	if a.LogEvery <= 0 {
		a.LogEvery = 5 * time.Second
	}

	cfg.RPM.Mode = strings.ToLower(strings.TrimSpace(cfg.RPM.Mode))
	switch cfg.RPM.Mode {
	case "":
		cfg.RPM.Mode = "pulse"
	case "pulse", "rpm":
	default:
		return fmt.Errorf("rpm.mode must be one of: pulse, rpm")
	}
	if cfg.RPM.PulsesPerRev < 0 {
		return fmt.Errorf("rpm.pulses_per_rev must be > 0")
	}
	if cfg.RPM.PulsesPerRev == 0 {
		cfg.RPM.PulsesPerRev = 360
	}

	w := &cfg.Weather
	w.Backend = strings.ToLower(strings.TrimSpace(w.Backend))
	switch w.Backend {
	case "":
		w.Backend = "termios"
	case "termios", "bugst":
	default:
		return fmt.Errorf("weather.backend must be one of: termios, bugst")
	}
	if w.Baud == 0 {
		w.Baud = 4800
	}
	if w.Baud < 0 {
		return fmt.Errorf("weather.baud must be > 0")
	}

	for _, ch := range []struct {
		name string
		c    *ChannelConfig
	}{{"analog.torque", &cfg.Analog.Torque}, {"analog.loadcell", &cfg.Analog.Loadcell}} {
		if ch.c.FullScale < 0 {
			return fmt.Errorf("%s.full_scale must be > 0", ch.name)
		}
		if ch.c.FullScale == 0 {
			ch.c.FullScale = 4095
		}
		if ch.c.Scale == 0 && ch.c.Offset == 0 {
			ch.c.Scale = 1
		}
	}

	if cfg.Pitch.HalfPeriod < 0 {
		return fmt.Errorf("pitch.half_period must be > 0")
	}
	if cfg.Pitch.HalfPeriod == 0 {
		cfg.Pitch.HalfPeriod = time.Microsecond
	}
	if (cfg.Pitch.Clock == "") != (cfg.Pitch.Data == "") {
		return fmt.Errorf("pitch.clock and pitch.data must be set together")
	}

	if cfg.Display.Period < 0 {
		return fmt.Errorf("display.period must be > 0")
	}
	if cfg.Display.Period == 0 {
		cfg.Display.Period = 5 * time.Millisecond
	}

	// Simulator defaults (safe even if disabled).
	if cfg.Sim.Period <= 0 {
		cfg.Sim.Period = time.Second
	}
	if cfg.Sim.WindSpeedKt < 0 {
		return fmt.Errorf("sim.wind_speed_kt must be >= 0")
	}
	if cfg.Sim.RotorHz < 0 {
		return fmt.Errorf("sim.rotor_hz must be >= 0")
	}
	if cfg.Sim.Pitch < 0 || cfg.Sim.Pitch > 4095 {
		return fmt.Errorf("sim.pitch must be within 0..4095")
	}

	if !cfg.Sim.Enable && cfg.Weather.Enable && strings.TrimSpace(cfg.Weather.Device) == "" {
		return fmt.Errorf("weather.device is required when weather.enable is true")
	}
	return nil
}
