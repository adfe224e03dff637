package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"senstel/internal/acquisition"
	"senstel/internal/adc"
	"senstel/internal/config"
	"senstel/internal/gpio"
	"senstel/internal/pitch"
	"senstel/internal/rpm"
	"senstel/internal/serialio"
	"senstel/internal/sim"
)

const gpioConsumer = "senstel"

// rig holds the opened devices and everything that must be released with
// them.
type rig struct {
	devices acquisition.Devices
	closers []io.Closer
	cancel  context.CancelFunc
}

func (r *rig) add(c io.Closer) { r.closers = append(r.closers, c) }

// Close stops background feeders and releases devices in reverse order.
func (r *rig) Close() {
	if r == nil {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			log.Printf("rig: close: %v", err)
		}
	}
	r.closers = nil
}

// openRig builds the device set from cfg. Edges from the shaft sensor (real
// or simulated) are delivered to counter.OnEdge.
func openRig(ctx context.Context, cfg config.Config, counter *rpm.Counter) (*rig, error) {
	if counter == nil {
		return nil, fmt.Errorf("counter is nil")
	}
	if cfg.Sim.Enable {
		return openSimRig(ctx, cfg, counter)
	}
	r := &rig{}
	if err := r.openHardware(cfg, counter); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func openSimRig(ctx context.Context, cfg config.Config, counter *rpm.Counter) (*rig, error) {
	enc := sim.NewEncoder(uint16(cfg.Sim.Pitch))
	p, err := pitch.New(enc, enc, cfg.Pitch.HalfPeriod)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	r := &rig{cancel: cancel}

	station := &sim.WeatherStation{
		DirectionDeg: cfg.Sim.WindDirDeg,
		SpeedKt:      cfg.Sim.WindSpeedKt,
		Period:       cfg.Sim.Period,
	}
	r.add(station)
	r.devices.Weather = station
	r.devices.Torque = &sim.Analog{Base: 0.5, Amplitude: 0.3}
	r.devices.Loadcell = &sim.Analog{Base: 0.4, Amplitude: 0.1}

	r.devices.Pitch = p

	go sim.PulseTrain{Hz: cfg.Sim.RotorHz}.Run(ctx, counter.OnEdge)
	log.Printf("sim: wind=%.1fdeg/%.1fkt rotor=%.1fHz pitch=%d", cfg.Sim.WindDirDeg, cfg.Sim.WindSpeedKt, cfg.Sim.RotorHz, cfg.Sim.Pitch)
	return r, nil
}

func (r *rig) openHardware(cfg config.Config, counter *rpm.Counter) error {
	if cfg.Weather.Enable {
		port, err := serialio.Open(cfg.Weather.Backend, cfg.Weather.Device, cfg.Weather.Baud)
		if err != nil {
			return err
		}
		r.add(port)
		r.devices.Weather = port
		log.Printf("weather: %s backend=%s baud=%d", cfg.Weather.Device, cfg.Weather.Backend, cfg.Weather.Baud)
	}

	var err error
	if r.devices.Torque, err = openChannel(cfg.Analog.Torque); err != nil {
		return err
	}
	if r.devices.Loadcell, err = openChannel(cfg.Analog.Loadcell); err != nil {
		return err
	}

	if cfg.Pitch.Clock != "" {
		clk, err := gpio.OpenOutput(cfg.Pitch.Chip, cfg.Pitch.Clock, gpioConsumer, 1)
		if err != nil {
			return fmt.Errorf("pitch clock: %w", err)
		}
		r.add(clk)
		data, err := gpio.OpenInput(cfg.Pitch.Chip, cfg.Pitch.Data, gpioConsumer)
		if err != nil {
			return fmt.Errorf("pitch data: %w", err)
		}
		r.add(data)
		enc, err := pitch.New(clk, data, cfg.Pitch.HalfPeriod)
		if err != nil {
			return err
		}
		r.devices.Pitch = enc
	}

	if cfg.RPM.Line != "" {
		in, err := gpio.WatchRising(cfg.RPM.Chip, cfg.RPM.Line, gpioConsumer, counter.OnEdge)
		if err != nil {
			return fmt.Errorf("rpm input: %w", err)
		}
		r.add(in)
	}

	leds := []struct {
		line string
		dst  *acquisition.Indicator
	}{
		{cfg.Debug.WeatherLED, &r.devices.WeatherLED},
		{cfg.Debug.SampleLED, &r.devices.SampleLED},
		{cfg.Debug.PublishLED, &r.devices.PublishLED},
	}
	for _, l := range leds {
		if strings.TrimSpace(l.line) == "" {
			continue
		}
		out, err := gpio.OpenOutput(cfg.Debug.Chip, l.line, gpioConsumer, 0)
		if err != nil {
			return fmt.Errorf("led %s: %w", l.line, err)
		}
		r.add(out)
		*l.dst = out
	}
	return nil
}

// openChannel returns nil for an unconfigured channel; the scheduler skips
// it and the record field stays zero.
func openChannel(c config.ChannelConfig) (acquisition.Analog, error) {
	if strings.TrimSpace(c.Path) == "" {
		return nil, nil
	}
	ch, err := adc.NewChannel(c.Path, float32(c.FullScale), adc.Calibration{
		Scale:  float32(c.Scale),
		Offset: float32(c.Offset),
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}
