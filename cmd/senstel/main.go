package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"senstel/internal/acquisition"
	"senstel/internal/config"
	"senstel/internal/display"
	"senstel/internal/record"
	"senstel/internal/rpm"
	"senstel/internal/serialio"
)

func main() {
	var configPath string
	var listPorts bool
	flag.StringVar(&configPath, "config", "./dev.yaml", "Path to YAML config")
	flag.BoolVar(&listPorts, "list-ports", false, "List serial ports and exit")
	flag.Parse()

	if listPorts {
		ports, err := serialio.Ports()
		if err != nil {
			log.Fatalf("list ports failed: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	acqCfg, err := acquisitionConfig(cfg)
	if err != nil {
		return err
	}

	rec := record.New()
	counter := &rpm.Counter{}
	ready := &record.ReadyFlag{}

	r, err := openRig(ctx, cfg, counter)
	if err != nil {
		return fmt.Errorf("rig init failed: %w", err)
	}
	defer r.Close()

	sched, err := acquisition.New(acqCfg, r.devices, rec, counter, record.NewPublisher(ready))
	if err != nil {
		return fmt.Errorf("acquisition init failed: %w", err)
	}
	defer func() {
		sched.Close()
		st := sched.Stats()
		log.Printf("acquisition stopped samples=%d sentences=%d wind=%d overflows=%d faults=%d panics=%d",
			st.Samples, st.Sentences, st.WindUpdates, st.Overflows, st.SampleFaults+st.PitchFaults, st.Panics)
	}()

	log.Printf("senstel starting sim=%t", cfg.Sim.Enable)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("acquisition start failed: %w", err)
	}

	if cfg.Display.Enabled() {
		console, err := display.NewConsole(os.Stdout, rec, ready, cfg.Display.Period, acqCfg.Scale.Mode.String())
		if err != nil {
			return fmt.Errorf("display init failed: %w", err)
		}
		if err := console.Run(ctx); err != nil {
			log.Printf("display stopped: %v", err)
		}
	}

	<-ctx.Done()
	log.Printf("senstel stopping")
	return nil
}

func acquisitionConfig(cfg config.Config) (acquisition.Config, error) {
	mode, err := rpm.ParseMode(cfg.RPM.Mode)
	if err != nil {
		return acquisition.Config{}, err
	}
	return acquisition.Config{
		SamplePeriod:  cfg.Acquisition.SamplePeriod,
		PublishPeriod: cfg.Acquisition.PublishPeriod,
		WeatherPoll:   cfg.Acquisition.WeatherPoll,
		LogEvery:      cfg.Acquisition.LogEvery,
		Scale:         rpm.Scale{Mode: mode, PulsesPerRev: float32(cfg.RPM.PulsesPerRev)},
		DebugLEDs:     cfg.Debug.LEDs,
	}, nil
}
