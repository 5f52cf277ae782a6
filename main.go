package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/rook-computer/pipanel/internal/app"
	"github.com/rook-computer/pipanel/internal/app/screens"
	"github.com/rook-computer/pipanel/internal/buttons"
	"github.com/rook-computer/pipanel/internal/buttonshim"
	"github.com/rook-computer/pipanel/internal/clock"
	"github.com/rook-computer/pipanel/internal/config"
	"github.com/rook-computer/pipanel/internal/control"
	"github.com/rook-computer/pipanel/internal/indicator"
	"github.com/rook-computer/pipanel/internal/logging"
	"github.com/rook-computer/pipanel/internal/pihole"
	"github.com/rook-computer/pipanel/internal/render"
	"github.com/rook-computer/pipanel/internal/state"
	"github.com/rook-computer/pipanel/internal/stats"
	"github.com/rook-computer/pipanel/internal/system"
)

func main() {
	debug := flag.Bool("debug", false, "force debug log level")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via PIPANEL_STDIO_LOG")
	flag.Parse()

	// Redirect before anything else prints so a crash while the console is
	// in graphics mode still leaves a trace.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv("PIPANEL_STDIO_LOG")
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Println("logger error:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Println("pipanel:", err)
		os.Exit(1)
	}
}

// hardware is everything main opened and must release.
type hardware struct {
	source    buttons.Source
	indicator indicator.Indicator
	device    render.Device
	bus       i2c.BusCloser
}

func (h *hardware) Close() error {
	if h.bus == nil {
		return nil
	}
	return h.bus.Close()
}

func run(ctx context.Context, cfg *config.AppConfig, logger *logging.ZapLogger) error {
	bindings, err := cfg.Bindings()
	if err != nil {
		return err
	}

	hw, err := openHardware(cfg, logger)
	if err != nil {
		return fmt.Errorf("%w: %w", control.ErrHardwareIO, err)
	}
	defer func() {
		if err := hw.Close(); err != nil {
			logger.Errorf("main", "close i2c bus: %v", err)
		}
	}()

	clk := clock.RealClock{}
	renderer := render.New(hw.device, render.LoadFace(cfg.FontPath, cfg.FontSize, logger), logger)
	runner := system.ShellRunner{Sudo: cfg.UseSudo, Logger: logger}

	ctrl := &control.Controller{
		Generation: &control.Generation{},
		Indicator:  hw.indicator,
		Display:    screens.Display{Renderer: renderer},
		Stats: stats.NewProvider(stats.Options{
			URL:        cfg.StatsURL,
			Token:      cfg.StatsToken,
			Timeout:    cfg.StatsTimeout,
			RetryPause: cfg.StatsRetryPause,
		}, logger, clk),
		Host:      system.NewHostIdentity(runner, logger),
		Service:   pihole.New(runner, cfg.PiholeCommand, logger),
		Logger:    logger,
		Clock:     clk,
		StatsHold: cfg.StatsHold,
	}

	a := app.New(state.NewStore(), ctrl, hw.source, bindings, logger)
	a.Display = renderer
	return a.Run(ctx)
}

func openHardware(cfg *config.AppConfig, logger logging.Logger) (*hardware, error) {
	hw := &hardware{}
	needsI2C := cfg.Input == "buttonshim" || cfg.Display == "ssd1306"
	if needsI2C || cfg.Input == "gpio" {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("periph host init: %w", err)
		}
	}
	if needsI2C {
		bus, err := i2creg.Open(cfg.I2CBus)
		if err != nil {
			return nil, fmt.Errorf("open i2c bus %q: %w", cfg.I2CBus, err)
		}
		hw.bus = bus
	}

	if err := hw.openInput(cfg, logger); err != nil {
		return nil, errors.Join(err, hw.Close())
	}
	if err := hw.openDisplay(cfg, logger); err != nil {
		return nil, errors.Join(err, hw.Close())
	}
	return hw, nil
}

func (hw *hardware) openInput(cfg *config.AppConfig, logger logging.Logger) error {
	switch cfg.Input {
	case "buttonshim":
		shim, err := buttonshim.Open(hw.bus, cfg.Brightness, logger)
		if err != nil {
			return err
		}
		hw.source, hw.indicator = shim, shim
	case "gpio":
		hw.source = buttons.NewGPIOSource(cfg.GPIOPins, logger)
	case "keyboard":
		hw.source = buttons.NewKeyboardSource(logger)
	default:
		logger.Warnf("main", "no input configured, buttons are inert")
		hw.source = buttons.NewNoopSource()
	}
	if hw.indicator == nil {
		hw.indicator = &indicator.LogIndicator{Logger: logger}
	}
	return nil
}

func (hw *hardware) openDisplay(cfg *config.AppConfig, logger logging.Logger) error {
	switch cfg.Display {
	case "ssd1306":
		dev, err := render.OpenSSD1306(hw.bus, render.SSD1306Opts{
			Width:      cfg.DisplayWidth,
			Height:     cfg.DisplayHeight,
			Sequential: cfg.DisplaySequential,
		})
		if err != nil {
			return err
		}
		hw.device = dev
	case "fbdev":
		dev, err := render.OpenFBDevice(cfg.FBDevice, cfg.DisplayWidth, cfg.DisplayHeight, system.Console{Logger: logger}, logger)
		if err != nil {
			return err
		}
		hw.device = dev
	default:
		logger.Warnf("main", "no display configured, frames are kept in memory")
		hw.device = render.NewMemoryDevice(cfg.DisplayWidth, cfg.DisplayHeight)
	}
	return nil
}
