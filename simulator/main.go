package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/pipanel/internal/app"
	"github.com/rook-computer/pipanel/internal/app/screens"
	"github.com/rook-computer/pipanel/internal/buttons"
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
	"github.com/rook-computer/pipanel/internal/web"
)

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode (permissive CORS); also configurable via "+web.EnvDevMode)
	ip := flag.String("ip", "192.168.1.50", "address the fake hostname -I reports")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	bindings, err := cfg.Bindings()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Println("logger error:", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := NewSimControl(*ip)
	store := state.NewStore()
	injector := buttons.NewInjector(16)
	device := render.NewMemoryDevice(cfg.DisplayWidth, cfg.DisplayHeight)
	pixel := &indicator.LogIndicator{Logger: logger}

	mux := http.NewServeMux()
	web.RegisterAPIV1(mux, web.PanelDeps{
		State:   store.Snapshot,
		Press:   injector.Press,
		Display: device.ASCII,
	})
	registerSimEndpoints(mux, sim)
	mux.HandleFunc("/sim/indicator", func(w http.ResponseWriter, r *http.Request) {
		web.WriteJSON(w, http.StatusOK, map[string]string{"color": pixel.Last().String()})
	})

	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode})
	server.Handler = mux
	server.Logger = logger
	if err := server.Start(processCtx); err != nil {
		fmt.Println("server start error:", err)
		os.Exit(1)
	}
	defer func() { _ = server.Stop() }()

	statsURL, err := localURL(server.Addr, "/admin/api.php")
	if err != nil {
		fmt.Println("server address error:", err)
		os.Exit(1)
	}

	clk := clock.RealClock{}
	renderer := render.New(device, render.LoadFace(cfg.FontPath, cfg.FontSize, logger), logger)
	host := system.NewHostIdentity(sim, logger)
	host.Hostname = func() (string, error) { return "pi-hole-sim", nil }

	ctrl := &control.Controller{
		Generation: &control.Generation{},
		Indicator:  pixel,
		Display:    screens.Display{Renderer: renderer},
		Stats: stats.NewProvider(stats.Options{
			URL:        statsURL,
			Token:      cfg.StatsToken,
			Timeout:    cfg.StatsTimeout,
			RetryPause: cfg.StatsRetryPause,
		}, logger, clk),
		Host:      host,
		Service:   pihole.New(sim, "pihole", logger),
		Logger:    logger,
		Clock:     clk,
		StatsHold: cfg.StatsHold,
	}

	a := app.New(store, ctrl, injector, bindings, logger)
	a.Display = renderer

	fmt.Println("pipanel simulator listening on", server.Addr)
	fmt.Println("Press:   curl -X POST " + mustLocalURL(server.Addr, "/api/v1/press/a"))
	fmt.Println("Display: curl " + mustLocalURL(server.Addr, "/api/v1/display"))

	if err := a.Run(processCtx); err != nil {
		logger.Errorf("main", "simulator stopped: %v", err)
		os.Exit(1)
	}
}

// localURL turns a listener address like "[::]:8080" into a loopback URL.
func localURL(addr, path string) (string, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", err
	}
	return "http://" + net.JoinHostPort("127.0.0.1", port) + path, nil
}

func mustLocalURL(addr, path string) string {
	u, err := localURL(addr, path)
	if err != nil {
		return addr + path
	}
	return u
}
