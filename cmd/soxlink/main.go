// Command soxlink bridges SOX devices into a browsable node tree.
//
// Endpoints are added at runtime through the addServer action (or the
// interactive add command) and persisted to the state file, so they are
// reconnected on the next start.
//
// Usage:
//
//	soxlink [flags]
//
// Flags:
//
//	-config string        Configuration file path (YAML)
//	-state string         State file path (persisted endpoints)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-protocol-log string  Write protocol events to this file
//	-interactive          Enable interactive command mode
//	-simulate             Serve the devices declared in the config file
//	-discover             Install the mDNS discover action
//
// Settings may also come from SOXLINK_* variables, read from the
// environment and from ./.env.
//
// Examples:
//
//	# Interactive session against simulated devices
//	soxlink -config devices.yaml -simulate -interactive
//
//	# Persist endpoints and capture protocol traffic
//	soxlink -state /var/lib/soxlink/tree.yaml -protocol-log /var/log/soxlink/bridge.soxlog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/soxlink/soxlink-go/cmd/soxlink/interactive"
	"github.com/soxlink/soxlink-go/pkg/log"
	"github.com/soxlink/soxlink-go/pkg/service"
	"github.com/soxlink/soxlink-go/pkg/sox"
)

// ErrNoTransport is returned by the default dialer. Device sessions are
// provided by the simulator (-simulate) or by an embedding program.
var ErrNoTransport = errors.New("no SOX transport available (use -simulate)")

var (
	configFile      string
	statePath       string
	logLevel        string
	protocolLog     string
	interactiveMode bool
	simulate        bool
	discover        bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&statePath, "state", "", "State file path (persisted endpoints)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&protocolLog, "protocol-log", "", "Write protocol events to this file")
	flag.BoolVar(&interactiveMode, "interactive", false, "Enable interactive command mode")
	flag.BoolVar(&simulate, "simulate", false, "Serve the devices declared in the config file")
	flag.BoolVar(&discover, "discover", false, "Install the mDNS discover action")
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "soxlink: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := loadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	applyFlags(cfg)

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	out := &redirectWriter{w: os.Stderr}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	bc := cfg.BridgeConfig()
	bc.Logger = logger

	var protoLoggers []log.Logger
	if cfg.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			return fmt.Errorf("open protocol log: %w", err)
		}
		defer fl.Close()
		protoLoggers = append(protoLoggers, fl)
	}
	if level <= slog.LevelDebug {
		protoLoggers = append(protoLoggers, log.NewSlogAdapter(logger))
	}
	if len(protoLoggers) > 0 {
		bc.ProtocolLogger = log.NewMultiLogger(protoLoggers...)
	}

	var dialer sox.Dialer = sox.DialerFunc(func(context.Context, sox.Credentials) (sox.Client, error) {
		return nil, ErrNoTransport
	})
	if simulate {
		network, err := buildNetwork(cfg.Devices)
		if err != nil {
			return fmt.Errorf("simulator: %w", err)
		}
		logger.Info("simulating devices", "count", len(cfg.Devices))
		dialer = network
	}

	svc, err := service.NewBridgeService(bc, dialer)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	logger.Info("service started", "state", svc.State())

	if interactiveMode {
		console, err := interactive.New(svc)
		if err != nil {
			svc.Stop()
			return err
		}
		// Log output goes through readline so it does not break the prompt.
		out.Set(console.Stdout())
		go console.Run(ctx, cancel)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	cancel()
	out.Set(os.Stderr)
	return svc.Stop()
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cfg *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "state":
			cfg.StatePath = statePath
		case "log-level":
			cfg.LogLevel = logLevel
		case "protocol-log":
			cfg.ProtocolLog = protocolLog
		case "discover":
			cfg.Discovery.Enabled = discover
		}
	})
}

// redirectWriter lets the log destination change after the handler is built.
type redirectWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (r *redirectWriter) Set(w io.Writer) {
	r.mu.Lock()
	r.w = w
	r.mu.Unlock()
}

func (r *redirectWriter) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w.Write(p)
}
