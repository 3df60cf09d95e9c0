// Command demoserver is a reference integration showing how a game server
// process wires bootstrap, the SQP responder, the real-time client, and
// the allocation coordinator together. It is meant to be copied from, not
// deployed as-is.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kardianos/service"

	"github.com/hathora/fleetsdk/agentconfig"
	"github.com/hathora/fleetsdk/allocation"
	"github.com/hathora/fleetsdk/bootstrap"
	"github.com/hathora/fleetsdk/control"
	"github.com/hathora/fleetsdk/rtclient"
	"github.com/hathora/fleetsdk/sqp"
)

const (
	serviceName        = "FleetSDKDemoServer"
	serviceDisplayName = "Fleet SDK Demo Server"
	serviceDescription = "Reference game server process wiring the fleet SDK components together"
)

// demo implements kardianos/service.Interface for the optional OS service
// lifecycle.
type demo struct {
	configPath string
	cancel     context.CancelFunc
}

func (d *demo) Start(s service.Service) error {
	go d.run()
	return nil
}

func (d *demo) Stop(s service.Service) error {
	slog.Info("service stop requested")
	if d.cancel != nil {
		d.cancel()
	}
	return nil
}

func (d *demo) run() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	defer cancel()

	if err := runServer(ctx, d.configPath); err != nil {
		slog.Error("demoserver exited with error", "error", err)
		os.Exit(1)
	}
}

func main() {
	var (
		configPath  = flag.String("config", "", "path to an agentconfig override file (optional)")
		doInstall   = flag.Bool("install", false, "install as an OS service")
		doUninstall = flag.Bool("uninstall", false, "uninstall the OS service")
		doRun       = flag.Bool("run", false, "run in foreground (non-service mode)")
	)
	flag.Parse()

	initLogger(slog.LevelInfo)

	svcConfig := &service.Config{
		Name:        serviceName,
		DisplayName: serviceDisplayName,
		Description: serviceDescription,
	}

	d := &demo{configPath: *configPath}
	svc, err := service.New(d, svcConfig)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	switch {
	case *doInstall:
		if err := svc.Install(); err != nil {
			slog.Error("failed to install service", "error", err)
			os.Exit(1)
		}
		fmt.Println("Service installed successfully:", serviceName)

	case *doUninstall:
		if err := svc.Stop(); err != nil {
			slog.Warn("failed to stop service (may not be running)", "error", err)
		}
		if err := svc.Uninstall(); err != nil {
			slog.Error("failed to uninstall service", "error", err)
			os.Exit(1)
		}
		fmt.Println("Service uninstalled successfully:", serviceName)

	case *doRun, service.Interactive():
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if err := runServer(ctx, *configPath); err != nil {
			slog.Error("demoserver exited with error", "error", err)
			os.Exit(1)
		}

	default:
		if err := svc.Run(); err != nil {
			slog.Error("service run failed", "error", err)
			os.Exit(1)
		}
	}
}

// runServer performs the demo server lifecycle: load the bootstrap config,
// layer operator overrides on top of it, start the SQP responder, start
// the allocation coordinator, and block until ctx is canceled.
func runServer(ctx context.Context, configPath string) error {
	cfg, err := bootstrap.Load()
	if err != nil {
		slog.Warn("loading bootstrap config failed; continuing with zero-value config", "error", err)
	}
	slog.Info("loaded bootstrap config", "serverId", cfg.ServerID, "allocationId", cfg.AllocationID, "gamePort", cfg.GamePort, "queryPort", cfg.QueryPort)

	overrides, err := agentconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading operator overrides: %w", err)
	}
	initLogger(parseLogLevel(overrides.LogLevel))

	responder := sqp.New(fmt.Sprintf("%s:%d", overrides.SQPBindAddress, cfg.QueryPort), slog.Default())
	if !responder.Connect() {
		return fmt.Errorf("binding SQP responder on port %d failed", cfg.QueryPort)
	}
	defer responder.Close()

	_ = responder.SetMaxPlayers(0)
	_ = responder.SetCurrentPlayers(0)
	_ = responder.SetGamePort(int(cfg.GamePort))

	coordinator := allocation.New(cfg,
		allocation.WithLogger(slog.Default()),
		allocation.WithControlClient(control.New(overrides.ControlBaseURL)),
		allocation.WithRTClient(rtclient.New(overrides.RTURL, rtclient.WithLogger(slog.Default()))),
	)
	coordinator.OnAllocationChanged(func(n allocation.Notification) {
		if n.Allocated {
			slog.Info("server allocated", "allocationId", n.AllocationID, "serverId", n.ServerID)
		} else {
			slog.Info("server deallocated", "allocationId", n.AllocationID, "serverId", n.ServerID)
		}
	})

	coordinator.SubscribeToServerEvents()
	defer coordinator.Shutdown(context.Background())

	slog.Info("demoserver running", "queryPort", cfg.QueryPort, "gamePort", cfg.GamePort)
	<-ctx.Done()
	slog.Info("demoserver shutting down")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func initLogger(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
