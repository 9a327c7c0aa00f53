package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"perfoverlay/internal/global"
	"perfoverlay/internal/lifecycle"
	"perfoverlay/internal/logctx"
	"perfoverlay/internal/overlay"
	"strings"
)

func RunMode(ctx context.Context, commandname string, args []string) {
	var configPath string
	var noTerminal bool
	var noServer bool
	var deviceID string
	var packageID string
	var channels string

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)
	commandFlags.BoolVar(&noTerminal, "no-terminal", false, "Do not paint charts in this terminal")
	commandFlags.BoolVar(&noServer, "no-server", false, "Do not serve charts over local HTTP")
	commandFlags.StringVar(&deviceID, "device", "", "Device identifier for started streams (overrides config)")
	commandFlags.StringVar(&packageID, "package", "", "Package identifier for started streams (overrides config)")
	commandFlags.StringVar(&channels, "channels", "", "Comma separated channels to enable (overrides config)")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	commandFlags.Parse(args[0:])
	logctx.SetLogLevel(ctx, global.Verbosity)

	jsonCfg, err := overlay.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	daemonConfig, err := jsonCfg.NewDaemonConf()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(&daemonConfig, noTerminal, noServer, deviceID, packageID, channels)

	overlayDaemon := overlay.NewDaemon(daemonConfig)
	err = overlayDaemon.Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting overlay daemon: %v\n", err)
		os.Exit(1)
	}

	// Readiness for supervisors and systemd
	err = lifecycle.ReadinessSender()
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Readiness signal failed: %v\n", err)
	}
	err = lifecycle.NotifyReady(ctx)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
	}

	signalCtx, stopSignals := context.WithCancel(ctx)
	defer stopSignals()
	go lifecycle.SignalHandler(signalCtx, overlayDaemon)

	overlayDaemon.Run()
}

// Command line values win over the config file
func applyOverrides(cfg *overlay.Config, noTerminal, noServer bool, deviceID, packageID, channels string) {
	if noTerminal {
		cfg.TerminalEnabled = false
	}
	if noServer {
		cfg.ServerEnabled = false
	}
	if deviceID != "" {
		cfg.DeviceID = deviceID
	}
	if packageID != "" {
		cfg.PackageID = packageID
	}
	if channels != "" {
		cfg.Channels = nil
		for _, channel := range strings.Split(channels, ",") {
			channel = strings.TrimSpace(channel)
			if channel != "" {
				cfg.Channels = append(cfg.Channels, channel)
			}
		}
	}
}
