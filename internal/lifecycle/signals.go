package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"perfoverlay/internal/global"
	"perfoverlay/internal/logctx"
	"syscall"
)

type DaemonLike interface {
	Clear()
	Shutdown()
}

// Handles all incoming signals from external sources.
// SIGHUP drops retained history, every other handled signal shuts the daemon down and returns.
func SignalHandler(ctx context.Context, daemon DaemonLike) {
	// Channel for handling interrupt signals
	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	handleSignals(ctx, daemon, sigChan)
}

func handleSignals(ctx context.Context, daemon DaemonLike, sigChan <-chan os.Signal) {
	for {
		var sig os.Signal
		select {
		case <-ctx.Done():
			return
		case sig = <-sigChan:
		}
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Received signal: %v\n", sig)

		recvSignal, ok := sig.(syscall.Signal)
		if !ok {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed to type assert received signal: %v\n", sig)
			continue
		}

		// Reset signal
		if recvSignal == syscall.SIGHUP {
			err := NotifyReload(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify reload failed: %v\n", err)
			}

			daemon.Clear()

			err = NotifyReady(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
			}
			continue
		}

		err := NotifyStopping(ctx)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify stopping failed: %v\n", err)
		}

		// Initiate daemon shutdown
		daemon.Shutdown()

		logger := logctx.GetLogger(ctx)
		if logger != nil {
			logger.Wake()
		}
		return
	}
}
