package overlay

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"perfoverlay/internal/global"
	"runtime"
	"time"

	"golang.org/x/text/language"
)

// Loads JSON config from file
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %v", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %v", path, err)
		return
	}

	return
}

// Parses JSON config into daemon config
func (cfg JSONConfig) NewDaemonConf() (config Config, err error) {
	// Identity
	config.DeviceID = cfg.DeviceID
	config.PackageID = cfg.PackageID
	config.DeviceTimeOffset, err = parseOptionalDuration(cfg.DeviceTimeOffset)
	if err != nil {
		err = fmt.Errorf("failed to parse device time offset: %v", err)
		return
	}

	// Pipeline
	config.Channels = append([]string(nil), cfg.Channels...)
	config.SampleInterval, err = parseOptionalDuration(cfg.Pipeline.SampleInterval)
	if err != nil {
		err = fmt.Errorf("failed to parse sample interval time: %v", err)
		return
	}
	if cfg.Pipeline.RetentionPeriod == "" {
		config.RetentionPeriod = global.DefaultRetentionPeriod
	} else {
		// Zero is meaningful (latest instant only)
		config.RetentionPeriod, err = time.ParseDuration(cfg.Pipeline.RetentionPeriod)
		if err != nil {
			err = fmt.Errorf("failed to parse retention period time: %v", err)
			return
		}
	}
	config.SweepInterval, err = parseOptionalDuration(cfg.Pipeline.SweepInterval)
	if err != nil {
		err = fmt.Errorf("failed to parse sweep interval time: %v", err)
		return
	}
	config.QueueSize = cfg.Pipeline.QueueSize
	config.SinkWorkers = cfg.Pipeline.SinkWorkers

	// Presentation
	if cfg.Locale != "" {
		config.Locale, err = language.Parse(cfg.Locale)
		if err != nil {
			err = fmt.Errorf("failed to parse locale: %v", err)
			return
		}
	}
	config.TerminalEnabled = cfg.Terminal.Enabled
	config.RefreshInterval, err = parseOptionalDuration(cfg.Terminal.Refresh)
	if err != nil {
		err = fmt.Errorf("failed to parse terminal refresh interval: %v", err)
		return
	}
	config.TerminalWidth = cfg.Terminal.Width
	config.TerminalHeight = cfg.Terminal.Height
	config.TerminalClear = cfg.Terminal.Clear
	config.ServerEnabled = cfg.Server.Enabled
	config.ServerPort = cfg.Server.Port
	return
}

// Empty string is zero (filled by defaults later)
func parseOptionalDuration(text string) (duration time.Duration, err error) {
	if text == "" {
		return
	}
	duration, err = time.ParseDuration(text)
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	// Identity
	if cfg.DeviceID == "" {
		cfg.DeviceID = global.Hostname
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = "localhost"
	}
	if cfg.PackageID == "" {
		cfg.PackageID = filepath.Base(os.Args[0])
	}

	// Pipeline
	if len(cfg.Channels) == 0 {
		cfg.Channels = []string{global.ChannelCPU, global.ChannelMemory, global.ChannelGraphics, global.ChannelOverlay}
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = global.DefaultSampleInterval
	}
	if cfg.RetentionPeriod < 0 {
		cfg.RetentionPeriod = global.DefaultRetentionPeriod
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = global.DefaultSweepInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = global.DefaultQueueSize
	}
	cfg.QueueSize = nextPowerOfTwo(cfg.QueueSize)
	if cfg.SinkWorkers <= 0 {
		cfg.SinkWorkers = global.DefaultSinkWorkers
	}
	logicalCPUCount := runtime.NumCPU()
	if cfg.SinkWorkers > logicalCPUCount {
		cfg.SinkWorkers = logicalCPUCount
	}

	// Presentation
	if cfg.Locale == language.Und {
		cfg.Locale = language.English
	}
	if cfg.TerminalOutput == nil {
		cfg.TerminalOutput = os.Stdout
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = global.DefaultRefreshInterval
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = global.HTTPListenPort
	}
}

// Queue capacity must be a power of two (minimum 2)
func nextPowerOfTwo(size int) (capacity int) {
	if size <= 2 {
		capacity = 2
		return
	}
	capacity = 1 << bits.Len(uint(size-1))
	return
}
