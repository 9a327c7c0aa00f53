// Writes starter configuration files for the overlay daemon
package install

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"perfoverlay/internal/global"
	"perfoverlay/internal/overlay"
	"strings"

	"golang.org/x/term"
)

// Writes a template config to filepath. Existing files are only replaced after confirmation on an interactive terminal.
func CreateTemplateConfig(filepath string) (err error) {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	err = writeTemplateConfig(filepath, interactive, os.Stdin, os.Stdout)
	return
}

func writeTemplateConfig(filepath string, interactive bool, prompt io.Reader, out io.Writer) (err error) {
	if filepath == "" {
		err = fmt.Errorf("specify template file path via the --config/-c arguments")
		return
	}

	// Don't overwrite existing
	_, err = os.Stat(filepath)
	if err == nil {
		// No terminal - no overwrite
		if !interactive {
			fmt.Fprintf(out, "Existing configuration file present, not overwriting\n")
			return
		}

		// File exists, prompt user for confirmation to overwrite
		fmt.Fprintf(out, "Configuration file already exists at '%s'. Are you SURE you want to overwrite it? (yes/no): ", filepath)
		reader := bufio.NewReader(prompt)
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)

		if strings.ToLower(input) != "yes" {
			fmt.Fprintf(out, "Not overwriting configuration file\n")
			return
		}
	} else if !os.IsNotExist(err) {
		err = fmt.Errorf("failed checking config file existence: %v", err)
		return
	}

	confBytes, err := json.MarshalIndent(templateConfig(), "", "  ")
	if err != nil {
		err = fmt.Errorf("error marshaling new config: %v", err)
		return
	}
	confBytes = append(confBytes, []byte("\n")...)

	err = os.WriteFile(filepath, confBytes, 0600)
	if err != nil {
		err = fmt.Errorf("failed to write config to file: %v", err)
		return
	}

	fmt.Fprintf(out, "Successfully wrote template configuration file to '%s'\n", filepath)
	return
}

func templateConfig() (newCfg overlay.JSONConfig) {
	newCfg.DeviceID = "localhost"
	newCfg.PackageID = "com.example.app"
	newCfg.DeviceTimeOffset = "0s"
	newCfg.Channels = []string{global.ChannelCPU, global.ChannelMemory, global.ChannelGraphics, global.ChannelOverlay}
	newCfg.Locale = "en"

	newCfg.Pipeline.SampleInterval = global.DefaultSampleInterval.String()
	newCfg.Pipeline.RetentionPeriod = global.DefaultRetentionPeriod.String()
	newCfg.Pipeline.SweepInterval = global.DefaultSweepInterval.String()
	newCfg.Pipeline.QueueSize = global.DefaultQueueSize
	newCfg.Pipeline.SinkWorkers = global.DefaultSinkWorkers

	newCfg.Terminal.Enabled = true
	newCfg.Terminal.Refresh = global.DefaultRefreshInterval.String()
	newCfg.Terminal.Clear = true

	newCfg.Server.Enabled = true
	newCfg.Server.Port = global.HTTPListenPort
	return
}
