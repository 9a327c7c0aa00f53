package cli

import (
	"flag"
	"fmt"
	"os"
	"perfoverlay/internal/global"
	"perfoverlay/internal/install"
)

// Setup options
func ConfigureMode(cliOpts *global.CommandSet, commandname string, args []string) {
	var templateConfPath string
	var newTemplate bool

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	commandFlags.StringVar(&templateConfPath, "c", global.DefaultConfigPath, "Path to template config file")
	commandFlags.StringVar(&templateConfPath, "config", global.DefaultConfigPath, "Path to template config file")
	commandFlags.BoolVar(&newTemplate, "template", false, "Create new template config for the overlay (using config-path argument)")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[0:])

	var err error
	if newTemplate {
		err = install.CreateTemplateConfig(templateConfPath)
	} else {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
