package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"perfoverlay/internal/global"
	"sort"
	"strings"
	"text/tabwriter"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Charts are served on localhost while "run" is active unless --no-server is given.
Send SIGHUP to a running overlay to drop retained history.
`
)

// One help line per distinct flag usage text ("-c, --config")
type helpOption struct {
	short    string
	long     []string
	usage    string
	defValue string
}

// Full standardized help menu (wraps option printer as well)
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	writeHelpMenu(os.Stdout, fs, command, rootCmd)
}

func writeHelpMenu(out io.Writer, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	if command == "" {
		command = RootCLICommand
	}
	path := findCommand(rootCmd, command)
	if path == nil {
		fmt.Fprintf(out, "Unknown command: %s\n", command)
		return
	}
	current := path[len(path)-1]

	fmt.Fprintf(out, "Usage: %s\n\n", usageLine(path))

	if current == rootCmd {
		fmt.Fprintln(out, current.Description)
		fmt.Fprintln(out, current.FullDescription)
		fmt.Fprintln(out)
	} else if current.FullDescription != "" {
		fmt.Fprintf(out, "  Description:\n    %s\n\n", current.FullDescription)
	}

	if len(current.ChildCommands) > 0 {
		fmt.Fprintln(out, "  Subcommands:")
		table := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, name := range sortedChildren(current) {
			fmt.Fprintf(table, "    %s\t- %s\n", name, current.ChildCommands[name].Description)
		}
		table.Flush()
		fmt.Fprintln(out)
	}

	printFlagOptions(out, fs)

	if current == rootCmd {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

// Depth first search for command, returns the chain from root or nil
func findCommand(cmd *global.CommandSet, name string) (path []*global.CommandSet) {
	if cmd == nil {
		return
	}
	if cmd.CommandName == name {
		path = []*global.CommandSet{cmd}
		return
	}
	for _, childName := range sortedChildren(cmd) {
		if sub := findCommand(cmd.ChildCommands[childName], name); sub != nil {
			path = append([]*global.CommandSet{cmd}, sub...)
			return
		}
	}
	return
}

func sortedChildren(cmd *global.CommandSet) (names []string) {
	for name := range cmd.ChildCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// Program name, command chain (root omitted) and expected argument
func usageLine(path []*global.CommandSet) string {
	parts := []string{filepath.Base(os.Args[0])}
	for _, cmd := range path {
		if cmd.CommandName != RootCLICommand {
			parts = append(parts, cmd.CommandName)
		}
	}

	current := path[len(path)-1]
	switch len(current.ChildCommands) {
	case 0:
	case 1:
		parts = append(parts, sortedChildren(current)...)
	default:
		parts = append(parts, "[subcommand]")
	}
	if current.UsageOption != "" {
		parts = append(parts, current.UsageOption)
	}
	return strings.Join(parts, " ")
}

// Merges short/long aliases sharing a usage text and prints them aligned, long-only flags indented past the short column
func printFlagOptions(out io.Writer, fs *flag.FlagSet) {
	byUsage := make(map[string]*helpOption)
	var options []*helpOption

	fs.VisitAll(func(arg *flag.Flag) {
		option, seen := byUsage[arg.Usage]
		if !seen {
			option = &helpOption{usage: arg.Usage, defValue: arg.DefValue}
			byUsage[arg.Usage] = option
			options = append(options, option)
		}
		if len(arg.Name) == 1 {
			option.short = arg.Name
		} else {
			option.long = append(option.long, arg.Name)
		}
	})
	if len(options) == 0 {
		return
	}

	sort.Slice(options, func(i, j int) bool {
		return strings.ToLower(options[i].sortKey()) < strings.ToLower(options[j].sortKey())
	})

	fmt.Fprintln(out, "  Options:")
	table := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, option := range options {
		fmt.Fprintf(table, "  %s\t%s\n", option.names(), option.description())
	}
	table.Flush()
}

func (option *helpOption) sortKey() string {
	if option.short != "" {
		return option.short
	}
	return option.long[0]
}

func (option *helpOption) names() string {
	longNames := make([]string, len(option.long))
	for i, long := range option.long {
		longNames[i] = "--" + long
	}
	joined := strings.Join(longNames, ", ")

	switch {
	case option.short == "":
		// Room for "-x, "
		return "    " + joined
	case joined == "":
		return "-" + option.short
	}
	return "-" + option.short + ", " + joined
}

// Usage text with the default appended unless it is an empty value
func (option *helpOption) description() string {
	switch option.defValue {
	case "", "false", "0":
		return option.usage
	}
	return fmt.Sprintf("%s [default: %s]", option.usage, option.defValue)
}
