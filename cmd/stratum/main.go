package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/ipc"
	"github.com/1broseidon/stratum/internal/tui"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "effects":
		os.Exit(runEffects(os.Args[2:]))
	case "stack":
		os.Exit(runStack(os.Args[2:]))
	case "raise":
		os.Exit(runWindowOp("raise", os.Args[2:]))
	case "lower":
		os.Exit(runWindowOp("lower", os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: stratum <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon                Start the compositor daemon (foreground)")
	fmt.Fprintln(w, "  status                Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  effects list          List effects and their state")
	fmt.Fprintln(w, "  effects load          Load an effect")
	fmt.Fprintln(w, "  effects unload        Unload an effect")
	fmt.Fprintln(w, "  effects toggle        Load or unload an effect")
	fmt.Fprintln(w, "  effects reconfigure   Re-read an effect's settings")
	fmt.Fprintln(w, "  effects trigger       Activate a triggerable effect")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  stack                 Print the stacking order")
	fmt.Fprintln(w, "  raise <window>        Raise a window")
	fmt.Fprintln(w, "  lower <window>        Lower a window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate       Validate configuration")
	fmt.Fprintln(w, "  config print          Print configuration")
	fmt.Fprintln(w, "  config explain        Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                   Open interactive TUI")
	fmt.Fprintln(w, "  mcp serve             Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'stratum <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	showMonitors := fs.Bool("monitors", false, "Also list the screens the daemon sees")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: stratum status [--monitors]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.Status()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	fmt.Printf("windows:         %d\n", status.Windows)
	if status.ActiveWindow != 0 {
		fmt.Printf("active_window:   0x%x\n", status.ActiveWindow)
	}
	fmt.Printf("loaded_effects:  %s\n", joinOrNone(status.Loaded))
	fmt.Printf("active_effects:  %s\n", joinOrNone(status.Active))
	fmt.Printf("refresh_rate:    %d\n", status.Compositor.RefreshRate)
	fmt.Printf("frames:          %d\n", status.Compositor.Frames)
	if status.Compositor.Unredirected != 0 {
		fmt.Printf("unredirected:    0x%x\n", status.Compositor.Unredirected)
	}
	if status.ConfigPath != "" {
		fmt.Printf("config_path:     %s\n", status.ConfigPath)
	}

	if *showMonitors {
		data, err := client.Monitors()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, m := range data.Monitors {
			fmt.Printf("monitor %d:       %s %dx%d+%d+%d\n", m.ID, m.Name, m.Width, m.Height, m.X, m.Y)
		}
	}
	return 0
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  stratum config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  stratum config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  stratum config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/stratum/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("config: ok (%d file(s))\n", len(res.Files))
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/stratum/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		_ = fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/stratum/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/stratum/config.yaml)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: stratum tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive TUI for editing settings, toggling effects and")
		fmt.Fprintln(os.Stderr, "restacking windows. Works as an offline config editor when the")
		fmt.Fprintln(os.Stderr, "daemon is not running.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  tab, 1-3     Switch tab")
		fmt.Fprintln(os.Stderr, "  e            Edit settings (general tab)")
		fmt.Fprintln(os.Stderr, "  enter        Toggle effect (effects tab)")
		fmt.Fprintln(os.Stderr, "  t/r/u        Trigger, reconfigure, unload effect")
		fmt.Fprintln(os.Stderr, "  r/l          Raise, lower window (stacking tab)")
		fmt.Fprintln(os.Stderr, "  ctrl+s       Save config and reload the daemon")
		fmt.Fprintln(os.Stderr, "  ctrl+e       Edit config in $EDITOR")
		fmt.Fprintln(os.Stderr, "  ctrl+r       Refresh daemon state")
		fmt.Fprintln(os.Stderr, "  q, ctrl+c    Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := tui.Run(*path, ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
