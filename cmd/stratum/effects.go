package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/1broseidon/stratum/internal/ipc"
	"github.com/1broseidon/stratum/internal/window"
)

func printEffectsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  stratum effects list [--json]")
	fmt.Fprintln(w, "  stratum effects load <name>")
	fmt.Fprintln(w, "  stratum effects unload <name>")
	fmt.Fprintln(w, "  stratum effects toggle <name>")
	fmt.Fprintln(w, "  stratum effects reconfigure <name>")
	fmt.Fprintln(w, "  stratum effects trigger <name>")
}

func runEffects(args []string) int {
	if len(args) == 0 {
		printEffectsUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	ops := map[string]func(string) error{
		"load":        client.LoadEffect,
		"unload":      client.UnloadEffect,
		"toggle":      client.ToggleEffect,
		"reconfigure": client.ReconfigureEffect,
		"trigger":     client.TriggerEffect,
	}

	switch args[0] {
	case "list":
		return runEffectsList(client, args[1:])
	case "help", "-h", "--help":
		printEffectsUsage(os.Stdout)
		return 0
	}

	op, ok := ops[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown effects command: %s\n\n", args[0])
		printEffectsUsage(os.Stderr)
		return 2
	}
	if len(args) != 2 || strings.TrimSpace(args[1]) == "" {
		fmt.Fprintf(os.Stderr, "effects %s requires exactly one effect name\n", args[0])
		return 2
	}
	if err := op(args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runEffectsList(client *ipc.Client, args []string) int {
	fs := flag.NewFlagSet("effects list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	statuses, err := client.Effects()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(statuses)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLOADED\tACTIVE\tDEFAULT\tTRIGGER")
	for _, st := range statuses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", st.Name, yesNo(st.Loaded), yesNo(st.Active), yesNo(st.EnabledByDefault), yesNo(st.Triggerable))
	}
	tw.Flush()
	return 0
}

func runStack(args []string) int {
	fs := flag.NewFlagSet("stack", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output JSON (bottom to top)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: stratum stack [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the stacking order, topmost window first.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	stack, err := ipc.NewClient().Stack()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(stack)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WINDOW\tLAYER\tDESKTOP\tCLASS\tTITLE")
	for i := len(stack) - 1; i >= 0; i-- {
		e := stack[i]
		id := fmt.Sprintf("0x%x", e.ID)
		if e.Active {
			id += "*"
		}
		desktop := strconv.Itoa(e.Desktop)
		if e.Desktop == window.AllDesktops {
			desktop = "all"
		}
		title := e.Title
		if e.Deleted {
			title += " (closing)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id, e.Layer, desktop, e.Class, title)
	}
	tw.Flush()
	return 0
}

func runWindowOp(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: stratum %s [window-id]\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "The window id is hex (0x...) or decimal. Without one the active")
		fmt.Fprintln(os.Stderr, "window is used.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	var id uint32
	if fs.NArg() == 1 {
		v, err := parseWindowID(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		id = v
	}

	client := ipc.NewClient()
	op := client.Raise
	if name == "lower" {
		op = client.Lower
	}
	if err := op(id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// parseWindowID accepts 0x-prefixed hex or decimal.
func parseWindowID(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(v), nil
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
