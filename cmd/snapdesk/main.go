package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/snapdesk/internal/config"
	"github.com/1broseidon/snapdesk/internal/ipc"
	"github.com/1broseidon/snapdesk/internal/platform"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemonCmd(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "screen":
		os.Exit(runScreen(os.Args[2:]))
	case "open":
		os.Exit(runOpen(os.Args[2:]))
	case "close", "focus", "minimize", "maximize":
		os.Exit(runWindowOp(os.Args[1], os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "drag":
		os.Exit(runDrag(os.Args[2:]))
	case "pointer":
		os.Exit(runPointer(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
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
	fmt.Fprintln(w, "Usage: snapdesk <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Run a headless desktop session (foreground)")
	fmt.Fprintln(w, "  tui                 Run a desktop session in the terminal")
	fmt.Fprintln(w, "  status              Show session status")
	fmt.Fprintln(w, "  reload              Reload configuration in the running session")
	fmt.Fprintln(w, "  screen              Show the screen bound the config resolves to")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  open [tag]          Open a window (pick from the launcher without a tag)")
	fmt.Fprintln(w, "  close <id>          Close a window")
	fmt.Fprintln(w, "  focus <id>          Raise and activate a window")
	fmt.Fprintln(w, "  minimize <id>       Minimize a window")
	fmt.Fprintln(w, "  maximize <id>       Toggle maximize on a window")
	fmt.Fprintln(w, "  move <id> x y w h   Set a window's geometry")
	fmt.Fprintln(w, "  drag <id> dx dy     Drag a window by its title bar or a border")
	fmt.Fprintln(w, "  pointer             Send raw pointer down/move/up events")
	fmt.Fprintln(w, "  list                List windows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config path         Print the config file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'snapdesk <command> --help' for command-specific options.")
}

// newFlagSet returns a flag set that prints usage to stderr.
func newFlagSet(name string, usage ...string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		for _, line := range usage {
			fmt.Fprintln(os.Stderr, line)
		}
		if len(usage) > 0 {
			fmt.Fprintln(os.Stderr, "")
		}
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses args and maps flag errors to exit codes. ok is false
// when the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "Usage: snapdesk status", "Show session status via IPC.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("session_id:     %s\n", status.SessionID)
	fmt.Printf("screen:         %dx%d (taskbar %d)\n", status.Screen.Width, status.Screen.Height, status.Screen.Taskbar)
	fmt.Printf("window_count:   %d\n", status.WindowCount)
	if status.ActiveWindow != 0 {
		fmt.Printf("active_window:  %d\n", status.ActiveWindow)
	}
	fmt.Printf("uptime:         %s\n", status.Uptime())
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "Usage: snapdesk reload", "Re-read the config file and apply it to the running session.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reloaded")
	return 0
}

func runScreen(args []string) int {
	fs := newFlagSet("screen", "Usage: snapdesk screen [--path PATH]", "Resolve the screen bound from the configured screen source.")
	path := fs.String("path", "", "Config file path (default: ~/.config/snapdesk/config.yaml)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	src, err := platform.FromConfig(res.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	screen, err := platform.Resolve(src, res.Config.ScreenBound())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (using configured screen)\n", err)
	}
	usable := screen.Usable()
	fmt.Printf("source:  %s\n", src.Name())
	fmt.Printf("screen:  %dx%d\n", screen.Width, screen.Height)
	fmt.Printf("taskbar: %d\n", screen.Taskbar)
	fmt.Printf("usable:  %s\n", usable)
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  snapdesk config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  snapdesk config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  snapdesk config explain [--path PATH] <yaml.path>")
		fmt.Fprintln(os.Stderr, "  snapdesk config path")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := newFlagSet("validate")
		path := fs.String("path", "", "Config file path (default: ~/.config/snapdesk/config.yaml)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := newFlagSet("print")
		path := fs.String("path", "", "Config file path (default: ~/.config/snapdesk/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			if res.File != "" {
				fmt.Printf("# file: %s\n", res.File)
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
		fs := newFlagSet("explain")
		path := fs.String("path", "", "Config file path (default: ~/.config/snapdesk/config.yaml)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
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

	case "path":
		p, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(p)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
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
		return "default"
	default:
		return string(src.Kind)
	}
}
