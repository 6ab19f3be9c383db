package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/snapdesk/internal/ipc"
	"github.com/1broseidon/snapdesk/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: snapdesk mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'snapdesk mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := newFlagSet("mcp serve", "Usage: snapdesk mcp serve [--path PATH]",
		"Start the MCP server on stdio. The tools act on the running session",
		"('snapdesk daemon' or 'snapdesk tui') over IPC.")
	path := fs.String("path", "", "Config file path (default: ~/.config/snapdesk/config.yaml)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if !res.Config.MCP.Enabled {
		fmt.Fprintln(os.Stderr, "MCP server is disabled (set mcp.enabled: true in config)")
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: res.Config.SlogLevel()}))
	client := ipc.NewClient()
	if err := client.Ping(); err != nil {
		logger.Warn("no running session yet; tools will fail until one starts", slog.String("error", err.Error()))
	}
	server := mcp.NewServer(client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
