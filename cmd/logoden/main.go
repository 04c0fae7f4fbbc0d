package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"logoden/internal/cache"
	"logoden/internal/config"
	"logoden/internal/db"
	"logoden/internal/history"
	"logoden/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"add": true, "revise": true, "list": true, "show": true,
	"rename": true, "delete": true, "bulk-delete": true,
	"catalog": true, "export": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _                     _
  | | ___   __ _  ___   | | ___ _ __
  | |/ _ \ / _' |/ _ \ / _' |/ _ \ '_ \
  | | (_) | (_| | (_) | (_| |  __/ | | |
  |_|\___/ \__, |\___/ \__,_|\___|_| |_|
           |___/

  Local logo history store

  Usage: logoden <command> [options]
         logoden --help

  MCP server mode requires piped input.`)
}

// ownerID resolves the acting user. Everything is local, so a single
// default owner serves unless overridden.
func ownerID() string {
	if v := os.Getenv("LOGODEN_OWNER"); v != "" {
		return v
	}
	return "local"
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".logoden")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	db.ConfigurePool(database, cfg)

	st := db.NewStore(database)
	images := cache.NewImageCache(cfg.ImageCacheCapacity, time.Duration(cfg.ImageCacheTTLSeconds)*time.Second)
	flags := cache.NewCatalogFlags(baseDir)
	session := history.NewSession(st, images, flags, ownerID(), cfg.PageSize)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(st, session, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'logoden --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		fmt.Fprintf(os.Stderr, "error: unknown disabled tools in config: %v\n", unknown)
		os.Exit(1)
	}
	if err := mcp.Run(session, st, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
