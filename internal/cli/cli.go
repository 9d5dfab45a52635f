// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for docchat.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool
	NoHistory  bool
	ConfigPath string

	// Command-specific
	Query      string
	Files      []string
	Subcommand string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `docchat - chat with a document analysis agent

Usage:
  docchat [command] [flags]

Commands:
  (none)              Launch the interactive TUI
  ask [question]      Ask a single question and print the answer
  chat                Start an interactive terminal chat (no TUI)
  history [sub]       Manage saved conversations
  config [sub]        Show or initialize configuration
  version             Print version information
  help                Show this help

Ask flags:
  -f, --file FILE     Attach a document (repeatable)

History subcommands:
  list                List saved conversations (default)
  search QUERY        Search conversations by content
  show ID             Print a conversation
  export ID           Print a conversation as markdown
  delete ID           Delete a conversation

Config subcommands:
  show                Print the active configuration (default)
  path                Print the configuration file path
  init                Write a default configuration file

Global flags:
  --config PATH       Use an explicit config file
  --json              Output in JSON format where supported
  --no-history        Disable conversation persistence
  -q, --quiet         Minimal output
  -v, --verbose       Verbose output

Environment:
  DOCCHAT_UPLOAD_URL  Override the upload base URL
  DOCCHAT_CHAT_URL    Override the chat base URL
  DOCCHAT_APP         Override the agent app name
  DOCCHAT_USER        Override the user id
  DOCCHAT_NO_HISTORY  Disable persistence when set
  DOCCHAT_THEME       "dark" or "light"

Examples:
  docchat
  docchat ask "Summarize this" -f report.pdf
  docchat ask -f contract.pdf
  docchat history search "payment terms"
  docchat history export conv_1234 > analysis.md
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("docchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given argument list.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "ask":
		parseAskArgs(&args, remaining)
		return CmdAsk, args

	case "chat":
		return CmdChat, args

	case "history", "sessions":
		parseSubcommand(&args, remaining)
		return CmdHistory, args

	case "config":
		parseSubcommand(&args, remaining)
		return CmdConfig, args

	case "version", "--version", "-V":
		return CmdVersion, args

	case "help", "--help", "-h":
		return CmdHelp, args

	default:
		// Unknown first token: treat the whole line as an ask query.
		args.Query = strings.Join(append([]string{cmd}, remaining...), " ")
		return CmdAsk, args
	}
}

func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		case "--no-history":
			args.NoHistory = true
		case "--config":
			if i+1 < len(argv) {
				i++
				args.ConfigPath = argv[i]
			}
		default:
			remaining = append(remaining, argv[i])
		}
	}

	return remaining, args
}

func parseAskArgs(args *Args, remaining []string) {
	var queryParts []string

	for i := 0; i < len(remaining); i++ {
		switch remaining[i] {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.Files = append(args.Files, remaining[i])
			}
		default:
			queryParts = append(queryParts, remaining[i])
		}
	}

	args.Query = strings.Join(queryParts, " ")
}

func parseSubcommand(args *Args, remaining []string) {
	if len(remaining) == 0 {
		return
	}
	args.Subcommand = strings.ToLower(remaining[0])
	args.Raw = remaining[1:]
	if len(args.Raw) > 0 {
		args.Query = strings.Join(args.Raw, " ")
	}
}
