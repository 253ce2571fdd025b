// Package cmd implements the command-line interface for jarvis.
//
// This package provides the following commands:
//   - chat: Talk to the assistant in the terminal
//   - webhook: Serve the assistant behind a messaging webhook
//   - serve: Expose the same tools as an MCP server over stdio
//   - accounts: Enrol and list Google accounts
//   - generate-docs: Generate markdown documentation for all tools
//   - version: Display version information
//
// The chat command is the default command when no subcommand is specified.
package cmd
