// Package resources exposes read-only MCP resources describing the
// connected Google accounts, so an MCP client can pick an account_alias
// before calling a tool.
package resources
