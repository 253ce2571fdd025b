package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/abdulehsan/Jarvis/internal/agent"
	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/server"
)

// Category headings, in the order they are documented.
const (
	categoryGmail    = "Gmail Tools"
	categoryCalendar = "Google Calendar Tools"
	categoryTasks    = "Google Tasks Tools"
	categoryKeep     = "Google Keep Tools"
	categoryOther    = "Other"
)

var categoryOrder = []string{categoryGmail, categoryCalendar, categoryTasks, categoryKeep, categoryOther}

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate tool documentation",
		Long: `Generate a markdown reference of every tool the assistant can call.
The reference is built from the registered tool definitions, so it always
matches what the agent and 'jarvis serve' expose.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFile == "" {
				return writeToolDocs(cmd.OutOrStdout())
			}
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			if err := writeToolDocs(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// writeToolDocs registers every tool against a credential-less server
// context and renders them.
func writeToolDocs(w io.Writer) error {
	sc, err := server.NewServerContext(context.Background(), server.Options{
		Provider:    &google.StaticTokenProvider{},
		KeepAccount: "docs",
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	full := agent.NewRegistry()
	if err := registerAllTools(full, sc, false); err != nil {
		return err
	}
	safe := agent.NewRegistry()
	if err := registerAllTools(safe, sc, true); err != nil {
		return err
	}

	_, err = io.WriteString(w, generateToolsMarkdown(full.Tools(), safe.Has))
	return err
}

// generateToolsMarkdown renders tools grouped by category. readOnly reports
// whether a tool survives 'jarvis serve' without --yolo.
func generateToolsMarkdown(tools []mcp.Tool, readOnly func(string) bool) string {
	grouped := groupToolsByCategory(tools)

	var sb strings.Builder
	sb.WriteString("# Tools Reference\n\n")
	sb.WriteString("Every tool available to the jarvis assistant and, through `jarvis serve`, to MCP clients.\n")
	sb.WriteString("Generated from the tool definitions with `jarvis generate-docs`.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categoryOrder {
		if len(grouped[category]) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, strings.ToLower(strings.ReplaceAll(category, " ", "-")))
	}

	sb.WriteString("\n## Accounts\n\n")
	sb.WriteString("Calendar, Gmail and Tasks tools require `account_alias`, the alias an account was enrolled under with `jarvis accounts add`.\n")
	sb.WriteString("When a request does not say which account to use and more than one is enrolled, the assistant asks.\n")
	sb.WriteString("Keep tools always act on the account configured as `KEEP_ACCOUNT`.\n\n")

	for _, category := range categoryOrder {
		list := grouped[category]
		if len(list) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, tool := range list {
			writeToolMarkdown(&sb, tool, readOnly == nil || readOnly(tool.Name))
		}
	}
	return sb.String()
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	grouped := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		grouped[category] = append(grouped[category], tool)
	}
	for _, list := range grouped {
		slices.SortFunc(list, func(a, b mcp.Tool) int { return strings.Compare(a.Name, b.Name) })
	}
	return grouped
}

func getCategoryFromToolName(name string) string {
	switch {
	case strings.Contains(name, "gmail"):
		return categoryGmail
	case strings.Contains(name, "event") || strings.Contains(name, "calendar"):
		return categoryCalendar
	case strings.Contains(name, "task"):
		return categoryTasks
	case strings.Contains(name, "note"):
		return categoryKeep
	default:
		return categoryOther
	}
}

func writeToolMarkdown(sb *strings.Builder, tool mcp.Tool, readOnly bool) {
	fmt.Fprintf(sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(sb, "%s\n\n", tool.Description)
	}
	if !readOnly {
		sb.WriteString("_Modifies or deletes data. Only exposed by `jarvis serve --yolo`._\n\n")
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)

	sb.WriteString("| Argument | Type | Required | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, name := range names {
		prop, _ := props[name].(map[string]any)
		typ, _ := prop["type"].(string)
		if typ == "" {
			typ = "any"
		}
		desc, _ := prop["description"].(string)
		required := "no"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "yes"
		}
		fmt.Fprintf(sb, "| `%s` | %s | %s | %s |\n", name, typ, required, strings.ReplaceAll(desc, "|", `\|`))
	}
	sb.WriteString("\n")
}
