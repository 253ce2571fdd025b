package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the jarvis application
var rootCmd = &cobra.Command{
	Use:   "jarvis",
	Short: "A personal assistant for your Google accounts",
	Long: `jarvis is a conversational assistant that manages Google Calendar, Gmail,
Google Tasks and Google Keep across several Google accounts.

It can run as:
  - An interactive terminal chat (default)
  - A messaging webhook (e.g. Twilio WhatsApp or SMS)
  - An MCP (Model Context Protocol) server for other AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

var (
	configPath string
	debugMode  bool
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "jarvis version %s\n" .Version}}`)

	// If no subcommand is provided, run the chat command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "chat")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/jarvis/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newWebhookCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAccountsCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of jarvis",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("jarvis version %s\n", version)
		},
	}
}
