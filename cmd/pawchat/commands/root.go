// Package commands provides the CLI commands for PawChat.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pawchat-ai/pawchat/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	logLevel  string
	logPretty bool
)

var rootCmd = &cobra.Command{
	Use:   "pawchat",
	Short: "PawChat - conversational cat chatbot server",
	Long: `PawChat is a small chatbot backend that runs fixed-length
question-and-answer conversations about cats, generating questions and
reactions with an LLM and archiving finished sessions.

Run 'pawchat serve' to start the HTTP API server.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Config{
			Level:  logging.ParseLevel(logLevel),
			Pretty: logPretty,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", false, "Human-readable console logging")

	rootCmd.SetVersionTemplate(fmt.Sprintf("pawchat %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
