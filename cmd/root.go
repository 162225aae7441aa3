package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// rootCmd is the entry point when the binary is invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "mcpgateway",
	Short: "Aggregate multiple MCP servers behind a single MCP endpoint",
	Long: `mcpgateway connects to a set of configured MCP backends (stdio
subprocesses or SSE servers), aggregates their tools, resources and
prompts under a single name, and forwards calls to the owning backend.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command, injected at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits the process with an appropriate code.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpgateway version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
