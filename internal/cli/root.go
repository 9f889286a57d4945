package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "mysteryforge",
	Short: "mysteryforge — murder-mystery party kit generator",
	Long: `mysteryforge generates a complete, printable murder-mystery party kit
from a short YAML description: the setting, a cast of suspects, the crime,
a consistent timeline with a chosen killer, clues, character sheets, and a
host guide — packaged as a directory tree and zip archive.

Generation runs through the Gemini API; --dry-run swaps in deterministic
fixtures so the whole pipeline can be exercised offline. Run history is
stored in ~/.mysteryforge/runs.db.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(runsCmd)
}
