package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gullak",
	Short: "Gullak - autonomous income allocator",
	Long: `Gullak is a personal-finance backend for gig workers with irregular
income. It syncs payment-source snapshots, allocates every new income
credit across savings goals, and keeps goal targets aligned with how the
user actually earns.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
