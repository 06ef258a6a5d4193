package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/davidcforbes/beads-kanban/internal/config"
	"github.com/davidcforbes/beads-kanban/internal/debug"
	"github.com/davidcforbes/beads-kanban/internal/telemetry"
)

var (
	jsonOutput   bool
	readOnlyFlag bool
	verboseFlag  bool
	quietFlag    bool
	profileFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "bdk",
	Short: "bdk - Kanban board over the bd issue tracker",
	Long: `A kanban view of a beads workspace. bdk runs the bd CLI under the
hood: columns are live backend queries behind a short cache, and every
change goes through bd itself.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("bdk version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.Initialize(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
		}
		applyGlobalFlags(cmd)
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)

		if err := telemetry.Init(cmd.Context(), "bdk", Version); err != nil {
			debug.Logf("telemetry init: %v", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		telemetry.Shutdown(cmd.Context())
	},
}

// applyGlobalFlags pushes explicitly-set persistent flags into config so
// flag > env > file precedence holds for everything downstream.
func applyGlobalFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("json") {
		config.Set("json", jsonOutput)
	}
	if flags.Changed("read-only") {
		config.Set("read-only", readOnlyFlag)
	}
	if flags.Changed("verbose") {
		config.Set("verbose", verboseFlag)
	}
	if flags.Changed("quiet") {
		config.Set("quiet", quietFlag)
	}
	if flags.Changed("profile") {
		config.Set("profile", profileFlag)
	}

	// Un-flagged invocations still honor config and env.
	jsonOutput = config.GetBool("json")
	readOnlyFlag = config.GetBool("read-only")
	verboseFlag = config.GetBool("verbose")
	quietFlag = config.GetBool("quiet")
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&readOnlyFlag, "read-only", false, "Reject all mutations locally")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Board layout profile from .beads/kanban.toml")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
