package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/config"
	"github.com/davidcforbes/beads-kanban/internal/telemetry"
)

var (
	// Version is the current version of bdk (overridden by ldflags at build time)
	Version = "0.3.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
	// Commit is the git revision the binary was built from (optional ldflag)
	Commit = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		checkBackend, _ := cmd.Flags().GetBool("backend")
		if checkBackend {
			showBackendVersion(cmd)
			return
		}

		commit := resolveCommitHash()
		if jsonOutput {
			result := map[string]string{
				"version": Version,
				"build":   Build,
			}
			if commit != "" {
				result["commit"] = commit
			}
			outputJSON(result)
			return
		}
		if commit != "" {
			fmt.Printf("bdk version %s (%s: %s)\n", Version, Build, shortCommit(commit))
		} else {
			fmt.Printf("bdk version %s (%s)\n", Version, Build)
		}
	},
}

// showBackendVersion reports both sides of the subprocess boundary:
// this binary and whatever `bd version` answers.
func showBackendVersion(cmd *cobra.Command) {
	opts := config.BoardOptions()
	runner := telemetry.WrapRunner(&backend.ExecRunner{Binary: opts.BackendBinary})
	client := backend.NewClient(runner, opts.ReadTimeout, opts.WriteTimeout)

	backendVersion, err := client.Version(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: backend %q is not answering: %v\n", opts.BackendBinary, err)
		fmt.Fprintf(os.Stderr, "Hint: install bd or set BDK_BACKEND_BINARY\n")
		os.Exit(1)
	}

	if jsonOutput {
		outputJSON(map[string]string{
			"version":         Version,
			"backend":         opts.BackendBinary,
			"backend_version": backendVersion,
		})
		return
	}
	fmt.Printf("bdk version: %s\n", Version)
	fmt.Printf("backend:     %s %s\n", opts.BackendBinary, backendVersion)
}

func resolveCommitHash() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}
	return ""
}

func shortCommit(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func init() {
	versionCmd.Flags().Bool("backend", false, "Also query the bd backend's version")
	rootCmd.AddCommand(versionCmd)
}
