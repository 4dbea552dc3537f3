// Package main provides the entry point for the artifactminer CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/cmd/artifactminer/commands"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "artifactminer",
		Short: "Mine a folder of developer artifacts for skills, projects and activity",
		Long: `artifactminer ingests a directory or zip archive, classifies its files,
extracts the user's history from embedded git repositories and stores a
structured analysis.

Commands:
  analyze   Analyse a path and print a report
  cache     Inspect or invalidate the bag-of-words cache
  config    Print the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewCacheCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
