// Package commands implements the artifactminer CLI command handlers.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/config"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/observability"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/version"
)

const flagConfig = "config"

type observabilityInit func(observability.Config) (observability.Providers, error)

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String(flagConfig, "", "Path to an artifactminer.yaml configuration file")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}

	return config.LoadConfig(path)
}

func observabilityConfig(cfg *config.Config, verbose bool) observability.Config {
	oc := observability.DefaultConfig()
	oc.ServiceVersion = version.Version
	oc.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	oc.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	oc.MetricsFile = cfg.Telemetry.MetricsFile
	oc.LogLevel = observability.ParseLevel(cfg.Logging.Level)
	oc.LogJSON = cfg.Logging.JSON

	if verbose {
		oc.LogLevel = observability.ParseLevel("debug")
	}

	return oc
}
