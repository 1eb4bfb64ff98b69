// Package app provides the entry point for the lsw command-line application.
package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/config"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/dispatch"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/location"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/logger"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/protocol"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/resilience"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/telemetry"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/tools"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/versions"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/weather"
)

var rootCmd = &cobra.Command{
	Use:               "lsw",
	DisableAutoGenTag: true,
	Short:             "Weather and location assistant tools",
	Long: `lsw exposes National Weather Service and Amazon Location Service
lookups as assistant tools. The same tool set serves three deployment modes:

- local: direct in-process tool calls from this CLI
- mcp: an MCP streamable HTTP server
- bedrock-agent: a Lambda handler for Bedrock agent action groups

Every mode dispatches through the same validation and fallback chain
(retry, circuit breaker, alternative tool, cached response).`,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Initialize()
	},
}

// NewRootCmd creates the root command for the lsw CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		logger.Errorf("Error binding config flag: %v", err)
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.SilenceUsage = true
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			info := versions.GetVersionInfo()
			cmd.Printf("lsw %s (commit %s, built %s, %s, %s)\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
		},
	}
}

// loadConfig reads the configuration file named by --config, falling back
// to environment variables and defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// buildDispatcher assembles the shared execution stack: API clients, the
// tool registry, the fallback manager, and the dispatch manager for the
// given mode.
func buildDispatcher(
	ctx context.Context,
	cfg *config.Config,
	mode protocol.DeploymentMode,
	metrics *telemetry.Metrics,
) (*dispatch.Manager, error) {
	weatherClient, err := weather.NewClient(cfg.Weather)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather client: %w", err)
	}

	// Location tools need AWS credentials; without a region the assistant
	// still serves weather tools.
	var geoAPI tools.GeocodingAPI
	if cfg.Location.Region != "" {
		locationClient, err := location.NewClient(ctx, cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to create location client: %w", err)
		}
		geoAPI = locationClient
	} else {
		logger.Warn("No AWS region configured, location tools disabled")
	}

	registry := tools.NewRegistry()
	if err := tools.RegisterBuiltins(registry, weatherClient, geoAPI); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return dispatch.NewManager(registry, resilience.NewManager(cfg.Resilience), mode, metrics), nil
}
