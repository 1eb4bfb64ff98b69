package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/bedrock"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/logger"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/mcpserver"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/protocol"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/telemetry"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools in the configured deployment mode",
		Long: `Start serving tools in the deployment mode from configuration.

In mcp mode this runs an MCP streamable HTTP server with /health and
/metrics endpoints. In bedrock-agent mode this runs the Lambda runtime
loop for Bedrock agent action-group events. Local mode has no server;
use the query command instead.`,
		RunE: runServe,
	}
	cmd.Flags().String("mode", "", "Deployment mode override (mcp or bedrock-agent)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode := cfg.Mode
	if override, _ := cmd.Flags().GetString("mode"); override != "" {
		mode, err = protocol.ParseDeploymentMode(override)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	metrics := telemetry.NewMetrics()

	dispatcher, err := buildDispatcher(ctx, cfg, mode, metrics)
	if err != nil {
		return err
	}

	switch mode {
	case protocol.ModeMCP:
		srv := mcpserver.New(cfg.Server, dispatcher, metrics)
		return srv.Start(ctx)
	case protocol.ModeBedrockAgent:
		logger.Info("Starting Bedrock agent Lambda handler")
		bedrock.NewHandler(dispatcher).Start()
		return nil
	default:
		return fmt.Errorf("mode %s has no server; use the query command for local calls", mode)
	}
}
