package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/protocol"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/resilience"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <tool>",
		Short: "Run a single tool call in local mode",
		Long: `Run one tool call directly, without a server.

Arguments are passed as a JSON object. For example:

  lsw query current_weather --args '{"latitude": 47.6062, "longitude": -122.3321}'
  lsw query search_places --args '{"query": "pike place market"}'`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}
	cmd.Flags().String("args", "{}", "Tool arguments as a JSON object")
	return cmd
}

func runQuery(cmd *cobra.Command, positional []string) error {
	rawArgs, _ := cmd.Flags().GetString("args")
	var args map[string]any
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return fmt.Errorf("--args must be a JSON object: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dispatcher, err := buildDispatcher(cmd.Context(), cfg, protocol.ModeLocal, nil)
	if err != nil {
		return err
	}

	result, err := dispatcher.Dispatch(cmd.Context(), positional[0], args)
	if err != nil {
		payload, marshalErr := json.MarshalIndent(dispatcher.FormatError(err), "", "  ")
		if marshalErr != nil {
			return err
		}
		cmd.PrintErrln(string(payload))
		return err
	}

	output, err := json.MarshalIndent(result.Value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	cmd.Println(string(output))

	if result.Source != resilience.SourcePrimary {
		cmd.PrintErrf("note: result served by %s\n", result.Source)
	}
	return nil
}
