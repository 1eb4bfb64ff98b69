package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/protocol"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dispatcher, err := buildDispatcher(cmd.Context(), cfg, protocol.ModeLocal, nil)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintln(w, "NAME\tALTERNATIVE\tDESCRIPTION")
			for _, tool := range dispatcher.Tools() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", tool.Name, tool.Alternative, tool.Description)
			}
			return nil
		},
	}
}
