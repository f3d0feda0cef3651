package cli

import (
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Trigger a background snapshot export",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ExportAccepted

			if err := client.Post("/api/v1/export", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
