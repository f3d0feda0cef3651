package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPrizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prize",
		Short: "Prize management commands",
	}

	cmd.AddCommand(newPrizeCreateCmd())

	return cmd
}

func newPrizeCreateCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "create <prize-id>",
		Short: "Create a prize",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return fmt.Errorf("--title is required")
			}

			req := map[string]string{
				"id":    args[0],
				"title": title,
			}
			var result Prize

			if err := client.Post("/api/v1/prizes", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Prize title (required)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newLevelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "level",
		Short: "Level management commands",
	}

	cmd.AddCommand(newLevelCreateCmd())
	cmd.AddCommand(newLevelListCmd())

	return cmd
}

func newLevelCreateCmd() *cobra.Command {
	var title, prizeID string
	var order int

	cmd := &cobra.Command{
		Use:   "create <level-id>",
		Short: "Create a level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" || prizeID == "" {
				return fmt.Errorf("--title and --prize are required")
			}

			req := map[string]any{
				"id":       args[0],
				"title":    title,
				"order":    order,
				"prize_id": prizeID,
			}
			var result Level

			if err := client.Post("/api/v1/levels", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Level title (required)")
	cmd.Flags().StringVar(&prizeID, "prize", "", "Prize awarded on completion (required)")
	cmd.Flags().IntVar(&order, "order", 0, "Position in the level sequence")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("prize")

	return cmd
}

func newLevelListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List levels in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Level

			if err := client.Get("/api/v1/levels", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
