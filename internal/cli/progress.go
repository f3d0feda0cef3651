package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Level progress commands",
	}

	cmd.AddCommand(newProgressStartCmd())
	cmd.AddCommand(newProgressCompleteCmd())
	cmd.AddCommand(newProgressGetCmd())

	return cmd
}

func newProgressStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <player-id> <level-id>",
		Short: "Start a level for a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Progress

			path := fmt.Sprintf("/api/v1/players/%s/levels/%s/start", args[0], args[1])
			if err := client.Post(path, nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newProgressCompleteCmd() *cobra.Command {
	var score int

	cmd := &cobra.Command{
		Use:   "complete <player-id> <level-id>",
		Short: "Complete a level and claim its prize",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int{"score": score}
			var result Progress

			path := fmt.Sprintf("/api/v1/players/%s/levels/%s/complete", args[0], args[1])
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&score, "score", 0, "Score achieved on the level")

	return cmd
}

func newProgressGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <player-id> <level-id>",
		Short: "Show a player's progress on a level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Progress

			path := fmt.Sprintf("/api/v1/players/%s/levels/%s", args[0], args[1])
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
