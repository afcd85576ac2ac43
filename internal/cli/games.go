package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/scrimbot/internal/api/response"
)

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "games",
		Aliases: []string{"game"},
		Short:   "Game commands",
	}

	cmd.AddCommand(newGamesListCmd())
	cmd.AddCommand(newGamesGetCmd())
	cmd.AddCommand(newGamesParticipantsCmd())

	return cmd
}

func newGamesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all games, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Game
			if err := client.Get(cmd.Context(), "/api/games", &result); err != nil {
				return err
			}
			return NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
		},
	}
}

func newGamesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game
			if err := client.Get(cmd.Context(), "/api/games/"+escape(args[0]), &result); err != nil {
				return err
			}
			return NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
		},
	}
}

func newGamesParticipantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "participants <code>",
		Short: "List the participants of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Participant
			if err := client.Get(cmd.Context(), "/api/games/"+escape(args[0])+"/participants", &result); err != nil {
				return err
			}
			return NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
		},
	}
}
