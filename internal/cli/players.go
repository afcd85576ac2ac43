package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/scrimbot/internal/api/response"
)

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "players",
		Aliases: []string{"player"},
		Short:   "Player commands",
	}

	cmd.AddCommand(newPlayersListCmd())
	cmd.AddCommand(newPlayersGetCmd())
	cmd.AddCommand(newPlayersParticipationsCmd())
	cmd.AddCommand(newPlayersSanctionCmd())

	return cmd
}

func newPlayersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List linked players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Player
			if err := client.Get(cmd.Context(), "/api/players", &result); err != nil {
				return err
			}
			return NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
		},
	}
}

func newPlayersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <discord-id>",
		Short: "Show one player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := client.Get(cmd.Context(), "/api/players/"+escape(args[0]), &result); err != nil {
				return err
			}
			return NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
		},
	}
}

func newPlayersParticipationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "participations <discord-id>",
		Short: "List the games a player took part in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Participation
			if err := client.Get(cmd.Context(), "/api/players/"+escape(args[0])+"/participations", &result); err != nil {
				return err
			}
			return NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
		},
	}
}

func newPlayersSanctionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sanction <discord-id>",
		Short: "Show a player's active sanction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.SanctionStatus
			if err := client.Get(cmd.Context(), "/api/players/"+escape(args[0])+"/sanction", &result); err != nil {
				return err
			}
			return NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Health
			if err := client.Get(cmd.Context(), "/api/health", &result); err != nil {
				return err
			}
			return NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
		},
	}
}
