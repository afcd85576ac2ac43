package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mcoot/scrimbot/internal/api/response"
)

// Output formats results in the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) error {
	if o.format == "json" {
		return o.printJSON(data)
	}
	return o.printText(data)
}

func (o *Output) printJSON(data any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (o *Output) printText(data any) error {
	switch v := data.(type) {
	case []response.Game:
		return o.printGames(v)
	case response.Game:
		o.printGame(v)
	case []response.Participant:
		return o.printParticipants(v)
	case []response.Player:
		return o.printPlayers(v)
	case response.Player:
		o.printPlayer(v)
	case []response.Participation:
		return o.printParticipations(v)
	case response.SanctionStatus:
		o.printSanction(v)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\nStorage: %s\n", v.Status, v.Storage)
	default:
		return o.printJSON(data)
	}
	return nil
}

func (o *Output) table(header string, rows func(w io.Writer)) error {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

func (o *Output) printGames(games []response.Game) error {
	if len(games) == 0 {
		fmt.Fprintln(o.w, "No games")
		return nil
	}
	return o.table("CODE\tMODE\tSTATUS\tLIMIT\tCREATED", func(w io.Writer) {
		for _, g := range games {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", g.Code, g.Mode, g.Status, g.Limit, formatTime(g.CreatedAt))
		}
	})
}

func (o *Output) printGame(g response.Game) {
	fmt.Fprintf(o.w, "Game: %s\n", g.Code)
	fmt.Fprintf(o.w, "Mode: %s\n", g.Mode)
	fmt.Fprintf(o.w, "Status: %s\n", g.Status)
	fmt.Fprintf(o.w, "Limit: %d\n", g.Limit)
	fmt.Fprintf(o.w, "Creator: %s\n", g.CreatorID)
	fmt.Fprintf(o.w, "Created: %s\n", formatTime(g.CreatedAt))
	if g.EndTime != nil {
		fmt.Fprintf(o.w, "Ended: %s\n", formatTime(*g.EndTime))
	}
	if len(g.WinnerEpicNames) > 0 {
		fmt.Fprintf(o.w, "Winners: %s\n", strings.Join(g.WinnerEpicNames, ", "))
	}
}

func (o *Output) printParticipants(ps []response.Participant) error {
	if len(ps) == 0 {
		fmt.Fprintln(o.w, "No participants")
		return nil
	}
	return o.table("DISCORD ID\tEPIC NAME\tWON", func(w io.Writer) {
		for _, p := range ps {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.PlayerID, p.EpicName, yesNo(p.HasWon))
		}
	})
}

func (o *Output) printPlayers(players []response.Player) error {
	if len(players) == 0 {
		fmt.Fprintln(o.w, "No players")
		return nil
	}
	return o.table("DISCORD ID\tEPIC NAME\tGAMES\tWINS\tCREATOR", func(w io.Writer) {
		for _, p := range players {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", p.ID, p.EpicName, p.GameCount, p.TotalWins, yesNo(p.IsCreator))
		}
	})
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.EpicName, p.ID)
	if p.TwitchLogin != "" {
		fmt.Fprintf(o.w, "Twitch: %s\n", p.TwitchLogin)
	}
	if p.YouTubeURL != "" {
		fmt.Fprintf(o.w, "YouTube: %s\n", p.YouTubeURL)
	}
	fmt.Fprintf(o.w, "Games: %d\n", p.GameCount)
	fmt.Fprintf(o.w, "Wins: %d\n", p.TotalWins)
	fmt.Fprintf(o.w, "Creator: %s\n", yesNo(p.IsCreator))
}

func (o *Output) printParticipations(ps []response.Participation) error {
	if len(ps) == 0 {
		fmt.Fprintln(o.w, "No participations")
		return nil
	}
	return o.table("CODE\tMODE\tWON\tCREATED", func(w io.Writer) {
		for _, p := range ps {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.GameCode, p.Mode, yesNo(p.HasWon), formatTime(p.CreatedAt))
		}
	})
}

func (o *Output) printSanction(s response.SanctionStatus) {
	if s.ActiveSanction == nil {
		fmt.Fprintln(o.w, "No active sanction")
		return
	}
	a := s.ActiveSanction
	fmt.Fprintf(o.w, "Sanction: %s\n", a.ID)
	fmt.Fprintf(o.w, "Type: %s\n", a.Type)
	fmt.Fprintf(o.w, "Ends: %s\n", formatTime(a.EndTime))
	names := make([]string, len(a.Roles))
	for i, r := range a.Roles {
		names[i] = r.Name
	}
	if len(names) > 0 {
		fmt.Fprintf(o.w, "Roles removed: %s\n", strings.Join(names, ", "))
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
