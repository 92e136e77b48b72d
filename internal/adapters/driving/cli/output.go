package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/drawsync/internal/adapters/driving/styles"
	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// outputStyles returns coloured styles when the command writes to a terminal.
func outputStyles(cmd *cobra.Command) *styles.Styles {
	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return styles.DefaultStyles()
	}
	return styles.PlainStyles()
}

// drawJSON is the --json shape of a draw, matching the HTTP API.
type drawJSON struct {
	Issue    string `json:"issue"`
	OpenTime string `json:"openTime"`
	Week     string `json:"week"`
	RedBalls []int  `json:"redBalls"`
	BlueBall int    `json:"blueBall"`
}

func toDrawJSON(d domain.DrawRecord) drawJSON {
	return drawJSON{
		Issue:    d.IssueLabel,
		OpenTime: d.DrawTimestamp,
		Week:     d.WeekdayLabel,
		RedBalls: append([]int(nil), d.PrimaryNumbers[:]...),
		BlueBall: d.SecondaryNumber,
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
