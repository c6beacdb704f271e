package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flamesplit/pkg/history"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent splits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHistory(withLogger(cmd.Context(), c.Logger), n)
		},
	}

	cmd.Flags().IntVarP(&n, "number", "n", history.DefaultLimit, "number of records to show")

	return cmd
}

func (c *CLI) runHistory(ctx context.Context, n int) error {
	store, err := c.newHistory(ctx)
	if err != nil {
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

	recs, err := store.Recent(ctx, n)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if len(recs) == 0 {
		printInfo("No splits recorded yet")
		return nil
	}

	fmt.Println(historyTable(recs, time.Now()))
	return nil
}

// historyTable renders records newest first.
func historyTable(recs []history.Record, now time.Time) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{
			r.Filename,
			fmt.Sprintf("%dx%d", r.Format, r.Format),
			strconv.Itoa(r.Flames),
			strconv.Itoa(r.Tiles),
			strconv.Itoa(r.Skipped),
			formatRelativeTime(r.CreatedAt, now),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("File", "Grid", "Flames", "Tiles", "Skipped", "When").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 4 && recs[row].Skipped > 0:
				return lipgloss.NewStyle().Foreground(colorYellow)
			case col == 5:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
