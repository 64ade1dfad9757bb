package commands

import (
	"fmt"
	"mangabuff-tracker/internal/scrapers/mangabuff"
	"mangabuff-tracker/internal/snapshot"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	historyLimit *int
	historyCards *bool
)

func init() {
	historyLimit = historyCmd.Flags().IntP("limit", "n", 10, "The number of runs to show, 0 shows all of them.")
	historyCards = historyCmd.Flags().Bool("cards", false, "Print the cards of every run after the table.")
	rootCmd.AddCommand(historyCmd)
}

func describeQuery(query mangabuff.Query) string {
	parts := []string{}
	if query.Text != "" {
		parts = append(parts, fmt.Sprintf("'%s'", query.Text))
	}
	if query.Want {
		parts = append(parts, "wishlist")
	}
	if query.Rank != "" {
		parts = append(parts, "rank "+strings.ToUpper(string(query.Rank)))
	}
	return strings.Join(parts, ", ")
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>] [--cards]",
	Short: "Lists stored query runs, most recent first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, db, err := snapshot.OpenStore(cfg.Database, tel)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := store.List(cmd.Context(), *historyLimit)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Run", "Time", "Query", "Cards", "Lots"})
		for _, run := range runs {
			lots := 0
			for _, card := range run.Cards {
				lots += len(card.Lots)
			}
			t.AppendRow(table.Row{
				run.Id,
				run.Time.Format(time.DateTime),
				describeQuery(run.Query),
				len(run.Cards),
				lots,
			})
		}
		t.Render()

		if *historyCards {
			for _, run := range runs {
				fmt.Printf("\nrun %d\n%s", run.Id, mangabuff.FormatCards(run.Cards))
			}
		}
		return nil
	},
}
