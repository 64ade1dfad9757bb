package commands

import (
	"fmt"
	"mangabuff-tracker/internal/scrapers/mangabuff"
	"mangabuff-tracker/pkg/htmlutil"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	queryText  *string
	queryWant  *bool
	queryRank  *string
	queryTable *bool
	querySave  *bool
)

func init() {
	queryText = queryCmd.Flags().StringP("text", "t", "", "Text to search the market for.")
	queryWant = queryCmd.Flags().BoolP("want", "w", false, "Only keep cards on your wishlist.")
	queryRank = queryCmd.Flags().StringP("rank", "r", "", "Only look at cards of this rank (x, s, a, p, g, b, c, d, e, h, n, v, l, q).")
	queryTable = queryCmd.Flags().Bool("table", false, "Print the cards as a table.")
	querySave = queryCmd.Flags().Bool("save", false, "Store the result in the history database.")
	rootCmd.AddCommand(queryCmd)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func renderCards(cards []*mangabuff.Card) {
	t := newTable()
	t.AppendHeader(table.Row{"Manga", "Card", "Rank", "Lots"})
	for _, card := range cards {
		t.AppendRow(table.Row{
			htmlutil.CleanText(card.WorkName),
			htmlutil.CleanText(card.Name),
			strings.ToUpper(string(card.Rank)),
			strings.Join(card.Lots, ", "),
		})
	}
	t.Render()
}

var queryCmd = &cobra.Command{
	Use:   "query [--text <text>] [--want] [--rank <rank>] [--table] [--save]",
	Short: "Looks up matching cards on the market along with their lots.",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := mangabuff.Query{
			Text: *queryText,
			Want: *queryWant,
		}
		if *queryRank != "" {
			rank, err := mangabuff.ParseRank(*queryRank)
			if err != nil {
				return err
			}
			query.Rank = rank
		}

		cards, err := runQuery(cmd.Context(), query, *querySave)
		if err != nil {
			return err
		}

		if len(cards) == 0 {
			fmt.Println("no cards found")
			return nil
		}
		if *queryTable {
			renderCards(cards)
			return nil
		}
		fmt.Print(mangabuff.FormatCards(cards))
		return nil
	},
}
