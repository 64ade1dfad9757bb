package mangabuff

import (
	"fmt"
	"strings"
)

// FormatCards renders cards grouped by manga, groups and the cards inside them
// keep the order they first appear in.
//
//	🥭**<manga>**
//	\t<name>: <rank> - лоты: ['<lot>', '<lot>']
func FormatCards(cards []*Card) string {
	var works []string
	groups := map[string][]*Card{}
	for _, card := range cards {
		if _, seen := groups[card.WorkName]; !seen {
			works = append(works, card.WorkName)
		}
		groups[card.WorkName] = append(groups[card.WorkName], card)
	}

	var out strings.Builder
	for _, work := range works {
		out.WriteString(fmt.Sprintf("🥭**%s**\n", work))
		for _, card := range groups[work] {
			out.WriteString(fmt.Sprintf("\t%s\n", card))
		}
	}
	return out.String()
}
