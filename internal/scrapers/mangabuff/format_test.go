package mangabuff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCards(t *testing.T) {
	cards := []*Card{
		{Id: "1", Rank: RankX, Name: "Saitama", WorkName: "One Punch Man", Lots: []string{"150", "200"}},
		{Id: "2", Rank: RankS, Name: "Mob", WorkName: "Mob Psycho 100"},
		{Id: "3", Rank: RankA, Name: "Genos", WorkName: "One Punch Man", Lots: []string{"75"}},
	}

	expected := "🥭**One Punch Man**\n" +
		"\tSaitama: x - лоты: ['150', '200']\n" +
		"\tGenos: a - лоты: ['75']\n" +
		"🥭**Mob Psycho 100**\n" +
		"\tMob: s - лоты: []\n"
	require.Equal(t, expected, FormatCards(cards))
	require.Equal(t, "", FormatCards(nil))
}
