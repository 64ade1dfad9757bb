package mangabuff

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCrawlWishlist(t *testing.T) {
	origin := newFakeOrigin(t)
	origin.wishlist["x/1"] = wishlistPage(
		wishItem{id: "1", name: "Saitama", workName: "One Punch Man"},
		wishItem{id: "2", name: "", workName: "One Punch Man"},
		wishItem{id: "3", name: "Genos", workName: ""},
		wishItem{id: "4", name: "  Mob ", workName: "Mob Psycho 100"},
	)

	s, clock, _ := origin.login(t)
	cards, err := s.CrawlWishlist(context.Background(), []Rank{RankX})
	if err != nil {
		t.Fatal(err)
	}

	expected := []*Card{
		{Id: "1", Rank: RankX, Name: "Saitama", WorkName: "One Punch Man"},
		{Id: "4", Rank: RankX, Name: "Mob", WorkName: "Mob Psycho 100"},
	}
	if diff := cmp.Diff(expected, cards.Cards()); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, []string{
		"GET /cards/42/offers?type_w=0&type=x&page=1",
		"GET /cards/42/offers?type_w=0&type=x&page=2",
	}, origin.Requests())
	require.Len(t, clock.Sleeps(), 2)
}

func TestCrawlWishlistInheritsRank(t *testing.T) {
	origin := newFakeOrigin(t)
	origin.wishlist["s/1"] = wishlistPage(wishItem{id: "1", name: "Saitama", workName: "One Punch Man"})
	origin.wishlist["a/1"] = wishlistPage(wishItem{id: "2", name: "Genos", workName: "One Punch Man"})

	s, _, _ := origin.login(t)
	cards, err := s.CrawlWishlist(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	saitama, ok := cards.Get("1")
	require.True(t, ok)
	require.Equal(t, RankS, saitama.Rank)
	genos, ok := cards.Get("2")
	require.True(t, ok)
	require.Equal(t, RankA, genos.Rank)

	// every rank is visited, the two non empty ones take a second page
	require.Len(t, origin.Requests(), len(Ranks)+2)
}
