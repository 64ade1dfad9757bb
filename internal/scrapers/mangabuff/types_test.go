package mangabuff

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseRank(t *testing.T) {
	for _, rank := range Ranks {
		parsed, err := ParseRank(string(rank))
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, rank, parsed)
	}

	parsed, err := ParseRank(" S ")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, RankS, parsed)

	_, err = ParseRank("z")
	require.ErrorIs(t, err, ErrInvalidRank)
	_, err = ParseRank("")
	require.ErrorIs(t, err, ErrInvalidRank)
}

func TestRanksOrder(t *testing.T) {
	codes := ""
	for _, rank := range Ranks {
		codes += string(rank)
	}
	require.Equal(t, "xsapgbcdehnvlq", codes)
}

func TestCardSet(t *testing.T) {
	set := NewCardSet()
	set.Put(&Card{Id: "1", Rank: RankX})
	set.Put(&Card{Id: "2", Rank: RankX})
	set.Put(&Card{Id: "1", Rank: RankS, Name: "Saitama"})

	require.Equal(t, 2, set.Len())
	require.True(t, set.Has("1"))
	require.False(t, set.Has("3"))

	expected := []*Card{
		{Id: "1", Rank: RankS, Name: "Saitama"},
		{Id: "2", Rank: RankX},
	}
	if diff := cmp.Diff(expected, set.Cards()); diff != "" {
		t.Fatal(diff)
	}

	require.Panics(t, func() {
		set.Put(&Card{})
	})
}

func TestCardSetIntersect(t *testing.T) {
	market := NewCardSet()
	market.Put(&Card{Id: "B", Rank: RankX})
	market.Put(&Card{Id: "A", Rank: RankX})

	wishlist := NewCardSet()
	wishlist.Put(&Card{Id: "C", Rank: RankX, Name: "Genos", WorkName: "One Punch Man"})
	wishlist.Put(&Card{Id: "A", Rank: RankX, Name: "Saitama", WorkName: "One Punch Man"})

	expected := []*Card{
		{Id: "A", Rank: RankX, Name: "Saitama", WorkName: "One Punch Man"},
	}
	if diff := cmp.Diff(expected, market.Intersect(wishlist).Cards()); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, 0, market.Intersect(NewCardSet()).Len())
}

func TestKindOf(t *testing.T) {
	testCases := []struct {
		err    error
		expect ErrorKind
	}{
		{err: nil, expect: KindNone},
		{err: ErrInvalidCredentialsFormat, expect: KindInputValidation},
		{err: fmt.Errorf("%w: 'z'", ErrInvalidRank), expect: KindInputValidation},
		{err: ErrEmptyRequest, expect: KindInputValidation},
		{err: ErrNotAuthorized, expect: KindNotAuthorized},
		{err: fmt.Errorf("login: %w", ErrCsrfTokenMissing), expect: KindProtocol},
		{err: ErrAccountIdMissing, expect: KindProtocol},
		{err: &StatusError{Method: http.MethodGet, Url: "/", StatusCode: 503}, expect: KindTransport},
		{err: errors.New("connection reset by peer"), expect: KindTransport},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expect, KindOf(tc.err), fmt.Sprint(tc.err))
	}
	require.Equal(t, "not_authorized", KindNotAuthorized.String())
}
