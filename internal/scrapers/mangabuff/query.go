package mangabuff

import (
	"context"
	"fmt"
	"strings"
)

// Query selects the cards GetCardsLots looks up.
type Query struct {
	// searched on the market, case does not matter
	Text string
	// restricts the result to cards on the account's wishlist
	Want bool
	// empty means every rank
	Rank Rank
}

func (q Query) normalized() Query {
	q.Text = strings.ToLower(strings.TrimSpace(q.Text))
	return q
}

func (q Query) validate() error {
	if q.Text == "" && !q.Want {
		return ErrEmptyRequest
	}
	if q.Rank != "" && !q.Rank.Valid() {
		return fmt.Errorf("%w: '%s'", ErrInvalidRank, q.Rank)
	}
	return nil
}

func (q Query) ranks() []Rank {
	if q.Rank == "" {
		return Ranks
	}
	return []Rank{q.Rank}
}

// GetCardsLots finds the market cards matching the query and returns them with
// their names and active lots.
//
// With Want set only the cards that are also on the account's wishlist are kept,
// and they carry the wishlist's name and manga. Without it, the manga of every card
// is taken to be the search text.
func (s *Session) GetCardsLots(ctx context.Context, query Query) ([]*Card, error) {
	query = query.normalized()
	err := query.validate()
	if err != nil {
		return nil, err
	}
	ranks := query.ranks()

	marketUrl := MarketUrl(s.BaseUrl, query.Text, query.Want)
	market, err := s.CrawlMarket(ctx, marketUrl, ranks)
	if err != nil {
		return nil, err
	}
	if market.Len() == 0 {
		s.tel.ReportDebug("no cards on the market", marketUrl)
		return []*Card{}, nil
	}

	if query.Want {
		wishlist, err := s.CrawlWishlist(ctx, ranks)
		if err != nil {
			return nil, err
		}
		market = market.Intersect(wishlist)
	} else {
		for _, card := range market.Cards() {
			card.WorkName = query.Text
		}
	}

	cards, err := s.EnrichLots(ctx, market.Cards())
	if err != nil {
		return nil, err
	}
	s.tel.ReportCount(report_session_get_lots, int64(len(cards)))
	return cards, nil
}
