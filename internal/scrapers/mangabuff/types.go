package mangabuff

import (
	"fmt"
	"mangabuff-tracker/internal/components/assert"
	"strings"
)

// Rank is the rarity tier of a card, as the site spells it in query parameters.
type Rank string

const (
	RankX Rank = "x"
	RankS Rank = "s"
	RankA Rank = "a"
	RankP Rank = "p"
	RankG Rank = "g"
	RankB Rank = "b"
	RankC Rank = "c"
	RankD Rank = "d"
	RankE Rank = "e"
	RankH Rank = "h"
	RankN Rank = "n"
	RankV Rank = "v"
	RankL Rank = "l"
	RankQ Rank = "q"
)

// Ranks lists every rank in declaration order, this is the order ranks are
// crawled in when a query does not filter by rank.
var Ranks = []Rank{
	RankX, RankS, RankA, RankP, RankG, RankB, RankC,
	RankD, RankE, RankH, RankN, RankV, RankL, RankQ,
}

func (r Rank) Valid() bool {
	for _, known := range Ranks {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRank accepts a rank code in either case.
func ParseRank(s string) (Rank, error) {
	r := Rank(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidRank, s)
	}
	return r, nil
}

// Card is a single card as seen on the market, the wishlist or its own page.
// Cards are identified by Id alone.
type Card struct {
	Id       string
	Rank     Rank
	Name     string
	WorkName string
	Lots     []string
}

// String renders the card the way the tracker posts it, lots are quoted: ['150', '200'].
func (c Card) String() string {
	quoted := make([]string, len(c.Lots))
	for i, lot := range c.Lots {
		quoted[i] = "'" + lot + "'"
	}
	return fmt.Sprintf("%s: %s - лоты: [%s]", c.Name, c.Rank, strings.Join(quoted, ", "))
}

// CardSet is a set of cards keyed by id that remembers insertion order.
type CardSet struct {
	order []string
	cards map[string]*Card
}

func NewCardSet() *CardSet {
	return &CardSet{cards: map[string]*Card{}}
}

// Put adds a card, if a card with the same id is already present it is replaced
// but keeps its original position.
func (s *CardSet) Put(card *Card) {
	assert.NotNil(card)
	assert.NotEmptyStr(card.Id)

	if _, exists := s.cards[card.Id]; !exists {
		s.order = append(s.order, card.Id)
	}
	s.cards[card.Id] = card
}

func (s *CardSet) Get(id string) (*Card, bool) {
	card, ok := s.cards[id]
	return card, ok
}

func (s *CardSet) Has(id string) bool {
	_, ok := s.cards[id]
	return ok
}

func (s *CardSet) Len() int {
	return len(s.order)
}

// Cards returns the cards in the order their ids were first added.
func (s *CardSet) Cards() []*Card {
	out := make([]*Card, len(s.order))
	for i, id := range s.order {
		out[i] = s.cards[id]
	}
	return out
}

// Intersect returns the cards of s whose id is also in other, in the order of s.
// The copy held by other is the one kept.
func (s *CardSet) Intersect(other *CardSet) *CardSet {
	out := NewCardSet()
	for _, id := range s.order {
		card, ok := other.Get(id)
		if !ok {
			continue
		}
		out.Put(card)
	}
	return out
}
