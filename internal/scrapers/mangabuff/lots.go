package mangabuff

import (
	"context"
	"fmt"
	"mangabuff-tracker/pkg/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	selectorCardShow  = "div.card-show"
	selectorLot       = "div.market-show__item"
	selectorLotPrice  = "div.market-show__item-price"
	attributeCardName = "data-name"
)

// EnrichLots fetches the market page of every card and fills in its name and its
// active lots, returning the same slice. A card whose page does not show the card
// is left as is. Lots are replaced rather than appended to, so enriching twice gives
// the same result.
func (s *Session) EnrichLots(ctx context.Context, cards []*Card) ([]*Card, error) {
	for _, card := range cards {
		err := s.enrichCard(ctx, card)
		if err != nil {
			s.tel.ReportBroken(report_session_enrich_lots, err, card.Id)
			return nil, err
		}
	}
	return cards, nil
}

func (s *Session) enrichCard(ctx context.Context, card *Card) error {
	endpoint := s.BaseUrl.JoinPath("market", "card", card.Id).String()
	doc, err := s.crawlDocument(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("fetch card page: %w", err)
	}

	show := doc.Find(selectorCardShow).First()
	if show.Length() == 0 {
		s.tel.ReportDebug("card page without card", card.Id)
		return nil
	}

	name := htmlutil.Attr(show, attributeCardName)
	if name != "" {
		card.Name = name
	}

	lots := []string{}
	doc.Find(selectorLot).Each(func(_ int, item *goquery.Selection) {
		price := item.Find(selectorLotPrice).First()
		if price.Length() == 0 {
			return
		}
		text := strings.TrimSpace(price.Text())
		if text == "" {
			return
		}
		lots = append(lots, text)
	})
	card.Lots = lots

	return nil
}
