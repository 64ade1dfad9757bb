package mangabuff

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// listing describes a paginated card listing.
type listing struct {
	reportId string
	// pageUrl builds the url of the given page (starting at 1) for a rank.
	pageUrl func(rank Rank, page int) string
	// container selects the element holding the cards, items select the cards inside it.
	container string
	items     string
	// accept turns an item into a card, returning nil skips the item.
	accept func(item *goquery.Selection, rank Rank) *Card
}

// crawl walks every page of the listing for each rank in order. Pagination of a rank
// stops at the first page that has no container or no items, or after MaxPages pages.
// Cards are deduplicated by id, a later sighting replaces an earlier one.
func (s *Session) crawl(ctx context.Context, l listing, ranks []Rank) (*CardSet, error) {
	if len(ranks) == 0 {
		ranks = Ranks
	}

	result := NewCardSet()
	for _, rank := range ranks {
		page := 1
		for ; page <= s.opts.MaxPages; page++ {
			endpoint := l.pageUrl(rank, page)
			s.tel.ReportDebug("crawl page", endpoint)

			doc, err := s.crawlDocument(ctx, endpoint)
			if err != nil {
				s.tel.ReportBroken(l.reportId, fmt.Errorf("fetch: %w", err), endpoint)
				return nil, err
			}

			container := doc.Find(l.container).First()
			if container.Length() == 0 {
				break
			}
			items := container.Find(l.items)
			if items.Length() == 0 {
				break
			}

			items.Each(func(_ int, item *goquery.Selection) {
				card := l.accept(item, rank)
				if card == nil {
					return
				}
				result.Put(card)
			})
		}
		if page > s.opts.MaxPages {
			s.tel.ReportWarning(
				l.reportId,
				fmt.Errorf("page limit of %d reached, the listing may have changed", s.opts.MaxPages),
				rank,
			)
		}
	}

	return result, nil
}
