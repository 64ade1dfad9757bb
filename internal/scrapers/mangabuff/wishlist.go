package mangabuff

import (
	"context"
	"fmt"
	"mangabuff-tracker/pkg/htmlutil"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

const (
	selectorWishlistList = "div.manga-cards"
	selectorWishlistItem = "div.manga-cards__item-wrapper"
)

// wishlistUrl is the url of the first page of the account's wishlist.
func (s *Session) wishlistUrl() string {
	wishlist := s.BaseUrl.JoinPath("cards", fmt.Sprint(s.AccountId), "offers")
	wishlist.RawQuery = url.Values{"type_w": {"0"}}.Encode()
	return wishlist.String()
}

// CrawlWishlist collects the cards on the logged in account's wishlist for each of the
// given ranks, all ranks if none are given. Only items with an id, a name and the name
// of their manga are kept. The wishlist does not show ranks, so each card carries the
// rank of the page it was found on.
func (s *Session) CrawlWishlist(ctx context.Context, ranks []Rank) (*CardSet, error) {
	wishlistUrl := s.wishlistUrl()
	s.tel.ReportDebug("crawl wishlist", wishlistUrl)

	cards, err := s.crawl(ctx, listing{
		reportId: report_session_crawl_wish,
		pageUrl: func(rank Rank, page int) string {
			return withPage(wishlistUrl, "type", rank, page)
		},
		container: selectorWishlistList,
		items:     selectorWishlistItem,
		accept: func(item *goquery.Selection, rank Rank) *Card {
			id := htmlutil.Attr(item, "data-id")
			name := htmlutil.Attr(item, "data-name")
			workName := htmlutil.Attr(item, "data-manga-name")
			if id == "" || name == "" || workName == "" {
				return nil
			}
			return &Card{
				Id:       id,
				Rank:     rank,
				Name:     name,
				WorkName: workName,
			}
		},
	}, ranks)
	if err != nil {
		return nil, err
	}

	s.tel.ReportCount(report_session_crawl_wish, int64(cards.Len()))
	return cards, nil
}
