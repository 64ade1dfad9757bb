package mangabuff

import (
	"context"
	"fmt"
	"mangabuff-tracker/pkg/htmlutil"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	selectorMarketList = "div.market-list__cards.market-list__cards--all.manga-cards"
	selectorMarketItem = "div.manga-cards__item-wrapper"
)

// MarketUrl builds the market listing url for a search, parameters that are
// empty (or false) are left out.
func MarketUrl(baseUrl *url.URL, text string, want bool) string {
	params := url.Values{}
	if text != "" {
		params.Set("q", text)
	}
	if want {
		params.Set("want", "1")
	}

	marketUrl := baseUrl.JoinPath("market")
	marketUrl.RawQuery = params.Encode()
	return marketUrl.String()
}

// withPage appends the rank and page parameters to a listing url.
func withPage(listingUrl string, rankParam string, rank Rank, page int) string {
	sep := "?"
	if strings.Contains(listingUrl, "?") {
		sep = "&"
	}
	params := url.Values{}
	params.Set(rankParam, string(rank))
	return fmt.Sprintf("%s%s%s&page=%d", listingUrl, sep, params.Encode(), page)
}

// CrawlMarket collects the card stubs listed under marketUrl (see MarketUrl) for each
// of the given ranks, all ranks if none are given. Each card carries the rank of the
// page it was found on.
func (s *Session) CrawlMarket(ctx context.Context, marketUrl string, ranks []Rank) (*CardSet, error) {
	s.tel.ReportDebug("crawl market", marketUrl)

	cards, err := s.crawl(ctx, listing{
		reportId: report_session_crawl_market,
		pageUrl: func(rank Rank, page int) string {
			return withPage(marketUrl, "rank", rank, page)
		},
		container: selectorMarketList,
		items:     selectorMarketItem,
		accept: func(item *goquery.Selection, rank Rank) *Card {
			id := htmlutil.Attr(item, "data-id")
			if id == "" {
				return nil
			}
			return &Card{Id: id, Rank: rank}
		},
	}, ranks)
	if err != nil {
		return nil, err
	}

	s.tel.ReportCount(report_session_crawl_market, int64(cards.Len()))
	return cards, nil
}
