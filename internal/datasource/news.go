package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/valuescreen/internal/infra"
	"github.com/seenimoa/valuescreen/pkg/models"
)

const yahooRSSBaseURL = "https://feeds.finance.yahoo.com"

// News fetches per-ticker headlines from the Yahoo Finance RSS feed.
type News struct {
	opts   options
	parser *gofeed.Parser
	cache  *infra.Cache[[]models.NewsArticle]
}

// NewNews creates a headline source.
func NewNews(opts ...Option) *News {
	o := buildOptions(yahooRSSBaseURL, opts)
	p := gofeed.NewParser()
	p.Client = o.client
	p.UserAgent = infra.DefaultUserAgent
	return &News{
		opts:   o,
		parser: p,
		cache:  infra.NewCache[[]models.NewsArticle](o.cacheTTL),
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "Yahoo Finance RSS" }

// GetHeadlines returns up to limit headlines for ticker, newest first.
// A non-positive limit returns everything in the feed.
func (n *News) GetHeadlines(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))

	cacheKey := fmt.Sprintf("news:%s:%d", symbol, limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached, nil
	}

	if err := n.opts.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{"s": {symbol}, "region": {"US"}, "lang": {"en-US"}}
	feedURL := n.opts.baseURL + "/rss/2.0/headline?" + q.Encode()

	n.opts.logger.Debug().Str("source", "yahoo-rss").Str("ticker", symbol).Msg("fetching headlines")

	feed, err := n.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, classify(n.Name(), symbol, &infra.ErrHTTP{
				URL:        feedURL,
				StatusCode: httpErr.StatusCode,
				Status:     httpErr.Status,
			})
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, &ErrNetwork{Source: n.Name(), Err: err}
		}
		return nil, &ErrMalformed{Source: n.Name(), Err: err}
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		a := models.NewsArticle{
			Title:   title,
			URL:     item.Link,
			Source:  n.Name(),
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = item.PublishedParsed.UTC()
		}
		articles = append(articles, a)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	n.cache.Set(cacheKey, articles)
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
