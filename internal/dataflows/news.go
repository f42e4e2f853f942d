package dataflows

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// NewsClient fetches recent headlines from the Google News RSS feed.
type NewsClient struct {
	client *resty.Client
}

// NewNewsClient creates a news client with sane timeouts.
func NewNewsClient() *NewsClient {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; tradecouncil/1.0)")

	return &NewsClient{client: client}
}

// Search returns up to maxResults headlines matching the query.
func (n *NewsClient) Search(query string, maxResults int) ([]NewsItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	feedURL := fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=en-US&gl=US",
		url.QueryEscape(query))

	resp, err := n.client.R().Get(feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch news feed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("news feed returned HTTP %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("parse news feed: %w", err)
	}

	var items []NewsItem
	doc.Find("item").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		item := NewsItem{
			Title:  strings.TrimSpace(s.Find("title").First().Text()),
			Source: strings.TrimSpace(s.Find("source").First().Text()),
		}
		if ts, err := time.Parse(time.RFC1123, strings.TrimSpace(s.Find("pubdate").First().Text())); err == nil {
			item.Published = ts
		}
		if item.Title != "" {
			items = append(items, item)
		}
		return len(items) < maxResults
	})

	return items, nil
}

// FormatDigest renders headlines as the text block handed to the news
// analyst.
func FormatDigest(items []NewsItem) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item.Title)
		if item.Source != "" {
			b.WriteString(" (")
			b.WriteString(item.Source)
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
