package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPMemory talks to a remote similarity-search service over its small
// JSON API. Embedding and ranking happen server-side.
type HTTPMemory struct {
	client *resty.Client
}

// NewHTTPMemory creates a client for the service at baseURL.
func NewHTTPMemory(baseURL string) *HTTPMemory {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(15 * time.Second)
	client.SetHeader("User-Agent", "tradecouncil/1.0")

	return &HTTPMemory{client: client}
}

type searchRequest struct {
	Query string `json:"query"`
	TopN  int    `json:"top_n"`
}

type searchResponse struct {
	Results []Record `json:"results"`
}

type storeRequest struct {
	Situation string `json:"situation"`
	Outcome   string `json:"outcome"`
}

// Search returns up to topN past situations ranked by similarity.
func (m *HTTPMemory) Search(ctx context.Context, query string, topN int) ([]Record, error) {
	var out searchResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(searchRequest{Query: query, TopN: topN}).
		SetResult(&out).
		Post("/search")
	if err != nil {
		return nil, fmt.Errorf("memory search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("memory search: service returned %s", resp.Status())
	}
	return out.Results, nil
}

// Store records a situation/outcome pair for future retrieval.
func (m *HTTPMemory) Store(ctx context.Context, situation, outcome string) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(storeRequest{Situation: situation, Outcome: outcome}).
		Post("/store")
	if err != nil {
		return fmt.Errorf("memory store: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("memory store: service returned %s", resp.Status())
	}
	return nil
}
