// File: internal/services/proxy/wiki.go
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type wikiSummary struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Wiki fetches a Wikipedia article summary. When the query is not an exact
// page title it falls back to opensearch and summarizes the top hit.
func (s *Service) Wiki(ctx context.Context, query string) (interface{}, error) {
	if query == "" {
		query = "Wikipedia"
	}

	if summary, ok := s.wikiSummary(ctx, query); ok {
		return summaryResponse(summary), nil
	}

	title, err := s.wikiSearch(ctx, query)
	if err != nil || title == "" {
		return nil, failed(http.StatusNotFound, "No Wikipedia article found")
	}
	summary, ok := s.wikiSummary(ctx, title)
	if !ok {
		return nil, failed(http.StatusNotFound, "No Wikipedia article found")
	}
	return summaryResponse(summary), nil
}

func (s *Service) wikiSummary(ctx context.Context, title string) (*wikiSummary, bool) {
	endpoint := fmt.Sprintf("%s/%s", s.config.WikiSummaryURL, url.PathEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false
	}
	var summary wikiSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, false
	}
	return &summary, true
}

func (s *Service) wikiSearch(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s?action=opensearch&search=%s&limit=1&format=json",
		s.config.WikiSearchURL, url.QueryEscape(query))
	// Opensearch replies with a positional JSON array: [query, titles,
	// descriptions, urls].
	var data []json.RawMessage
	if err := s.fetchJSON(ctx, endpoint, nil, &data); err != nil {
		return "", err
	}
	if len(data) < 2 {
		return "", nil
	}
	var titles []string
	if err := json.Unmarshal(data[1], &titles); err != nil || len(titles) == 0 {
		return "", err
	}
	return titles[0], nil
}

func summaryResponse(summary *wikiSummary) map[string]string {
	extract := summary.Extract
	if extract == "" {
		extract = "No summary available"
	}
	return map[string]string{
		"title":   summary.Title,
		"extract": truncate(extract, 300),
		"url":     summary.ContentURLs.Desktop.Page,
	}
}
