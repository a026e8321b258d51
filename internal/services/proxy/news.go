// File: internal/services/proxy/news.go
package proxy

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
)

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// Article is one news headline with its source link.
type Article struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Date  string `json:"date"`
}

// News returns up to five current headlines for a topic from the Google News
// RSS feed.
func (s *Service) News(ctx context.Context, topic string) (interface{}, error) {
	if topic == "" {
		topic = "technology"
	}

	endpoint := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en", s.config.NewsBaseURL, url.QueryEscape(topic))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch news")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("news fetch failed", "topic", topic, "error", err)
		return nil, failed(http.StatusInternalServerError, "Failed to fetch news")
	}
	defer resp.Body.Close()

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch news")
	}

	articles := make([]Article, 0, 5)
	headlines := make([]string, 0, 5)
	for _, item := range feed.Channel.Items {
		if len(articles) >= 5 {
			break
		}
		if item.Title == "" {
			continue
		}
		articles = append(articles, Article{Title: item.Title, Link: item.Link, Date: item.PubDate})
		headlines = append(headlines, item.Title)
	}

	return map[string]interface{}{
		"headlines": headlines,
		"articles":  articles,
	}, nil
}
