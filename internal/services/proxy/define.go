// File: internal/services/proxy/define.go
package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Define looks a slang term up on Urban Dictionary. The source marks cross
// references with square brackets; those are stripped, and the definition and
// example are capped so the persona gets a quotable snippet rather than an
// essay.
func (s *Service) Define(ctx context.Context, term string) (interface{}, error) {
	if term == "" {
		term = "bruh"
	}
	var data struct {
		List []struct {
			Word       string `json:"word"`
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"list"`
	}
	endpoint := fmt.Sprintf("%s?term=%s", s.config.DefineBaseURL, url.QueryEscape(term))
	if err := s.fetchJSON(ctx, endpoint, nil, &data); err != nil {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch definition")
	}
	if len(data.List) == 0 {
		return nil, failed(http.StatusNotFound, "No definition found")
	}
	def := data.List[0]
	return map[string]string{
		"word":       def.Word,
		"definition": truncate(stripBrackets(def.Definition), 200),
		"example":    truncate(stripBrackets(def.Example), 150),
	}, nil
}

func stripBrackets(text string) string {
	return strings.NewReplacer("[", "", "]", "").Replace(text)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
