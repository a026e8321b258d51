// File: internal/services/proxy/config.go
package proxy

import (
	"fmt"
	"time"
)

// Config holds the upstream endpoints the tool proxy fans out to. Each URL is
// overridable so tests can point endpoints at local servers.
type Config struct {
	WeatherBaseURL   string
	NewsBaseURL      string
	CryptoBaseURL    string
	FactURL          string
	QuoteURL         string
	CatFactURL       string
	JokeURL          string
	TriviaURL        string
	DefineBaseURL    string
	MovieBaseURL     string
	AdviceURL        string
	WikiSummaryURL   string
	WikiSearchURL    string
	TranslateBaseURL string
	DogURL           string
	GeoIPURL         string

	RequestTimeout time.Duration
}

// Validate checks config sanity.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// DefaultConfig returns the production upstream set.
func DefaultConfig() *Config {
	return &Config{
		WeatherBaseURL:   "https://wttr.in",
		NewsBaseURL:      "https://news.google.com/rss/search",
		CryptoBaseURL:    "https://api.coingecko.com/api/v3/simple/price",
		FactURL:          "https://uselessfacts.jsph.pl/random.json?language=en",
		QuoteURL:         "https://zenquotes.io/api/random",
		CatFactURL:       "https://catfact.ninja/fact",
		JokeURL:          "https://icanhazdadjoke.com/",
		TriviaURL:        "https://opentdb.com/api.php?amount=1&type=multiple",
		DefineBaseURL:    "https://api.urbandictionary.com/v0/define",
		MovieBaseURL:     "https://www.omdbapi.com/",
		AdviceURL:        "https://api.adviceslip.com/advice",
		WikiSummaryURL:   "https://en.wikipedia.org/api/rest_v1/page/summary",
		WikiSearchURL:    "https://en.wikipedia.org/w/api.php",
		TranslateBaseURL: "https://api.mymemory.translated.net/get",
		DogURL:           "https://dog.ceo/api/breeds/image/random",
		GeoIPURL:         "http://ip-api.com/json",
		RequestTimeout:   10 * time.Second,
	}
}
