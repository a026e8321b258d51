// File: internal/services/proxy/service_test.go
package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personachat/internal/services"
)

// newLocalService builds a service for endpoints that never touch the
// network.
func newLocalService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(DefaultConfig(), &services.NoOpLogger{})
	require.NoError(t, err)
	return s
}

// newUpstreamService points every upstream URL at one local test server.
func newUpstreamService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.WeatherBaseURL = server.URL + "/weather"
	cfg.NewsBaseURL = server.URL + "/news"
	cfg.CryptoBaseURL = server.URL + "/crypto"
	cfg.FactURL = server.URL + "/fact"
	cfg.QuoteURL = server.URL + "/quote"
	cfg.CatFactURL = server.URL + "/catfact"
	cfg.JokeURL = server.URL + "/joke"
	cfg.TriviaURL = server.URL + "/trivia"
	cfg.DefineBaseURL = server.URL + "/define"
	cfg.MovieBaseURL = server.URL + "/movie"
	cfg.AdviceURL = server.URL + "/advice"
	cfg.WikiSummaryURL = server.URL + "/wiki/summary"
	cfg.WikiSearchURL = server.URL + "/wiki/search"
	cfg.TranslateBaseURL = server.URL + "/translate"
	cfg.DogURL = server.URL + "/dog"
	cfg.GeoIPURL = server.URL + "/geoip"

	s, err := NewService(cfg, &services.NoOpLogger{})
	require.NoError(t, err)
	return s
}

func requireStatusError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, status, statusErr.Status)
	assert.Equal(t, message, statusErr.Message)
}

func TestWeather(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/weather/Tokyo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "j1", r.URL.Query().Get("format"))
		fmt.Fprint(w, `{
			"current_condition": [{"temp_F": "72", "humidity": "40", "weatherDesc": [{"value": "Sunny"}]}],
			"nearest_area": [{"areaName": [{"value": "Tokyo"}]}]
		}`)
	})
	s := newUpstreamService(t, mux)

	result, err := s.Weather(context.Background(), "Tokyo")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"temp":      "72°F",
		"condition": "Sunny",
		"humidity":  "40%",
		"city":      "Tokyo",
	}, result)
}

func TestWeatherUpstreamFailure(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := s.Weather(context.Background(), "Tokyo")
	requireStatusError(t, err, http.StatusInternalServerError, "Failed to fetch weather")
}

func TestCrypto(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		fmt.Fprint(w, `{"bitcoin": {"usd": 64250.5, "usd_24h_change": -1.2345}}`)
	}))

	result, err := s.Crypto(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"price":  "$64,250.5",
		"change": "-1.23%",
	}, result)
}

func TestCryptoUnknownCoin(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))

	_, err := s.Crypto(context.Background(), "notacoin")
	requireStatusError(t, err, http.StatusInternalServerError, "Failed to fetch crypto price")
}

func TestJokeSendsAcceptHeader(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprint(w, `{"joke": "I used to hate facial hair, but then it grew on me."}`)
	}))

	result, err := s.Joke(context.Background())
	require.NoError(t, err)
	assert.Contains(t, result.(map[string]string)["joke"], "grew on me")
}

func TestTriviaShufflesAnswers(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [{
			"question": "What color is the sky?",
			"category": "Science",
			"difficulty": "easy",
			"correct_answer": "Blue",
			"incorrect_answers": ["Red", "Green", "Plaid"]
		}]}`)
	}))
	// Identity picks keep the shuffle order stable for assertion.
	s.pick = func(n int) int { return n - 1 }

	result, err := s.Trivia(context.Background())
	require.NoError(t, err)
	payload := result.(map[string]interface{})
	assert.Equal(t, "Blue", payload["correct_answer"])
	assert.Equal(t, []string{"Red", "Green", "Plaid", "Blue"}, payload["all_answers"])
}

func TestMovie(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trilogy", r.URL.Query().Get("apikey"))
		if r.URL.Query().Get("t") == "Inception" {
			fmt.Fprint(w, `{"Response": "True", "Title": "Inception", "Year": "2010", "imdbRating": "8.8", "Plot": "Dreams within dreams.", "Genre": "Sci-Fi"}`)
			return
		}
		fmt.Fprint(w, `{"Response": "False", "Error": "Movie not found!"}`)
	}))

	result, err := s.Movie(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Inception", result.(map[string]string)["title"])
	assert.Equal(t, "8.8", result.(map[string]string)["rating"])

	_, err = s.Movie(context.Background(), "Not A Real Movie")
	requireStatusError(t, err, http.StatusNotFound, "Movie not found")
}

func TestDog(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message": "https://images.dog.ceo/breeds/shiba/1.jpg", "status": "success"}`)
	}))

	result, err := s.Dog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"imageUrl": "https://images.dog.ceo/breeds/shiba/1.jpg",
		"status":   "here's a good boy for you",
	}, result)
}

func TestDefine(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("term") == "bet" {
			long := strings.Repeat("x", 250)
			fmt.Fprintf(w, `{"list": [{"word": "bet", "definition": "an [agreement] meaning %s", "example": "[bet], see you there"}]}`, long)
			return
		}
		fmt.Fprint(w, `{"list": []}`)
	}))

	result, err := s.Define(context.Background(), "bet")
	require.NoError(t, err)
	payload := result.(map[string]string)
	assert.Equal(t, "bet", payload["word"])
	assert.NotContains(t, payload["definition"], "[")
	assert.Len(t, []rune(payload["definition"]), 200)
	assert.Equal(t, "bet, see you there", payload["example"])

	_, err = s.Define(context.Background(), "qzxvk")
	requireStatusError(t, err, http.StatusNotFound, "No definition found")
}

func TestWikiDirectSummary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/summary/Go", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title": "Go", "extract": "Go is a programming language.", "content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Go"}}}`)
	})
	s := newUpstreamService(t, mux)

	result, err := s.Wiki(context.Background(), "Go")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"title":   "Go",
		"extract": "Go is a programming language.",
		"url":     "https://en.wikipedia.org/wiki/Go",
	}, result)
}

func TestWikiSearchFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/summary/golang", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/wiki/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "opensearch", r.URL.Query().Get("action"))
		fmt.Fprint(w, `["golang", ["Golang"], [""], [""]]`)
	})
	mux.HandleFunc("/wiki/summary/Golang", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title": "Golang", "extract": "", "content_urls": {"desktop": {"page": ""}}}`)
	})
	s := newUpstreamService(t, mux)

	result, err := s.Wiki(context.Background(), "golang")
	require.NoError(t, err)
	assert.Equal(t, "No summary available", result.(map[string]string)["extract"])
}

func TestWikiNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "search") {
			fmt.Fprint(w, `["nope", [], [], []]`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	s := newUpstreamService(t, mux)

	_, err := s.Wiki(context.Background(), "nope")
	requireStatusError(t, err, http.StatusNotFound, "No Wikipedia article found")
}

func TestTranslate(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en|es", r.URL.Query().Get("langpair"))
		fmt.Fprint(w, `{"responseStatus": 200, "responseData": {"translatedText": "hola"}}`)
	}))

	result, err := s.Translate(context.Background(), "hello", "spanish")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"original":   "hello",
		"translated": "hola",
		"language":   "spanish",
	}, result)
}

func TestTranslateUpstreamRejection(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"responseStatus": 403, "responseData": {"translatedText": ""}}`)
	}))

	_, err := s.Translate(context.Background(), "hello", "es")
	requireStatusError(t, err, http.StatusInternalServerError, "Translation failed")
}

func TestLocation(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geoip/8.8.8.8", r.URL.Path)
		fmt.Fprint(w, `{"status": "success", "city": "Mountain View", "countryCode": "US", "timezone": "America/Los_Angeles", "lat": 37.386, "lon": -122.0838}`)
	}))

	result, err := s.Location(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	payload := result.(map[string]string)
	assert.Equal(t, "Mountain View", payload["city"])
	assert.Equal(t, "America/Los_Angeles", payload["timezone"])
	assert.Equal(t, "37.3860", payload["latitude"])
}

func TestLocationFallsBackToNewYork(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "fail", "message": "private range"}`)
	}))

	result, err := s.Location(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	payload := result.(map[string]string)
	assert.Equal(t, "New York", payload["city"])
	assert.Equal(t, "America/New_York", payload["timezone"])
	assert.Equal(t, "40.7128", payload["latitude"])
}

func TestNews(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "roblox", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?>
<rss version="2.0"><channel>
  <item><title>Headline one</title><link>https://example.com/1</link><pubDate>Mon, 31 Aug 2026 10:00:00 GMT</pubDate></item>
  <item><title>Headline two</title><link>https://example.com/2</link><pubDate>Mon, 31 Aug 2026 09:00:00 GMT</pubDate></item>
  <item><title></title><link>https://example.com/skip</link></item>
  <item><title>Headline three</title><link>https://example.com/3</link></item>
  <item><title>Headline four</title><link>https://example.com/4</link></item>
  <item><title>Headline five</title><link>https://example.com/5</link></item>
  <item><title>Headline six</title><link>https://example.com/6</link></item>
</channel></rss>`)
	}))

	result, err := s.News(context.Background(), "roblox")
	require.NoError(t, err)
	payload := result.(map[string]interface{})

	headlines := payload["headlines"].([]string)
	require.Len(t, headlines, 5)
	assert.Equal(t, "Headline one", headlines[0])
	assert.NotContains(t, headlines, "")

	articles := payload["articles"].([]Article)
	require.Len(t, articles, 5)
	assert.Equal(t, "https://example.com/1", articles[0].Link)
	assert.Equal(t, "Mon, 31 Aug 2026 10:00:00 GMT", articles[0].Date)
}

func TestQuote(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"q": "Simplicity is complicated.", "a": "Rob Pike"}]`)
	}))

	result, err := s.Quote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"quote":  "Simplicity is complicated.",
		"author": "Rob Pike",
	}, result)
}

func TestFactAndAdviceAndCatFact(t *testing.T) {
	s := newUpstreamService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/fact"):
			fmt.Fprint(w, `{"text": "Bananas are berries."}`)
		case strings.HasPrefix(r.URL.Path, "/advice"):
			fmt.Fprint(w, `{"slip": {"advice": "Sleep on it."}}`)
		case strings.HasPrefix(r.URL.Path, "/catfact"):
			fmt.Fprint(w, `{"fact": "Cats sleep a lot."}`)
		}
	}))

	fact, err := s.Fact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bananas are berries.", fact.(map[string]string)["fact"])

	advice, err := s.Advice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sleep on it.", advice.(map[string]string)["advice"])

	catFact, err := s.CatFact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cats sleep a lot.", catFact.(map[string]string)["fact"])
}
