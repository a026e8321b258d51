// File: internal/services/proxy/service.go

// Package proxy implements the tool endpoint fan-out: each tool the persona
// can call maps to one method here, either wrapping a public upstream API or
// serving a small local dataset. Methods return plain maps or structs ready
// for JSON encoding; failures come back as *StatusError so the HTTP layer can
// answer with an {"error": ...} body and the matching status.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"personachat/internal/services"
)

// Service fans tool requests out to upstream APIs and local data.
type Service struct {
	config *Config
	client *http.Client
	logger services.Logger

	now  func() time.Time
	pick func(n int) int
}

// NewService wires the tool proxy.
func NewService(config *Config, logger services.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid proxy config: %w", err)
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Service{
		config: config,
		client: &http.Client{Timeout: config.RequestTimeout},
		logger: logger,
		now:    time.Now,
		pick:   rand.Intn,
	}, nil
}

// fetchJSON GETs a URL and decodes the JSON body into out. Non-JSON bodies
// and transport failures both surface as errors; the caller translates them
// into the endpoint's fixed failure message.
func (s *Service) fetchJSON(ctx context.Context, rawURL string, header http.Header, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

// Weather reports current conditions for a city via wttr.in.
func (s *Service) Weather(ctx context.Context, city string) (interface{}, error) {
	if city == "" {
		city = "New York"
	}
	var data struct {
		CurrentCondition []struct {
			TempF       string `json:"temp_F"`
			Humidity    string `json:"humidity"`
			WeatherDesc []struct {
				Value string `json:"value"`
			} `json:"weatherDesc"`
		} `json:"current_condition"`
		NearestArea []struct {
			AreaName []struct {
				Value string `json:"value"`
			} `json:"areaName"`
		} `json:"nearest_area"`
	}
	endpoint := fmt.Sprintf("%s/%s?format=j1", s.config.WeatherBaseURL, url.PathEscape(city))
	if err := s.fetchJSON(ctx, endpoint, nil, &data); err != nil || len(data.CurrentCondition) == 0 {
		s.logger.Warn("weather fetch failed", "city", city, "error", err)
		return nil, failed(http.StatusInternalServerError, "Failed to fetch weather")
	}
	current := data.CurrentCondition[0]
	condition := ""
	if len(current.WeatherDesc) > 0 {
		condition = current.WeatherDesc[0].Value
	}
	resolved := city
	if len(data.NearestArea) > 0 && len(data.NearestArea[0].AreaName) > 0 {
		resolved = data.NearestArea[0].AreaName[0].Value
	}
	return map[string]string{
		"temp":      current.TempF + "°F",
		"condition": condition,
		"humidity":  current.Humidity + "%",
		"city":      resolved,
	}, nil
}

// Crypto reports USD price and 24h change for a coin via CoinGecko.
func (s *Service) Crypto(ctx context.Context, symbol string) (interface{}, error) {
	if symbol == "" {
		symbol = "bitcoin"
	}
	var data map[string]struct {
		USD       float64 `json:"usd"`
		USDChange float64 `json:"usd_24h_change"`
	}
	endpoint := fmt.Sprintf("%s?ids=%s&vs_currencies=usd&include_24hr_change=true",
		s.config.CryptoBaseURL, url.QueryEscape(symbol))
	if err := s.fetchJSON(ctx, endpoint, nil, &data); err != nil {
		s.logger.Warn("crypto fetch failed", "symbol", symbol, "error", err)
		return nil, failed(http.StatusInternalServerError, "Failed to fetch crypto price")
	}
	coin, ok := data[symbol]
	if !ok {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch crypto price")
	}
	return map[string]string{
		"price":  "$" + formatPrice(coin.USD),
		"change": fmt.Sprintf("%.2f%%", coin.USDChange),
	}, nil
}

// Fact returns one random fact.
func (s *Service) Fact(ctx context.Context) (interface{}, error) {
	var data struct {
		Text string `json:"text"`
	}
	if err := s.fetchJSON(ctx, s.config.FactURL, nil, &data); err != nil {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch fact")
	}
	return map[string]string{"fact": data.Text}, nil
}

// Quote returns one random quote with its author.
func (s *Service) Quote(ctx context.Context) (interface{}, error) {
	var data []struct {
		Q string `json:"q"`
		A string `json:"a"`
	}
	if err := s.fetchJSON(ctx, s.config.QuoteURL, nil, &data); err != nil || len(data) == 0 {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch quote")
	}
	return map[string]string{"quote": data[0].Q, "author": data[0].A}, nil
}

// CatFact returns one random cat fact.
func (s *Service) CatFact(ctx context.Context) (interface{}, error) {
	var data struct {
		Fact string `json:"fact"`
	}
	if err := s.fetchJSON(ctx, s.config.CatFactURL, nil, &data); err != nil {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch cat fact")
	}
	return map[string]string{"fact": data.Fact}, nil
}

// Joke returns one dad joke.
func (s *Service) Joke(ctx context.Context) (interface{}, error) {
	var data struct {
		Joke string `json:"joke"`
	}
	header := http.Header{"Accept": []string{"application/json"}}
	if err := s.fetchJSON(ctx, s.config.JokeURL, header, &data); err != nil {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch joke")
	}
	return map[string]string{"joke": data.Joke}, nil
}

// Trivia returns one multiple-choice question with the answers shuffled.
func (s *Service) Trivia(ctx context.Context) (interface{}, error) {
	var data struct {
		Results []struct {
			Question         string   `json:"question"`
			Category         string   `json:"category"`
			Difficulty       string   `json:"difficulty"`
			CorrectAnswer    string   `json:"correct_answer"`
			IncorrectAnswers []string `json:"incorrect_answers"`
		} `json:"results"`
	}
	if err := s.fetchJSON(ctx, s.config.TriviaURL, nil, &data); err != nil || len(data.Results) == 0 {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch trivia")
	}
	q := data.Results[0]
	all := append(append([]string{}, q.IncorrectAnswers...), q.CorrectAnswer)
	for i := len(all) - 1; i > 0; i-- {
		j := s.pick(i + 1)
		all[i], all[j] = all[j], all[i]
	}
	return map[string]interface{}{
		"question":       q.Question,
		"category":       q.Category,
		"difficulty":     q.Difficulty,
		"correct_answer": q.CorrectAnswer,
		"all_answers":    all,
	}, nil
}

// Advice returns one slip of random advice.
func (s *Service) Advice(ctx context.Context) (interface{}, error) {
	var data struct {
		Slip struct {
			Advice string `json:"advice"`
		} `json:"slip"`
	}
	if err := s.fetchJSON(ctx, s.config.AdviceURL, nil, &data); err != nil {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch advice")
	}
	return map[string]string{"advice": data.Slip.Advice}, nil
}

// Movie looks a title up on OMDb.
func (s *Service) Movie(ctx context.Context, title string) (interface{}, error) {
	if title == "" {
		title = "Inception"
	}
	var data struct {
		Response   string `json:"Response"`
		Title      string `json:"Title"`
		Year       string `json:"Year"`
		IMDBRating string `json:"imdbRating"`
		Plot       string `json:"Plot"`
		Genre      string `json:"Genre"`
	}
	endpoint := fmt.Sprintf("%s?t=%s&apikey=trilogy", s.config.MovieBaseURL, url.QueryEscape(title))
	if err := s.fetchJSON(ctx, endpoint, nil, &data); err != nil {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch movie info")
	}
	if data.Response != "True" {
		return nil, failed(http.StatusNotFound, "Movie not found")
	}
	return map[string]string{
		"title":  data.Title,
		"year":   data.Year,
		"rating": data.IMDBRating,
		"plot":   data.Plot,
		"genre":  data.Genre,
	}, nil
}

// Dog returns one random dog picture URL.
func (s *Service) Dog(ctx context.Context) (interface{}, error) {
	var data struct {
		Message string `json:"message"`
	}
	if err := s.fetchJSON(ctx, s.config.DogURL, nil, &data); err != nil {
		return nil, failed(http.StatusInternalServerError, "Failed to fetch dog")
	}
	return map[string]string{
		"imageUrl": data.Message,
		"status":   "here's a good boy for you",
	}, nil
}

// Location resolves the caller's IP to a rough location. Lookup failures fall
// back to New York so weather and time tools still have a usable default.
func (s *Service) Location(ctx context.Context, clientIP string) (interface{}, error) {
	fallback := map[string]string{
		"ip":        clientIP,
		"city":      "New York",
		"country":   "US",
		"timezone":  "America/New_York",
		"latitude":  "40.7128",
		"longitude": "-74.0060",
	}

	var data struct {
		Status   string  `json:"status"`
		City     string  `json:"city"`
		Country  string  `json:"countryCode"`
		Timezone string  `json:"timezone"`
		Lat      float64 `json:"lat"`
		Lon      float64 `json:"lon"`
	}
	endpoint := s.config.GeoIPURL
	if clientIP != "" && clientIP != "unknown" {
		endpoint = fmt.Sprintf("%s/%s", s.config.GeoIPURL, url.PathEscape(clientIP))
	}
	if err := s.fetchJSON(ctx, endpoint, nil, &data); err != nil || data.Status != "success" || data.City == "" {
		s.logger.Warn("geoip lookup failed", "ip", clientIP, "error", err)
		return fallback, nil
	}
	return map[string]string{
		"ip":        clientIP,
		"city":      data.City,
		"country":   data.Country,
		"timezone":  data.Timezone,
		"latitude":  fmt.Sprintf("%.4f", data.Lat),
		"longitude": fmt.Sprintf("%.4f", data.Lon),
	}, nil
}

// Translate renders English text into a target language via MyMemory. Named
// languages (spanish, french, ...) map to ISO codes; anything else passes
// through as a code.
func (s *Service) Translate(ctx context.Context, text, target string) (interface{}, error) {
	if text == "" {
		text = "hello"
	}
	if target == "" {
		target = "es"
	}
	code := languageCode(target)

	var data struct {
		ResponseStatus int `json:"responseStatus"`
		ResponseData   struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
	}
	endpoint := fmt.Sprintf("%s?q=%s&langpair=en|%s",
		s.config.TranslateBaseURL, url.QueryEscape(text), url.QueryEscape(code))
	if err := s.fetchJSON(ctx, endpoint, nil, &data); err != nil {
		return nil, failed(http.StatusInternalServerError, "Failed to translate")
	}
	if data.ResponseStatus != 200 || data.ResponseData.TranslatedText == "" {
		return nil, failed(http.StatusInternalServerError, "Translation failed")
	}
	return map[string]string{
		"original":   text,
		"translated": data.ResponseData.TranslatedText,
		"language":   target,
	}, nil
}
