// File: internal/handlers/proxy_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"personachat/internal/ratelimit"
	"personachat/internal/services/proxy"
)

// ProxyHandler exposes the tool endpoints the conversation loop calls.
type ProxyHandler struct {
	service *proxy.Service
}

// NewProxyHandler creates a new ProxyHandler.
func NewProxyHandler(service *proxy.Service) *ProxyHandler {
	return &ProxyHandler{service: service}
}

// RegisterRoutes mounts every tool endpoint on the router.
func (h *ProxyHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/weather", h.query1("city", h.service.Weather)).Methods("GET")
	r.HandleFunc("/news", h.query1("q", h.service.News)).Methods("GET")
	r.HandleFunc("/crypto", h.query1("symbol", h.service.Crypto)).Methods("GET")
	r.HandleFunc("/fact", h.plain(h.service.Fact)).Methods("GET")
	r.HandleFunc("/quote", h.plain(h.service.Quote)).Methods("GET")
	r.HandleFunc("/time", h.query1("tz", h.service.Time)).Methods("GET")
	r.HandleFunc("/catfact", h.plain(h.service.CatFact)).Methods("GET")
	r.HandleFunc("/location", h.location).Methods("GET")
	r.HandleFunc("/joke", h.plain(h.service.Joke)).Methods("GET")
	r.HandleFunc("/trivia", h.plain(h.service.Trivia)).Methods("GET")
	r.HandleFunc("/define", h.query1("term", h.service.Define)).Methods("GET")
	r.HandleFunc("/movie", h.query1("title", h.service.Movie)).Methods("GET")
	r.HandleFunc("/advice", h.plain(h.service.Advice)).Methods("GET")
	r.HandleFunc("/riddle", h.plain(h.service.Riddle)).Methods("GET")
	r.HandleFunc("/horoscope", h.query1("sign", h.service.Horoscope)).Methods("GET")
	r.HandleFunc("/color", h.plain(h.service.Color)).Methods("GET")
	r.HandleFunc("/8ball", h.query1("question", h.service.EightBall)).Methods("GET")
	r.HandleFunc("/wiki", h.query1("query", h.service.Wiki)).Methods("GET")
	r.HandleFunc("/calc", h.query1("expression", h.service.Calc)).Methods("GET")
	r.HandleFunc("/translate", h.translate).Methods("GET")
	r.HandleFunc("/wordofday", h.plain(h.service.WordOfDay)).Methods("GET")
	r.HandleFunc("/dog", h.plain(h.service.Dog)).Methods("GET")
}

func (h *ProxyHandler) plain(fn func(context.Context) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := fn(r.Context())
		h.respond(w, payload, err)
	}
}

func (h *ProxyHandler) query1(param string, fn func(context.Context, string) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := fn(r.Context(), r.URL.Query().Get(param))
		h.respond(w, payload, err)
	}
}

func (h *ProxyHandler) translate(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.Translate(r.Context(), r.URL.Query().Get("text"), r.URL.Query().Get("to"))
	h.respond(w, payload, err)
}

func (h *ProxyHandler) location(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.Location(r.Context(), ratelimit.GetClientIP(r))
	h.respond(w, payload, err)
}

func (h *ProxyHandler) respond(w http.ResponseWriter, payload interface{}, err error) {
	if err != nil {
		var statusErr *proxy.StatusError
		if errors.As(err, &statusErr) {
			writeError(w, statusErr.Status, statusErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "Request failed")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
