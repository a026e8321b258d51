// File: internal/services/tools/executor.go

// Package tools executes the named operations the model can request. Network
// tools forward to the tool proxy; theme and code tools mutate or acknowledge
// local state. Execution never panics or errors past the package boundary.
package tools

import (
	"context"
	"fmt"
	"strings"

	"personachat/internal/services"
)

// Env carries per-session defaults a handler may fall back to when the model
// omitted a parameter: the last known geolocation city and timezone.
type Env struct {
	City     string
	Timezone string
}

// Result pairs a tool name with whatever the tool produced. It is consumed by
// the next completion call and never persisted.
type Result struct {
	Tool   string
	Result interface{}
}

// Handler runs one tool. Returned errors never reach the caller of Execute;
// they collapse to the generic failure payload.
type Handler func(ctx context.Context, params map[string]string, env Env) (interface{}, error)

// Executor dispatches tool calls through a name -> handler registry.
type Executor struct {
	registry map[string]Handler
	proxy    *ProxyClient
	themes   *ThemeState
	logger   services.Logger
}

// NewExecutor builds an executor over the given proxy and theme state.
func NewExecutor(proxy *ProxyClient, themes *ThemeState, logger services.Logger) *Executor {
	e := &Executor{
		registry: map[string]Handler{},
		proxy:    proxy,
		themes:   themes,
		logger:   logger,
	}
	e.registerDefaults()
	return e
}

// Register adds or replaces a handler. Names are matched case-insensitively.
func (e *Executor) Register(name string, h Handler) {
	e.registry[strings.ToLower(name)] = h
}

// Execute runs one parsed tool call. Unknown names yield an explicit error
// payload and any handler failure is converted to a fixed one; neither is a
// Go error.
func (e *Executor) Execute(ctx context.Context, name string, params map[string]string, env Env) Result {
	handler, ok := e.registry[strings.ToLower(name)]
	if !ok {
		e.logger.Warn("unknown tool requested", "tool", name)
		return Result{Tool: name, Result: map[string]interface{}{"error": "Unknown tool"}}
	}

	value, err := func() (v interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("tool %s panicked: %v", name, r)
			}
		}()
		return handler(ctx, params, env)
	}()
	if err != nil {
		e.logger.Error("tool call failed", "tool", name, "error", err)
		return Result{Tool: name, Result: map[string]interface{}{"error": "Tool call failed"}}
	}
	return Result{Tool: name, Result: value}
}

// proxyTool builds a handler that forwards to a proxy path, mapping directive
// parameters to query parameters with per-key literal defaults.
func (e *Executor) proxyTool(path string, mapping ...paramSpec) Handler {
	return func(ctx context.Context, params map[string]string, _ Env) (interface{}, error) {
		query := map[string]string{}
		for _, spec := range mapping {
			v := params[spec.from]
			if v == "" {
				v = spec.fallback
			}
			query[spec.to] = v
		}
		return e.proxy.Call(ctx, path, query)
	}
}

type paramSpec struct {
	from     string // directive parameter key
	to       string // proxy query parameter key
	fallback string
}

func param(from, to, fallback string) paramSpec {
	return paramSpec{from: from, to: to, fallback: fallback}
}

func (e *Executor) registerDefaults() {
	// Weather prefers an explicit city, then the session's geolocation city,
	// then a fixed fallback.
	e.Register("weather", func(ctx context.Context, params map[string]string, env Env) (interface{}, error) {
		city := params["city"]
		if city == "" {
			city = env.City
		}
		if city == "" {
			city = "New York"
		}
		return e.proxy.Call(ctx, "/weather", map[string]string{"city": city})
	})

	// Time always reports in the session's timezone when one is known.
	e.Register("time", func(ctx context.Context, params map[string]string, env Env) (interface{}, error) {
		tz := env.Timezone
		if tz == "" {
			tz = "America/New_York"
		}
		return e.proxy.Call(ctx, "/time", map[string]string{"tz": tz})
	})

	e.Register("news", e.proxyTool("/news", param("topic", "q", "technology")))
	e.Register("crypto", e.proxyTool("/crypto", param("symbol", "symbol", "bitcoin")))
	e.Register("define", e.proxyTool("/define", param("term", "term", "bruh")))
	e.Register("movie", e.proxyTool("/movie", param("title", "title", "Inception")))
	e.Register("horoscope", e.proxyTool("/horoscope", param("sign", "sign", "aries")))
	e.Register("8ball", e.proxyTool("/8ball", param("question", "question", "Will it happen?")))
	e.Register("wiki", e.proxyTool("/wiki", param("query", "query", "Wikipedia")))
	e.Register("calc", e.proxyTool("/calc", param("expression", "expression", "1+1")))
	e.Register("translate", e.proxyTool("/translate",
		param("text", "text", "hello"), param("to", "to", "spanish")))

	for _, name := range []string{
		"fact", "quote", "joke", "catfact", "location",
		"trivia", "advice", "riddle", "color", "wordofday", "dog",
	} {
		e.Register(name, e.proxyTool("/"+name))
	}

	e.Register("theme", func(_ context.Context, params map[string]string, _ Env) (interface{}, error) {
		name := strings.ToLower(params["name"])
		if name == "" {
			name = "light"
		}
		if !e.themes.Apply(name) {
			return map[string]interface{}{
				"error": "Unknown theme. Available: " + strings.Join(Themes, ", "),
			}, nil
		}
		return map[string]interface{}{
			"success": true,
			"theme":   name,
			"message": "Theme changed to " + name,
		}, nil
	})

	e.Register("customtheme", func(_ context.Context, params map[string]string, _ Env) (interface{}, error) {
		cfg := e.themes.ApplyCustom(params["style"], params["color"], params["bg"], params["bubble"])
		return map[string]interface{}{
			"success":    true,
			"style":      cfg.Style,
			"color":      cfg.Color,
			"background": cfg.Background,
			"bubble":     cfg.BubbleStyle,
			"message":    fmt.Sprintf("Custom %s theme created with %s accent", cfg.Style, cfg.Color),
		}, nil
	})

	// The code tool only acknowledges; sandboxed execution belongs to the
	// rendering layer.
	e.Register("code", func(_ context.Context, params map[string]string, _ Env) (interface{}, error) {
		lang := params["lang"]
		if lang == "" {
			lang = "javascript"
		}
		return map[string]interface{}{
			"success": true,
			"message": "Code sandbox ready",
			"lang":    lang,
		}, nil
	})
}
