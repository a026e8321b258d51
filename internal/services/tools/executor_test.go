// File: internal/services/tools/executor_test.go
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personachat/internal/services"
)

// newTestProxy records requests and replies with canned JSON per path.
func newTestProxy(t *testing.T, responses map[string]string) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var seen []*http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		copied := r.Clone(r.Context())
		seen = append(seen, copied)
		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"not found"}`)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server, &seen
}

func newTestExecutor(serverURL string) *Executor {
	return NewExecutor(NewProxyClient(serverURL), NewThemeState(), &services.NoOpLogger{})
}

func TestExecuteWeatherUsesExplicitCity(t *testing.T) {
	server, seen := newTestProxy(t, map[string]string{
		"/weather": `{"temp":"70°F","condition":"Sunny","humidity":"40%","city":"Tokyo"}`,
	})
	e := newTestExecutor(server.URL)

	result := e.Execute(context.Background(), "weather", map[string]string{"city": "Tokyo"}, Env{})

	assert.Equal(t, "weather", result.Tool)
	require.Len(t, *seen, 1)
	assert.Equal(t, "Tokyo", (*seen)[0].URL.Query().Get("city"))

	payload, ok := result.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Sunny", payload["condition"])
}

func TestExecuteWeatherFallsBackToSessionCity(t *testing.T) {
	server, seen := newTestProxy(t, map[string]string{"/weather": `{}`})
	e := newTestExecutor(server.URL)

	e.Execute(context.Background(), "weather", map[string]string{}, Env{City: "Berlin"})

	require.Len(t, *seen, 1)
	assert.Equal(t, "Berlin", (*seen)[0].URL.Query().Get("city"))
}

func TestExecuteWeatherDefaultCity(t *testing.T) {
	server, seen := newTestProxy(t, map[string]string{"/weather": `{}`})
	e := newTestExecutor(server.URL)

	e.Execute(context.Background(), "weather", nil, Env{})

	require.Len(t, *seen, 1)
	assert.Equal(t, "New York", (*seen)[0].URL.Query().Get("city"))
}

func TestExecuteTimeUsesSessionTimezone(t *testing.T) {
	server, seen := newTestProxy(t, map[string]string{"/time": `{"time":"1:00:00 PM"}`})
	e := newTestExecutor(server.URL)

	e.Execute(context.Background(), "time", map[string]string{"tz": "ignored"}, Env{Timezone: "Europe/Berlin"})

	require.Len(t, *seen, 1)
	assert.Equal(t, "Europe/Berlin", (*seen)[0].URL.Query().Get("tz"))
}

func TestExecuteParamDefaults(t *testing.T) {
	tests := []struct {
		tool  string
		path  string
		key   string
		value string
	}{
		{"news", "/news", "q", "technology"},
		{"crypto", "/crypto", "symbol", "bitcoin"},
		{"define", "/define", "term", "bruh"},
		{"movie", "/movie", "title", "Inception"},
		{"horoscope", "/horoscope", "sign", "aries"},
		{"8ball", "/8ball", "question", "Will it happen?"},
		{"wiki", "/wiki", "query", "Wikipedia"},
		{"calc", "/calc", "expression", "1+1"},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			server, seen := newTestProxy(t, map[string]string{tt.path: `{}`})
			e := newTestExecutor(server.URL)

			result := e.Execute(context.Background(), tt.tool, nil, Env{})

			assert.Equal(t, tt.tool, result.Tool)
			require.Len(t, *seen, 1)
			assert.Equal(t, tt.value, (*seen)[0].URL.Query().Get(tt.key))
		})
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	server, _ := newTestProxy(t, nil)
	e := newTestExecutor(server.URL)

	result := e.Execute(context.Background(), "hacktheplanet", nil, Env{})

	assert.Equal(t, map[string]interface{}{"error": "Unknown tool"}, result.Result)
}

func TestExecuteToolNameCaseInsensitive(t *testing.T) {
	server, _ := newTestProxy(t, map[string]string{"/joke": `{"joke":"ha"}`})
	e := newTestExecutor(server.URL)

	result := e.Execute(context.Background(), "JOKE", nil, Env{})

	payload, ok := result.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ha", payload["joke"])
}

func TestExecuteTransportFailure(t *testing.T) {
	server, _ := newTestProxy(t, nil)
	serverURL := server.URL
	server.Close()
	e := newTestExecutor(serverURL)

	result := e.Execute(context.Background(), "fact", nil, Env{})

	assert.Equal(t, map[string]interface{}{"error": "Tool call failed"}, result.Result)
}

func TestExecuteErrorBodyPassesThrough(t *testing.T) {
	// A proxy-reported failure is a tool result, not a Go error.
	server, _ := newTestProxy(t, map[string]string{})
	e := newTestExecutor(server.URL)

	result := e.Execute(context.Background(), "fact", nil, Env{})

	assert.Equal(t, map[string]interface{}{"error": "not found"}, result.Result)
}

func TestExecuteTheme(t *testing.T) {
	e := newTestExecutor("http://unused")

	result := e.Execute(context.Background(), "theme", map[string]string{"name": "midnight"}, Env{})

	payload, ok := result.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "midnight", payload["theme"])

	current, custom := e.themes.Current()
	assert.Equal(t, "midnight", current)
	assert.Nil(t, custom)
}

func TestExecuteThemeUnknownName(t *testing.T) {
	e := newTestExecutor("http://unused")

	result := e.Execute(context.Background(), "theme", map[string]string{"name": "vaporwave"}, Env{})

	payload, ok := result.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, payload["error"], "Unknown theme")
}

func TestExecuteCustomTheme(t *testing.T) {
	e := newTestExecutor("http://unused")

	result := e.Execute(context.Background(), "customtheme",
		map[string]string{"style": "neon", "color": "violet", "bg": "amoled", "bubble": "pill"}, Env{})

	payload, ok := result.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "neon", payload["style"])
	assert.Equal(t, "violet", payload["color"])

	_, custom := e.themes.Current()
	require.NotNil(t, custom)
	assert.True(t, custom.Glow)
	assert.Equal(t, "#8B5CF6", custom.CustomColor)
	assert.Equal(t, "amoled", custom.Background)
	assert.Equal(t, "pill", custom.BubbleStyle)
}

func TestExecuteCodeAcknowledges(t *testing.T) {
	e := newTestExecutor("http://unused")

	result := e.Execute(context.Background(), "code", map[string]string{"lang": "python"}, Env{})

	payload, ok := result.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "python", payload["lang"])
}

func TestExecuteResultRoundTripsToJSON(t *testing.T) {
	server, _ := newTestProxy(t, map[string]string{"/quote": `{"quote":"q","author":"a"}`})
	e := newTestExecutor(server.URL)

	result := e.Execute(context.Background(), "quote", nil, Env{})

	encoded, err := json.Marshal(result.Result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"quote":"q","author":"a"}`, string(encoded))
}
