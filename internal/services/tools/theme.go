// File: internal/services/tools/theme.go
package tools

import (
	"strings"
	"sync"
)

// Themes the theme tool accepts by name.
var Themes = []string{"light", "dark", "glass", "gradient", "midnight", "sunset"}

var colorPalette = map[string]string{
	"blue":   "#007AFF",
	"purple": "#AF52DE",
	"pink":   "#FF2D92",
	"red":    "#FF3B30",
	"orange": "#FF9500",
	"yellow": "#FFCC00",
	"green":  "#34C759",
	"teal":   "#5AC8FA",
	"cyan":   "#00CED1",
	"mint":   "#00C7BE",
	"indigo": "#5856D6",
	"violet": "#8B5CF6",
	"rose":   "#EC4899",
	"coral":  "#FF7F50",
}

// CustomTheme is the configuration the customtheme tool builds.
type CustomTheme struct {
	Style             string `json:"style"`
	Color             string `json:"color"`
	CustomColor       string `json:"custom_color"`
	Background        string `json:"background"`
	BubbleStyle       string `json:"bubble_style"`
	GlassIntensity    int    `json:"glass_intensity"`
	BlurAmount        int    `json:"blur_amount"`
	GradientDirection int    `json:"gradient_direction"`
	Glow              bool   `json:"glow"`
}

// ThemeState holds the current presentation state. The theme tools mutate it
// synchronously instead of calling the proxy; rendering happens elsewhere.
type ThemeState struct {
	mu      sync.Mutex
	current string
	custom  *CustomTheme
}

// NewThemeState starts on the light theme.
func NewThemeState() *ThemeState {
	return &ThemeState{current: "light"}
}

// Apply switches to a named theme. It reports false for unknown names.
func (s *ThemeState) Apply(name string) bool {
	name = strings.ToLower(name)
	for _, t := range Themes {
		if t == name {
			s.mu.Lock()
			s.current = name
			s.custom = nil
			s.mu.Unlock()
			return true
		}
	}
	return false
}

// ApplyCustom normalizes and installs a custom theme, returning the
// configuration actually applied. Invalid options fall back to defaults
// rather than failing.
func (s *ThemeState) ApplyCustom(style, color, background, bubble string) CustomTheme {
	cfg := CustomTheme{
		Style:             strings.ToLower(defaultString(style, "solid")),
		Color:             strings.ToLower(defaultString(color, "blue")),
		Background:        strings.ToLower(defaultString(background, "dark")),
		BubbleStyle:       strings.ToLower(defaultString(bubble, "rounded")),
		GlassIntensity:    60,
		BlurAmount:        50,
		GradientDirection: 135,
	}

	if strings.HasPrefix(color, "#") {
		cfg.CustomColor = color
	} else if hex, ok := colorPalette[cfg.Color]; ok {
		cfg.CustomColor = hex
	} else {
		cfg.CustomColor = colorPalette["blue"]
	}

	if !oneOf(cfg.Style, "solid", "glass", "gradient", "neon") {
		cfg.Style = "solid"
	}
	if !oneOf(cfg.Background, "light", "dark", "amoled") {
		cfg.Background = "dark"
	}
	if !oneOf(cfg.BubbleStyle, "rounded", "pill", "square", "cloud") {
		cfg.BubbleStyle = "rounded"
	}
	cfg.Glow = cfg.Style == "neon"

	s.mu.Lock()
	s.custom = &cfg
	s.mu.Unlock()
	return cfg
}

// Current returns the active named theme and custom configuration, if any.
func (s *ThemeState) Current() (string, *CustomTheme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.custom
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
