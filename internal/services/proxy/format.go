// File: internal/services/proxy/format.go
package proxy

import (
	"strconv"
	"strings"
)

var languageCodes = map[string]string{
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"russian":    "ru",
	"japanese":   "ja",
	"chinese":    "zh",
	"korean":     "ko",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
}

// languageCode maps a spelled-out language name to its ISO code; unrecognized
// input is assumed to already be a code.
func languageCode(name string) string {
	if code, ok := languageCodes[strings.ToLower(name)]; ok {
		return code
	}
	return name
}

// formatPrice renders a USD amount with thousands separators, keeping
// fractional cents only when present.
func formatPrice(value float64) string {
	text := strconv.FormatFloat(value, 'f', -1, 64)
	whole, frac, hasFrac := strings.Cut(text, ".")

	negative := strings.HasPrefix(whole, "-")
	if negative {
		whole = whole[1:]
	}

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	result := grouped.String()
	if negative {
		result = "-" + result
	}
	if hasFrac {
		result += "." + frac
	}
	return result
}
