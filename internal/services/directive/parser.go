// File: internal/services/directive/parser.go

// Package directive parses the inline pseudo-protocol embedded in assistant
// text: tool calls ([TOOL:name k=v ...]), internal commands
// ([INTERNAL:name k=v ...]) and a single leading reaction marker
// ([react:token]).
//
// Parameter values cannot contain whitespace. The grammar is dictated by
// prompting the model and is a documented limitation, not something to extend
// with a quoting convention the model was never taught.
package directive

import (
	"regexp"
	"strings"
)

var (
	toolPattern     = regexp.MustCompile(`\[TOOL:(\w+)(?:\s+([^\]]*))?\]`)
	internalPattern = regexp.MustCompile(`\[INTERNAL:(\w+)(?:\s+([^\]]*))?\]`)
	reactionPattern = regexp.MustCompile(`^\[react:([^\]]+)\]\s*`)
	paramPattern    = regexp.MustCompile(`(\w+)=(\S+)`)

	// Stripping is broader than extraction: any bracketed tag with the right
	// prefix is removed from the display text, even if its body would not
	// parse as a directive. Tags without a closing bracket are inert text.
	toolStripPattern     = regexp.MustCompile(`\[TOOL:[^\]]+\]`)
	internalStripPattern = regexp.MustCompile(`\[INTERNAL:[^\]]+\]`)
)

// Call is one parsed directive: a name plus string key/value parameters.
type Call struct {
	Name   string
	Params map[string]string
}

// Parsed is the full decomposition of one piece of assistant text.
type Parsed struct {
	ToolCalls []Call // left-to-right source order
	Commands  []Call // left-to-right source order
	Reaction  string // empty when no leading reaction marker
	CleanText string // directive-free rendering, reaction stripped, trimmed
}

// Parse decomposes raw assistant text. It never fails: unknown names are a
// concern for the executor, and malformed tags simply stay literal text.
func Parse(text string) Parsed {
	p := Parsed{
		ToolCalls: parseCalls(toolPattern, text),
		Commands:  parseCalls(internalPattern, text),
	}

	clean := toolStripPattern.ReplaceAllString(text, "")
	clean = internalStripPattern.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(clean)

	if m := reactionPattern.FindStringSubmatch(clean); m != nil {
		p.Reaction = m[1]
		clean = strings.TrimPrefix(clean, m[0])
	}

	p.CleanText = strings.TrimSpace(clean)
	return p
}

func parseCalls(pattern *regexp.Regexp, text string) []Call {
	var calls []Call
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		calls = append(calls, Call{Name: m[1], Params: parseParams(m[2])})
	}
	return calls
}

// parseParams splits a directive body of whitespace-separated key=value
// pairs. Values run to the next whitespace, so they can never contain spaces.
func parseParams(body string) map[string]string {
	params := map[string]string{}
	if body == "" {
		return params
	}
	for _, pair := range paramPattern.FindAllStringSubmatch(body, -1) {
		params[pair[1]] = pair[2]
	}
	return params
}
