package infer

import (
	"regexp"
	"strconv"
	"strings"
)

// PlaceholderKind is the closed set of placeholder variants. The kind drives
// which resolver runs; resolvers are tried in fixed priority order.
type PlaceholderKind int

const (
	// PlaceholderNone means the value is a literal, not a placeholder.
	PlaceholderNone PlaceholderKind = iota

	// PlaceholderExplicit is {step_N_result}: names an exact prior step id.
	PlaceholderExplicit

	// PlaceholderTyped is <from_previous_TOOL>: names a tool to search
	// backward for.
	PlaceholderTyped

	// PlaceholderContextual is <from_context>: matches any prior tool-call
	// step (full fan-in).
	PlaceholderContextual

	// PlaceholderIteration is <iterate:FIELD>: names a field expected in a
	// prior step's declared output shape.
	PlaceholderIteration
)

// Placeholder is a parsed placeholder reference from a parameter value.
type Placeholder struct {
	Kind   PlaceholderKind
	StepID int    // set for PlaceholderExplicit
	Tool   string // set for PlaceholderTyped, lowercased
	Field  string // set for PlaceholderIteration, lowercased
}

var (
	explicitRe  = regexp.MustCompile(`(?i)\{step_(\d+)_result\}`)
	typedRe     = regexp.MustCompile(`(?i)<from_previous_(\w+)>`)
	iterationRe = regexp.MustCompile(`(?i)<iterate:(\w+)>`)
)

// ParsePlaceholder classifies a parameter value. It returns ok=false for
// literal values.
func ParsePlaceholder(value string) (Placeholder, bool) {
	if m := explicitRe.FindStringSubmatch(value); m != nil {
		id, err := strconv.Atoi(m[1])
		if err == nil {
			return Placeholder{Kind: PlaceholderExplicit, StepID: id}, true
		}
	}
	if m := typedRe.FindStringSubmatch(value); m != nil {
		return Placeholder{Kind: PlaceholderTyped, Tool: strings.ToLower(m[1])}, true
	}
	if strings.Contains(strings.ToLower(value), "<from_context>") {
		return Placeholder{Kind: PlaceholderContextual}, true
	}
	if m := iterationRe.FindStringSubmatch(value); m != nil {
		return Placeholder{Kind: PlaceholderIteration, Field: strings.ToLower(m[1])}, true
	}
	return Placeholder{}, false
}
