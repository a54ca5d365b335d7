// Package normalize turns raw model output into a valid structured
// document. Model output is unreliable: it arrives wrapped in markdown
// fences, truncated mid-object, or with Python-style punctuation. Repairs
// are layered from cheapest to most invasive, and the final fallback
// always produces a valid document, so Normalize never fails.
package normalize

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Result is the outcome of normalizing generator output. When every
// repair strategy fails, Doc holds a guaranteed-valid placeholder and
// Degraded is set; Err then carries the explanation embedded in the
// placeholder's error field.
type Result struct {
	Doc      map[string]any
	Degraded bool
	Err      string
}

const degradedErrMsg = "invalid JSON format in model response"

var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// Normalize parses raw model output, applying textual repairs as needed.
// truncated should be set when the generation call reported that output
// was cut short; it enables the brace-balancing repair.
func Normalize(raw string, truncated bool) Result {
	if doc, ok := tryParse(raw); ok {
		return Result{Doc: doc}
	}

	cleaned := clean(raw)
	if cleaned == "" {
		return degraded(raw)
	}
	if doc, ok := tryParse(cleaned); ok {
		return Result{Doc: doc}
	}

	repaired := repairPunctuation(cleaned)
	if doc, ok := tryParse(repaired); ok {
		return Result{Doc: doc}
	}

	if truncated {
		if balanced := balanceBraces(repaired); balanced != "" {
			if doc, ok := tryParse(balanced); ok {
				return Result{Doc: doc}
			}
		}
	}

	return degraded(raw)
}

func tryParse(s string) (map[string]any, bool) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, false
	}
	if doc == nil {
		return nil, false
	}
	return doc, true
}

// clean strips markdown fences and noise around the outermost JSON
// object. Returns "" when no object delimiters are present at all.
func clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	s = s[start : end+1]

	s = normalizeQuotes(s)
	return stripControlChars(s)
}

func normalizeQuotes(s string) string {
	replacer := strings.NewReplacer(
		"“", `"`, // left double quotation mark
		"”", `"`, // right double quotation mark
		"‘", "'", // left single quotation mark
		"’", "'", // right single quotation mark
	)
	return replacer.Replace(s)
}

func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 {
			return -1
		}
		return r
	}, s)
}

// repairPunctuation swaps single-quote delimiters for double quotes and
// removes trailing commas before a closing brace or bracket.
func repairPunctuation(s string) string {
	s = strings.ReplaceAll(s, "'", `"`)
	return trailingCommaPattern.ReplaceAllString(s, "$1")
}

// balanceBraces repairs output truncated mid-object: it cuts the text at
// the last complete closing brace and appends enough closing braces to
// match the open count. Returns "" when there is no closing brace to cut
// at.
func balanceBraces(s string) string {
	last := strings.LastIndex(s, "}")
	if last == -1 {
		return ""
	}
	s = s[:last+1]

	opens := strings.Count(s, "{")
	closes := strings.Count(s, "}")
	if opens > closes {
		s += strings.Repeat("}", opens-closes)
	}
	return s
}

// degraded builds the guaranteed-valid placeholder document. A response
// that mentions a recipe gets a recipe-shaped placeholder so the recipe
// pipeline still receives the fields it expects.
func degraded(raw string) Result {
	if strings.Contains(strings.ToLower(raw), "recipe") {
		return Result{
			Doc: map[string]any{
				"recipe": map[string]any{
					"name":        "Unknown recipe",
					"ingredients": []any{"Could not parse ingredients"},
					"steps":       []any{"Could not parse preparation steps"},
					"error":       degradedErrMsg,
				},
			},
			Degraded: true,
			Err:      degradedErrMsg,
		}
	}
	return Result{
		Doc:      map[string]any{"error": degradedErrMsg},
		Degraded: true,
		Err:      degradedErrMsg,
	}
}
