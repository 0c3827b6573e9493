// Package extract holds the rule-based recognizers that run before a message
// is handed to the model. Every function here is pure: it inspects the text
// and reports what it found, and the caller decides what to apply.
package extract

import (
	"regexp"
	"strings"
)

// Candidate is an entry recognized in a message but not yet stored
type Candidate struct {
	Content  string
	Category string
	Tags     []string
}

// bulkLine matches pasted shorthand such as "task — 2024-01-01 10:00 buy milk".
// Word, space and digit classes are spelled out so non-ASCII categories match
// whole.
var bulkLine = regexp.MustCompile(`([\p{L}\p{N}_]+)[\s\p{Z}]+—[\s\p{Z}]+[\p{Nd}\-:\s\p{Z}]+(.+)`)

// Bulk returns one candidate per em-dash shorthand line, in input order.
// Text that does not fit the shape is ignored.
func Bulk(msg string) []Candidate {
	matches := bulkLine.FindAllStringSubmatch(msg, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, Candidate{
			Category: strings.TrimSpace(m[1]),
			Content:  strings.TrimSpace(m[2]),
			Tags:     []string{},
		})
	}
	return out
}
