package extract

import (
	"regexp"
	"strings"

	"github.com/pbaille/journal/internal/domain"
)

var (
	addAhead       = regexp.MustCompile(`(?i)^\s*add `)
	shoppingPhrase = regexp.MustCompile(`(?i)(to shopping list|to buy|list to buy)`)
	shoppingItem   = regexp.MustCompile(`(?i)(?:buy|for|to buy|list to buy)\s+(.*)`)
	reminderWord   = regexp.MustCompile(`(?i)(remind|appointment|meeting|schedule|event)`)
	questionWord   = regexp.MustCompile(`(?i)\b(do|does|did|any|what|show|list|display|have|are there)\b`)
)

// Implicit finds add instructions written as prose. The message is cut into
// actions wherever an "add ..." starts a new sentence, line or "and" clause.
// Shopping phrasing yields a shoppinglist entry holding the item text;
// reminder phrasing that is not a question yields a reminder entry holding
// the whole action. Anything else is skipped.
func Implicit(msg string) []Candidate {
	var out []Candidate
	for _, action := range SplitActions(msg) {
		if strings.TrimSpace(action) == "" {
			continue
		}

		if shoppingPhrase.MatchString(action) {
			if m := shoppingItem.FindStringSubmatch(action); m != nil {
				out = append(out, Candidate{
					Content:  strings.TrimSpace(m[1]),
					Category: domain.CategoryShoppingList,
					Tags:     []string{},
				})
			}
			continue
		}

		if reminderWord.MatchString(action) && !questionWord.MatchString(action) {
			out = append(out, Candidate{
				Content:  strings.TrimSpace(action),
				Category: domain.CategoryReminder,
				Tags:     []string{},
			})
		}
	}
	return out
}

// SplitActions cuts msg before every "add " that follows a period, a newline
// or "and ". Leading whitespace of the add stays with the following action.
func SplitActions(msg string) []string {
	var actions []string
	start := 0
	for i := 1; i < len(msg); i++ {
		if !actionBoundary(msg, i) || !addAhead.MatchString(msg[i:]) {
			continue
		}
		actions = append(actions, msg[start:i])
		start = i
	}
	return append(actions, msg[start:])
}

func actionBoundary(msg string, i int) bool {
	switch msg[i-1] {
	case '.', '\n':
		return true
	}
	return i >= 4 && strings.EqualFold(msg[i-4:i], "and ")
}
