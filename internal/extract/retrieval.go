package extract

import (
	"regexp"
	"strings"

	"github.com/pbaille/journal/internal/domain"
)

// RetrievalRule maps a listing request to the category it should show
type RetrievalRule struct {
	Name     string
	Category string
	Match    func(text string) bool
}

var (
	askShopping  = regexp.MustCompile(`(what|show|list|display).*(shopping|buy|grocer|item)`)
	askReminders = regexp.MustCompile(`(what|show|list|display).*(remind|task|todo|to-do|event)`)
	askNotes     = regexp.MustCompile(`(what|show|list|display).*(note|thought|idea|recommendation)`)
	scheduleWord = regexp.MustCompile(`(remind|appointment|meeting|schedule|event)`)
	askWord      = regexp.MustCompile(`(do|does|did|any|what|show|list|display|have|are there)`)
	addWord      = regexp.MustCompile(`(add|note)`)
)

// RetrievalRules are evaluated top to bottom against the lower-cased message.
// The first rule that matches decides the category.
var RetrievalRules = []RetrievalRule{
	{
		Name:     "shopping",
		Category: domain.CategoryShoppingList,
		Match: func(text string) bool {
			return askShopping.MatchString(text) && !addWord.MatchString(text)
		},
	},
	{
		Name:     "reminders",
		Category: domain.CategoryReminder,
		Match: func(text string) bool {
			return askReminders.MatchString(text) && !addWord.MatchString(text)
		},
	},
	{
		// "note" is also an add word, so only thought/idea/recommendation
		// phrasing reaches this rule
		Name:     "notes",
		Category: domain.CategoryNote,
		Match: func(text string) bool {
			return askNotes.MatchString(text) && !addWord.MatchString(text)
		},
	},
	{
		Name:     "schedule",
		Category: domain.CategoryReminder,
		Match: func(text string) bool {
			return scheduleWord.MatchString(text) && !addWord.MatchString(text) && askWord.MatchString(text)
		},
	},
}

// Retrieval reports the first retrieval rule matching msg
func Retrieval(msg string) (RetrievalRule, bool) {
	text := strings.ToLower(strings.TrimSpace(msg))
	for _, rule := range RetrievalRules {
		if rule.Match(text) {
			return rule, true
		}
	}
	return RetrievalRule{}, false
}
