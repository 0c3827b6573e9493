package domain

import "time"

// Tool names advertised to the delegate and produced by the rule extractors
const (
	ToolAddEntry     = "add_journal_entry"
	ToolQueryEntries = "query_journal_entries"
)

// Categories the delegate is told to prefer. The store accepts any label.
const (
	CategoryReminder       = "reminder"
	CategoryNote           = "note"
	CategoryThought        = "thought"
	CategoryRecommendation = "recommendation"
	CategoryShoppingList   = "shoppinglist"

	// CategoryAll disables category filtering on queries
	CategoryAll = "all"
)

// Entry represents a stored journal record
type Entry struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the chat transcript
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolCall is a named tool invocation with its arguments
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}
