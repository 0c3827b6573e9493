// Package tools executes the journal tools the model can call.
package tools

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pbaille/journal/internal/domain"
)

// Store is the part of the record store the tools need
type Store interface {
	Create(content, category string, tags []string) (*domain.Entry, error)
	Query(category, search string) (string, error)
}

// Dispatcher maps tool calls onto store operations
type Dispatcher struct {
	store  Store
	logger *zap.Logger
}

// New creates a Dispatcher
func New(s Store, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{store: s, logger: logger}
}

// Execute runs one tool call. Failures, including unknown tool names, are
// reported inside the result so they can be handed back to the model.
func (d *Dispatcher) Execute(call domain.ToolCall) map[string]any {
	d.logger.Debug("executing tool", zap.String("tool", call.Name), zap.Any("args", call.Args))

	switch call.Name {
	case domain.ToolAddEntry:
		return d.addEntry(call.Args)
	case domain.ToolQueryEntries:
		return d.queryEntries(call.Args)
	}

	d.logger.Warn("unknown tool requested", zap.String("tool", call.Name))
	return map[string]any{"error": "Unknown function"}
}

func (d *Dispatcher) addEntry(args map[string]any) map[string]any {
	content := stringArg(args, "content")
	category := stringArg(args, "category")
	if strings.TrimSpace(category) == "" {
		category = domain.CategoryNote
	}

	entry, err := d.store.Create(content, category, stringsArg(args, "tags"))
	if err != nil {
		d.logger.Error("add entry failed", zap.Error(err))
		return map[string]any{"error": err.Error()}
	}

	return map[string]any{
		"success": true,
		"message": fmt.Sprintf("Added %s entry.", entry.Category),
	}
}

func (d *Dispatcher) queryEntries(args map[string]any) map[string]any {
	category := domain.CategoryAll
	if _, ok := args["category"]; ok {
		category = stringArg(args, "category")
		if category == "" {
			category = domain.CategoryNote
		}
	}

	result, err := d.store.Query(category, stringArg(args, "search_query"))
	if err != nil {
		d.logger.Error("query entries failed", zap.Error(err))
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{"result": result}
}

// stringArg returns args[key] when it holds a string
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// stringsArg accepts both []string and the []any produced by JSON decoding
func stringsArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Declarations describes the journal tools to the model
func Declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        domain.ToolAddEntry,
			Description: "Add a new journal entry.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"content":  {Type: genai.TypeString},
					"category": {Type: genai.TypeString},
					"tags": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"content", "category"},
			},
		},
		{
			Name:        domain.ToolQueryEntries,
			Description: "Search journal entries.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"category":     {Type: genai.TypeString},
					"search_query": {Type: genai.TypeString},
				},
			},
		},
	}
}
