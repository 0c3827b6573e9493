// Package delegate talks to the Gemini model that handles messages the
// rule-based extractors could not.
package delegate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.0-flash-lite"

// SystemInstruction keeps the model on journaling duty
const SystemInstruction = `You are a helpful personal journal assistant.
Classify the user's message as one of: ["add_journal_entries", "query_journal_entries", "irrelevant"].

You can:
- Add entries when the user mentions tasks, reminders, notes, thoughts, recommendations, or shopping lists.
- Use the category exactly as mentioned (e.g., "shoppinglist", "reminder", etc.)
- Never ask for clarification; infer intent.
- Retrieve entries when the user asks for lists, reminders, or what they logged earlier.

You must always use the functions when the user asks about:
- showing, listing, displaying, or viewing logs
- shopping lists or items to buy
- any mention of tasks, reminders, or notes

Valid categories: reminder, note, thought, recommendation, shoppinglist.

Restrictions:
- Only handle journaling tasks.
- If the user message is found to be irrelevant to journaling, decline politely.
- Decline non-journal queries politely.

Keep responses short and natural.`

// Generator is the model call the client wraps. *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client issues model calls with the journal tools attached
type Client struct {
	gen           Generator
	model         string
	config        *genai.GenerateContentConfig
	retry         RetryPolicy
	maxToolRounds int
	logger        *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithModel selects the model name
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithRetryPolicy replaces the default rate-limit retry policy
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithMaxToolRounds bounds how many times tool results are sent back
func WithMaxToolRounds(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxToolRounds = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client advertising the given tool declarations
func New(gen Generator, decls []*genai.FunctionDeclaration, opts ...Option) *Client {
	tools := make([]*genai.Tool, 0, len(decls))
	for _, d := range decls {
		tools = append(tools, &genai.Tool{FunctionDeclarations: []*genai.FunctionDeclaration{d}})
	}

	c := &Client{
		gen:   gen,
		model: DefaultModel,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
			Tools:             tools,
		},
		retry:         DefaultRetryPolicy(),
		maxToolRounds: 1,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewGemini connects to the Gemini API with the given key
func NewGemini(ctx context.Context, apiKey string, decls []*genai.FunctionDeclaration, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return New(gc.Models, decls, opts...), nil
}

// Model returns the model name in use
func (c *Client) Model() string {
	return c.model
}

// Generate makes one model call, retrying while the API reports rate limits
func (c *Client) Generate(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	attempt := 0

	err := c.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		r, err := c.gen.GenerateContent(ctx, c.model, contents, c.config)
		if err != nil {
			c.logger.Warn("model call failed",
				zap.String("model", c.model),
				zap.Int("attempt", attempt),
				zap.Bool("rate_limited", IsRateLimited(err)),
				zap.Error(err))
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("model call succeeded", zap.String("model", c.model), zap.Int("attempts", attempt))
	return resp, nil
}

// UserContent bundles text parts into a single user turn, skipping blanks
func UserContent(texts ...string) *genai.Content {
	parts := make([]*genai.Part, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			continue
		}
		parts = append(parts, genai.NewPartFromText(t))
	}
	return genai.NewContentFromParts(parts, genai.RoleUser)
}
