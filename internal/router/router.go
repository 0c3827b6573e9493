// Package router decides what to do with each chat message. Cheap
// deterministic rules run first; only messages none of them claim reach the
// model.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pbaille/journal/internal/delegate"
	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/extract"
)

// Store is the record store as the router sees it
type Store interface {
	Create(content, category string, tags []string) (*domain.Entry, error)
	Query(category, search string) (string, error)
	Recent(n int) ([]domain.Entry, error)
	AppendMessage(role, content string) (*domain.Message, error)
	Clear() error
}

// Delegate answers messages the rules did not handle
type Delegate interface {
	Respond(ctx context.Context, contents []*genai.Content, exec delegate.Executor) (string, error)
}

// Stage names, used in logs
const (
	StageBulk      = "bulk"
	StageRetrieval = "retrieval"
	StageImplicit  = "implicit"
	StageDelegate  = "delegate"
)

// EmptyMessageReply answers blank input without consulting the model
const EmptyMessageReply = "Please type a message for your journal."

// DefaultContextSize is how many recent entries are shown to the model
const DefaultContextSize = 10

var contextKeywords = []string{"what", "list", "show", "remind", "buy", "task", "to-do", "remember", "summary", "note"}

// Router runs one message at a time through the stage pipeline
type Router struct {
	store       Store
	delegate    Delegate
	tools       delegate.Executor
	contextSize int
	logger      *zap.Logger

	mu sync.Mutex
}

// Option configures a Router
type Option func(*Router)

// WithContextSize sets how many recent entries are passed to the model
func WithContextSize(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.contextSize = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Router over an injected store, model delegate and tool
// executor
func New(s Store, d Delegate, tools delegate.Executor, opts ...Option) *Router {
	r := &Router{
		store:       s,
		delegate:    d,
		tools:       tools,
		contextSize: DefaultContextSize,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle processes msg and returns the reply to show the user. Failures are
// logged and turned into an error reply. Both turns are added to the
// transcript. Calls are serialized.
func (r *Router) Handle(ctx context.Context, msg string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.store.AppendMessage(domain.RoleUser, msg); err != nil {
		r.logger.Error("record user message", zap.Error(err))
	}

	reply, err := r.Process(ctx, msg)
	if err != nil {
		r.logger.Error("message processing failed", zap.String("message", msg), zap.Error(err))
		reply = fmt.Sprintf("❌ Error: %v", err)
	}

	if _, err := r.store.AppendMessage(domain.RoleAssistant, reply); err != nil {
		r.logger.Error("record assistant message", zap.Error(err))
	}
	return reply
}

// Clear empties the entries and transcript. It waits for any message being
// handled to finish so a pipeline never sees a half-cleared session.
func (r *Router) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	r.logger.Info("session cleared")
	return nil
}

// Process runs the pipeline for msg, stopping at the first stage that
// produces a reply. Entries created before a failure stay stored.
func (r *Router) Process(ctx context.Context, msg string) (string, error) {
	if strings.TrimSpace(msg) == "" {
		return EmptyMessageReply, nil
	}

	if candidates := extract.Bulk(msg); len(candidates) > 0 {
		if err := r.apply(candidates); err != nil {
			return "", err
		}
		r.logger.Info("stage matched", zap.String("stage", StageBulk), zap.Int("entries", len(candidates)))
		return fmt.Sprintf("✅ Added %d journal entries successfully.", len(candidates)), nil
	}

	if rule, ok := extract.Retrieval(msg); ok {
		r.logger.Info("stage matched",
			zap.String("stage", StageRetrieval),
			zap.String("rule", rule.Name),
			zap.String("category", rule.Category))
		result, err := r.store.Query(rule.Category, "")
		if err != nil {
			return "", fmt.Errorf("query %s: %w", rule.Category, err)
		}
		return result, nil
	}

	if candidates := extract.Implicit(msg); len(candidates) > 0 {
		if err := r.apply(candidates); err != nil {
			return "", err
		}
		r.logger.Info("stage matched", zap.String("stage", StageImplicit), zap.Int("entries", len(candidates)))
		return addedSummary(len(candidates)), nil
	}

	return r.delegateMessage(ctx, msg)
}

func (r *Router) delegateMessage(ctx context.Context, msg string) (string, error) {
	contextText, err := r.recentContext(msg)
	if err != nil {
		return "", err
	}

	r.logger.Info("delegating message",
		zap.String("stage", StageDelegate),
		zap.Bool("with_context", contextText != ""))

	contents := []*genai.Content{delegate.UserContent(contextText, msg)}
	reply, err := r.delegate.Respond(ctx, contents, r.tools)
	if err != nil {
		return "", fmt.Errorf("delegate: %w", err)
	}
	return reply, nil
}

// recentContext lists the latest entries when msg looks like it refers to
// earlier ones. It returns "" when there is nothing worth adding.
func (r *Router) recentContext(msg string) (string, error) {
	if !wantsContext(msg) {
		return "", nil
	}

	recent, err := r.store.Recent(r.contextSize)
	if err != nil {
		return "", fmt.Errorf("load recent entries: %w", err)
	}
	if len(recent) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("Here are recent journal entries:")
	for _, e := range recent {
		sb.WriteString("\n- [")
		sb.WriteString(e.Category)
		sb.WriteString("] ")
		sb.WriteString(e.Content)
	}
	return sb.String(), nil
}

func wantsContext(msg string) bool {
	lower := strings.ToLower(msg)
	for _, k := range contextKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (r *Router) apply(candidates []extract.Candidate) error {
	for _, c := range candidates {
		if _, err := r.store.Create(c.Content, c.Category, c.Tags); err != nil {
			return fmt.Errorf("add %s entry: %w", c.Category, err)
		}
	}
	return nil
}

func addedSummary(n int) string {
	if n == 1 {
		return "✅ Added 1 journal entry successfully."
	}
	return fmt.Sprintf("✅ Added %d journal entries successfully.", n)
}
