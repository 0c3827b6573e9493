package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/journal/internal/domain"
)

//go:embed schema.sql
var schema string

// NoEntriesFound is returned by Query when nothing matches
const NoEntriesFound = "No entries found."

// Store holds the journal entries and chat transcript of one session
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used for entry and message timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a session store. The database lives in memory and is gone
// once the store is closed.
func New(opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// every pooled connection would otherwise get its own empty :memory: db
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Create normalizes and appends a new entry, returning it
func (s *Store) Create(content, category string, tags []string) (*domain.Entry, error) {
	if tags == nil {
		tags = []string{}
	}
	entry := &domain.Entry{
		Content:   strings.TrimSpace(content),
		Category:  strings.ToLower(strings.TrimSpace(category)),
		Tags:      tags,
		Timestamp: s.now(),
	}

	tagsJSON, err := json.Marshal(entry.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	entry.ID = count + 1

	_, err = tx.Exec(
		"INSERT INTO entries (id, content, category, tags, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.Content, entry.Category, string(tagsJSON), entry.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit entry: %w", err)
	}
	return entry, nil
}

// Entries returns every entry, oldest first
func (s *Store) Entries() ([]domain.Entry, error) {
	return s.listEntries("SELECT id, content, category, tags, created_at FROM entries ORDER BY id")
}

// Recent returns the last n entries, oldest first
func (s *Store) Recent(n int) ([]domain.Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// Count returns the number of stored entries
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// Query renders the entries matching category and search. Category "all"
// matches everything; both filters ignore case. When nothing matches the
// NoEntriesFound message is returned instead of an empty rendering.
func (s *Store) Query(category, search string) (string, error) {
	entries, err := s.Entries()
	if err != nil {
		return "", err
	}

	wantCategory := strings.ToLower(category)
	wantSearch := strings.ToLower(search)

	var lines []string
	for _, e := range entries {
		if category != domain.CategoryAll && strings.ToLower(e.Category) != wantCategory {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Content), wantSearch) {
			continue
		}
		lines = append(lines, FormatEntry(e))
	}

	if len(lines) == 0 {
		return NoEntriesFound, nil
	}
	return strings.Join(lines, "\n"), nil
}

// FormatEntry renders one entry as a query result line
func FormatEntry(e domain.Entry) string {
	return fmt.Sprintf("- [%s] %s (%s)", e.Category, e.Content, e.Timestamp.Format("2006-01-02 15:04"))
}

// AppendMessage records a transcript turn
func (s *Store) AppendMessage(role, content string) (*domain.Message, error) {
	msg := &domain.Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}

	_, err := s.db.Exec(
		"INSERT INTO messages (id, role, content, created_at) VALUES (?, ?, ?, ?)",
		msg.ID, msg.Role, msg.Content, msg.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// Transcript returns the chat transcript in order
func (s *Store) Transcript() ([]domain.Message, error) {
	rows, err := s.db.Query("SELECT id, role, content, created_at FROM messages ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Clear removes all entries and the transcript in a single transaction
func (s *Store) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}

func (s *Store) listEntries(query string) ([]domain.Entry, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var tags string
		if err := rows.Scan(&e.ID, &e.Content, &e.Category, &tags, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
