package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/journal/internal/domain"
)

var fixedNow = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAssignsIncreasingIDs(t *testing.T) {
	s := newTestStore(t)

	inputs := []struct{ content, category string }{
		{"buy milk", "shoppinglist"},
		{"call mom", "reminder"},
		{"", "note"},
		{"idea", "Thought"},
	}
	for i, in := range inputs {
		e, err := s.Create(in.content, in.category, nil)
		require.NoError(t, err)
		assert.Equal(t, i+1, e.ID)
	}

	entries, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, entries, len(inputs))
	for i, e := range entries {
		assert.Equal(t, i+1, e.ID)
	}
}

func TestCreateNormalizes(t *testing.T) {
	s := newTestStore(t)

	e, err := s.Create("  pick up keys \n", "  ReMinder ", nil)
	require.NoError(t, err)

	assert.Equal(t, "pick up keys", e.Content)
	assert.Equal(t, "reminder", e.Category)
	assert.Equal(t, []string{}, e.Tags)
	assert.Equal(t, fixedNow, e.Timestamp)

	stored, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "pick up keys", stored[0].Content)
	assert.Equal(t, []string{}, stored[0].Tags)
	assert.True(t, fixedNow.Equal(stored[0].Timestamp))
}

func TestCreateKeepsTagOrder(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("read dune", "recommendation", []string{"books", "scifi", "books"})
	require.NoError(t, err)

	entries, err := s.Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{"books", "scifi", "books"}, entries[0].Tags)
}

func TestQueryAllKeepsInsertionOrder(t *testing.T) {
	s := newTestStore(t)

	for _, c := range []string{"first", "second", "third"} {
		_, err := s.Create(c, "note", nil)
		require.NoError(t, err)
	}

	got, err := s.Query(domain.CategoryAll, "")
	require.NoError(t, err)
	assert.Equal(t,
		"- [note] first (2024-03-05 14:30)\n"+
			"- [note] second (2024-03-05 14:30)\n"+
			"- [note] third (2024-03-05 14:30)",
		got)
}

func TestQueryCategoryIgnoresCase(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("eggs", "shoppinglist", nil)
	require.NoError(t, err)
	_, err = s.Create("dentist", "reminder", nil)
	require.NoError(t, err)

	got, err := s.Query("ShoppingList", "")
	require.NoError(t, err)
	assert.Equal(t, "- [shoppinglist] eggs (2024-03-05 14:30)", got)
}

func TestQuerySearchText(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("Call the Dentist", "reminder", nil)
	require.NoError(t, err)
	_, err = s.Create("call mom", "reminder", nil)
	require.NoError(t, err)

	got, err := s.Query("all", "DENTIST")
	require.NoError(t, err)
	assert.Equal(t, "- [reminder] Call the Dentist (2024-03-05 14:30)", got)
}

func TestQueryNoMatchReturnsSentinel(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Query("shoppinglist", "")
	require.NoError(t, err)
	assert.Equal(t, NoEntriesFound, got)

	_, err = s.Create("call mom", "reminder", nil)
	require.NoError(t, err)

	got, err = s.Query("reminder", "dentist")
	require.NoError(t, err)
	assert.Equal(t, NoEntriesFound, got)
}

func TestRecent(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 12; i++ {
		_, err := s.Create("entry", "note", nil)
		require.NoError(t, err)
	}

	recent, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, 3, recent[0].ID)
	assert.Equal(t, 12, recent[9].ID)

	none, err := s.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTranscript(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AppendMessage(domain.RoleUser, "hello")
	require.NoError(t, err)
	_, err = s.AppendMessage(domain.RoleAssistant, "hi")
	require.NoError(t, err)

	msgs, err := s.Transcript()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "hi", msgs[1].Content)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)
}

func TestClearEmptiesEntriesAndTranscript(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("buy milk", "shoppinglist", nil)
	require.NoError(t, err)
	_, err = s.AppendMessage(domain.RoleUser, "add milk")
	require.NoError(t, err)

	require.NoError(t, s.Clear())

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	msgs, err := s.Transcript()
	require.NoError(t, err)
	assert.Empty(t, msgs)

	e, err := s.Create("after clear", "note", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, e.ID)
}

func TestClearIsAllOrNothing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("buy milk", "shoppinglist", nil)
	require.NoError(t, err)
	_, err = s.AppendMessage(domain.RoleUser, "add milk")
	require.NoError(t, err)

	// drop the transcript table so the second delete inside Clear fails
	_, err = s.db.Exec("DROP TABLE messages")
	require.NoError(t, err)

	require.Error(t, s.Clear())

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "entries must survive a failed clear")
}
