package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appsearch/internal/domain"
)

type stubFinder struct {
	queries []string
	match   domain.Match
	err     error
}

func (s *stubFinder) Find(_ context.Context, q string) (domain.Match, error) {
	s.queries = append(s.queries, q)
	return s.match, s.err
}

func typeQuery(t *testing.T, m Model, q string) Model {
	t.Helper()
	for _, r := range q {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

// submit presses enter and feeds the resulting command's message back.
func submit(t *testing.T, m Model) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	return next.(Model)
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func TestEnterRunsFindAndShowsMatch(t *testing.T) {
	f := &stubFinder{match: domain.Match{AppName: "hubspot", ActionName: "create_contact", ActionDescription: "Create a new contact. Works offline.", Distance: 0.12}}
	m := sized(New(context.Background(), f, "6 actions stored"))

	m = submit(t, typeQuery(t, m, "add contact"))

	assert.Equal(t, []string{"add contact"}, f.queries)
	require.Len(t, m.history, 1)
	assert.Equal(t, "create_contact", m.history[0].match.ActionName)
	assert.Contains(t, m.status, "add contact")
	view := m.View()
	assert.Contains(t, view, "hubspot")
	assert.Contains(t, view, "create_contact")
	assert.Contains(t, view, "6 actions stored")
}

func TestNoMatchErrorIsExplained(t *testing.T) {
	f := &stubFinder{err: &domain.Error{Kind: domain.KindNoMatch, Op: "nearest action"}}
	m := sized(New(context.Background(), f, ""))

	m = submit(t, typeQuery(t, m, "anything"))

	assert.Empty(t, m.history)
	assert.Contains(t, m.status, "run the seed command")
}

func TestPlainErrorIsShown(t *testing.T) {
	f := &stubFinder{err: errors.New("connection refused")}
	m := sized(New(context.Background(), f, ""))

	m = submit(t, typeQuery(t, m, "anything"))
	assert.Contains(t, m.status, "connection refused")
}

func TestBlankEnterDoesNothing(t *testing.T) {
	f := &stubFinder{}
	m := sized(New(context.Background(), f, ""))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Empty(t, f.queries)
	assert.False(t, m.busy)
}

func TestHistoryNavigationWraps(t *testing.T) {
	f := &stubFinder{match: domain.Match{ActionName: "a"}}
	m := sized(New(context.Background(), f, ""))
	m = submit(t, typeQuery(t, m, "first"))
	f.match = domain.Match{ActionName: "b"}
	m = submit(t, typeQuery(t, m, "second"))
	require.Len(t, m.history, 2)
	assert.Equal(t, 1, m.cursor)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 0, m.cursor)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)
}

func TestCtrlCQuits(t *testing.T) {
	m := New(context.Background(), &stubFinder{}, "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHighlightBestSentence(t *testing.T) {
	out := highlightBestSentence("Send an email. Archive a thread.", "archive thread")
	assert.Contains(t, out, "Send an email.")
	assert.Contains(t, out, "Archive a thread.")
	assert.Equal(t, "", highlightBestSentence("  ", "q"))
	assert.Equal(t, "", highlightBestSentence("\n\t", "q"))
}

func TestRenderMatch(t *testing.T) {
	out := RenderMatch(domain.Match{AppID: 2, AppName: "gmail", ActionID: 7, ActionName: "send_email", ActionDescription: "Send an email.", Distance: 0.25}, "send")
	assert.Contains(t, out, "gmail")
	assert.Contains(t, out, "send_email")
	assert.Contains(t, out, "app #2")
	assert.Contains(t, out, "action #7")
	assert.Contains(t, out, "distance=0.2500")
}
