package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"appsearch/internal/domain"
)

// FinderPort is the TUI-facing subset of the catalog service.
type FinderPort interface {
	Find(ctx context.Context, query string) (domain.Match, error)
}

// lookup is one answered query.
type lookup struct {
	query string
	match domain.Match
}

type matchMsg struct {
	query string
	match domain.Match
	err   error
}

// Model is the Bubble Tea model for the interactive finder.
type Model struct {
	ctx      context.Context
	service  FinderPort
	input    textinput.Model
	viewport viewport.Model
	history  []lookup
	summary  string
	status   string
	cursor   int
	ready    bool
	busy     bool
}

// New creates a new TUI model instance. summary is shown under the header.
func New(ctx context.Context, service FinderPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe an action and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{ctx: ctx, service: service, input: ti, viewport: vp, summary: summary, status: "Ready. Type to search."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case matchMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + describeError(msg.err)
		} else {
			m.history = append(m.history, lookup{query: msg.query, match: msg.match})
			m.cursor = len(m.history) - 1
			m.status = fmt.Sprintf("Best match for %q", msg.query)
		}
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = fmt.Sprintf("Searching for %q...", q)
				m.input.SetValue("")
				return m, m.find(q)
			}
		case "down":
			if len(m.history) > 0 {
				m.cursor = (m.cursor + 1) % len(m.history)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if len(m.history) > 0 {
				m.cursor = (m.cursor - 1 + len(m.history)) % len(m.history)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) find(q string) tea.Cmd {
	return func() tea.Msg {
		match, err := m.service.Find(m.ctx, q)
		return matchMsg{query: q, match: match, err: err}
	}
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("App Action Finder")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrent() string {
	if len(m.history) == 0 {
		return "No results yet."
	}
	l := m.history[m.cursor]
	title := fmt.Sprintf("Query %d/%d  %q", m.cursor+1, len(m.history), l.query)
	return title + "\n\n" + RenderMatch(l.match, l.query)
}

// RenderMatch formats a match with the description sentence closest to the
// query highlighted.
func RenderMatch(match domain.Match, query string) string {
	name := appStyle.Render(match.AppName) + " / " + actionStyle.Render(match.ActionName)
	meta := fmt.Sprintf("app #%d  action #%d  distance=%.4f", match.AppID, match.ActionID, match.Distance)
	return name + "\n" + metaStyle.Render(meta) + "\n\n" + highlightBestSentence(match.ActionDescription, query)
}

func describeError(err error) string {
	switch domain.KindOf(err) {
	case domain.KindNoMatch:
		return "no actions stored yet; run the seed command first"
	case domain.KindInvalidQuery:
		return "query is empty"
	}
	return err.Error()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	appStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	actionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}

// Run starts the interactive finder and blocks until the user quits.
func Run(ctx context.Context, service FinderPort, summary string) error {
	_, err := tea.NewProgram(New(ctx, service, summary), tea.WithContext(ctx)).Run()
	return err
}
