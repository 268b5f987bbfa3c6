package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"movierec/internal/domain"
	"movierec/internal/service"
	"movierec/internal/textutil"
)

// RecommendPort is the TUI-facing subset of the recommendation session.
type RecommendPort interface {
	Recommend(ctx context.Context, title string, topN int) ([]domain.Recommendation, error)
	RecommendLive(ctx context.Context, title string, topN int) ([]domain.Recommendation, error)
}

// Options tunes the TUI.
type Options struct {
	TopN                int
	MaxDescriptionChars int
	LiveAvailable       bool
	// Context is the parent of every request; cancelling it aborts requests
	// in flight. Nil means context.Background.
	Context context.Context
	// Timeout bounds one recommendation request. Zero means no limit.
	Timeout time.Duration
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service   RecommendPort
	opts      Options
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.Recommendation
	status    string
	cursor    int
	ready     bool
	busy      bool
	live      bool
	topN      int
	lastQuery string
}

type resultsMsg struct {
	query   string
	live    bool
	results []domain.Recommendation
	err     error
}

// New creates a new TUI model instance.
func New(svc RecommendPort, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a movie title and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	if opts.TopN == 0 {
		opts.TopN = service.DefaultTopN
	}
	return Model{
		service:  svc,
		opts:     opts,
		input:    ti,
		viewport: vp,
		topN:     service.ClampTopN(opts.TopN),
		status:   "Loaded. Type a title to get recommendations.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and result events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, mode line, status, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case resultsMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.results = nil
		} else {
			m.results = msg.results
			m.cursor = 0
			m.lastQuery = msg.query
			if len(msg.results) == 0 {
				m.status = "No recommendations found."
			} else {
				m.status = fmt.Sprintf("Top %d recommendations for %q", len(msg.results), msg.query)
			}
		}
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				m.status = "Please type a movie title."
				return m, nil
			}
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Searching...."
			return m, m.recommend(q)
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "pgup":
			m.topN = service.ClampTopN(m.topN + 1)
			return m, nil
		case "pgdown":
			m.topN = service.ClampTopN(m.topN - 1)
			return m, nil
		case "ctrl+l":
			if !m.opts.LiveAvailable {
				m.status = "Live mode is not configured."
				return m, nil
			}
			m.live = !m.live
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) recommend(query string) tea.Cmd {
	svc, live, topN, timeout := m.service, m.live, m.topN, m.opts.Timeout
	parent := m.opts.Context
	if parent == nil {
		parent = context.Background()
	}
	return func() tea.Msg {
		ctx := parent
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		var (
			recs []domain.Recommendation
			err  error
		)
		if live {
			recs, err = svc.RecommendLive(ctx, query, topN)
		} else {
			recs, err = svc.Recommend(ctx, query, topN)
		}
		return resultsMsg{query: query, live: live, results: recs, err: err}
	}
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Movie Recommender")
	mode := "local"
	if m.live {
		mode = "live"
	}
	modeLine := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).
		Render(fmt.Sprintf("mode: %s (ctrl+l)  results: [%02d] (pgup/pgdown)", mode, m.topN))
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + modeLine + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	heading := fmt.Sprintf("%d/%d  %s  score %.3f", m.cursor+1, len(m.results), titleStyle.Render(r.Title), r.Score)
	body := r.Description
	if m.opts.MaxDescriptionChars > 0 {
		body = textutil.Truncate(body, m.opts.MaxDescriptionChars)
	}
	return heading + "\n\n" + highlightBestSentence(body, m.lastQuery)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	wordRe         = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)
)

// highlightBestSentence emphasises the sentence sharing most words with the
// queried title.
func highlightBestSentence(text, query string) string {
	sentences := textutil.SplitSentences(text)
	if len(sentences) == 0 {
		return text
	}
	q := wordSet(query)
	if len(q) == 0 {
		return strings.Join(sentences, " ")
	}
	best, bestScore := -1, 0
	for i, s := range sentences {
		if score := overlap(q, s); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		sentences[best] = highlightStyle.Render(sentences[best])
	}
	return strings.Join(sentences, " ")
}

func wordSet(s string) map[string]struct{} {
	words := wordRe.FindAllString(textutil.FoldTitle(s), -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func overlap(q map[string]struct{}, sentence string) int {
	n := 0
	for w := range wordSet(sentence) {
		if _, ok := q[w]; ok {
			n++
		}
	}
	return n
}
