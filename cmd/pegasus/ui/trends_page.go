package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pegasusedge/internal/gemini"
)

// trendsDoneMsg carries a grounded search result.
type trendsDoneMsg struct {
	result *gemini.Result
	err    error
}

// TrendsPageModel answers trend queries with Google Search grounding.
type TrendsPageModel struct {
	client *gemini.Client
	styles Styles

	input  textinput.Model
	vp     viewport.Model
	spin   spinner.Model
	result *gemini.Result
	busy   bool
	errMsg string
}

// NewTrendsPageModel creates the trends page.
func NewTrendsPageModel(client *gemini.Client, styles Styles) TrendsPageModel {
	ti := textinput.New()
	ti.Placeholder = "What's trending in your niche right now?"
	ti.CharLimit = 300
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	return TrendsPageModel{
		client: client,
		styles: styles,
		input:  ti,
		vp:     viewport.New(80, 20),
		spin:   sp,
	}
}

// SetSize updates the layout.
func (m *TrendsPageModel) SetSize(w, h int) {
	m.vp.Width = w - 2
	m.vp.Height = h - 4
	m.input.Width = w - 6
}

func (m TrendsPageModel) searchCmd(query string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.GenerateWithSearch(context.Background(), query)
		return trendsDoneMsg{result: result, err: err}
	}
}

// Update handles messages.
func (m TrendsPageModel) Update(msg tea.Msg) (TrendsPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case trendsDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.result = msg.result
		m.vp.SetContent(m.resultView())
		m.vp.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "enter" && !m.busy {
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				return m, nil
			}
			m.busy = true
			m.errMsg = ""
			return m, tea.Batch(m.spin.Tick, m.searchCmd(query))
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.vp, cmd = m.vp.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m TrendsPageModel) resultView() string {
	if m.result == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.styles.Body.Render(m.result.Text))
	if len(m.result.Sources) > 0 {
		sb.WriteString("\n\n" + m.styles.Subtitle.Render("Sources") + "\n")
		for i, src := range m.result.Sources {
			sb.WriteString(m.styles.Body.Render(fmt.Sprintf("%d. %s", i+1, src.Title)) + "\n")
			sb.WriteString(m.styles.Muted.Render("   "+src.URI) + "\n")
		}
	}
	return sb.String()
}

// View renders the page.
func (m TrendsPageModel) View() string {
	var status string
	switch {
	case m.busy:
		status = m.spin.View() + m.styles.Muted.Render(" searching...")
	case m.errMsg != "":
		status = m.styles.Error.Render("Error: " + m.errMsg)
	default:
		status = m.styles.Footer.Render("enter: search with live grounding")
	}

	body := m.vp.View()
	if m.result == nil && !m.busy && m.errMsg == "" {
		m.vp.SetContent(m.styles.Muted.Render("Ask about trends to get a grounded answer with cited sources."))
		body = m.vp.View()
	}

	return strings.Join([]string{
		m.styles.Label.Render("? ") + m.input.View(),
		body,
		status,
	}, "\n")
}
