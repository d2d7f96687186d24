package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"pegasusedge/internal/gemini"
	"pegasusedge/internal/logging"
)

const defaultPersona = "You are the Pegasus Edge growth consultant, an expert in " +
	"audience growth, content strategy and creator monetization. Give practical, " +
	"specific advice. Use markdown formatting."

// chatChunkMsg carries one streamed text fragment.
type chatChunkMsg struct {
	text string
}

// chatDoneMsg ends a streamed reply.
type chatDoneMsg struct {
	sources []gemini.Source
	err     error
}

// chatEntry is one transcript turn.
type chatEntry struct {
	user string
	text string
}

// ChatPageModel is the streaming growth consultant chat.
type ChatPageModel struct {
	client *gemini.Client
	chat   *gemini.Chat
	styles Styles

	input   textinput.Model
	vp      viewport.Model
	spin    spinner.Model
	entries []chatEntry
	partial string
	persona string
	editing bool
	busy    bool
	errMsg  string
	stream  chan tea.Msg
	width   int
}

// NewChatPageModel creates the consultant page.
func NewChatPageModel(client *gemini.Client, styles Styles) ChatPageModel {
	ti := textinput.New()
	ti.Placeholder = "Ask the growth consultant anything..."
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	return ChatPageModel{
		client:  client,
		styles:  styles,
		input:   ti,
		vp:      viewport.New(80, 20),
		spin:    sp,
		persona: defaultPersona,
	}
}

// SetSize updates the layout.
func (m *ChatPageModel) SetSize(w, h int) {
	m.width = w
	m.vp.Width = w - 2
	m.vp.Height = h - 4
	m.input.Width = w - 6
}

func (m *ChatPageModel) send(message string) tea.Cmd {
	if m.chat == nil {
		m.chat = m.client.NewChat(m.persona)
	}
	chat := m.chat
	ch := make(chan tea.Msg, 8)
	m.stream = ch

	go func() {
		err := chat.SendStream(context.Background(), message, func(chunk string, final bool, sources []gemini.Source) {
			if final {
				ch <- chatDoneMsg{sources: sources}
				return
			}
			ch <- chatChunkMsg{text: chunk}
		})
		if err != nil {
			ch <- chatDoneMsg{err: err}
		}
		close(ch)
	}()

	return waitForStream(ch)
}

func waitForStream(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// Update handles messages.
func (m ChatPageModel) Update(msg tea.Msg) (ChatPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case chatChunkMsg:
		m.partial += msg.text
		m.refresh()
		return m, waitForStream(m.stream)

	case chatDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.partial = ""
			m.refresh()
			return m, nil
		}
		text := m.partial
		if len(msg.sources) > 0 {
			var lines []string
			for _, src := range msg.sources {
				lines = append(lines, fmt.Sprintf("- [%s](%s)", src.Title, src.URI))
			}
			text += "\n\n**Sources**\n" + strings.Join(lines, "\n")
		}
		m.entries = append(m.entries, chatEntry{text: text})
		m.partial = ""
		m.refresh()
		m.vp.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+p":
			if m.busy {
				return m, nil
			}
			// Toggle persona editing. Saving the persona starts a fresh
			// conversation under the new instruction.
			if m.editing {
				m.editing = false
				m.input.SetValue("")
				m.input.Placeholder = "Ask the growth consultant anything..."
				return m, nil
			}
			m.editing = true
			m.input.SetValue(m.persona)
			m.input.Placeholder = "Describe the consultant's persona..."
			return m, nil

		case "enter":
			if m.busy {
				return m, nil
			}
			if m.editing {
				persona := strings.TrimSpace(m.input.Value())
				if persona == "" {
					persona = defaultPersona
				}
				m.persona = persona
				m.chat = nil
				m.entries = nil
				m.editing = false
				m.input.SetValue("")
				m.input.Placeholder = "Ask the growth consultant anything..."
				m.refresh()
				logging.Session("Consultant persona updated (%d chars)", len(persona))
				return m, nil
			}
			message := strings.TrimSpace(m.input.Value())
			if message == "" {
				return m, nil
			}
			logging.Session("Consultant message (%d chars)", len(message))
			m.entries = append(m.entries, chatEntry{user: message})
			m.input.SetValue("")
			m.busy = true
			m.errMsg = ""
			m.refresh()
			return m, tea.Batch(m.spin.Tick, m.send(message))
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

// refresh re-renders the transcript into the viewport.
func (m *ChatPageModel) refresh() {
	var sb strings.Builder
	for _, e := range m.entries {
		if e.user != "" {
			sb.WriteString(m.styles.Subtitle.Render("You: ") + m.styles.Body.Render(e.user) + "\n")
			continue
		}
		sb.WriteString(m.renderMarkdown(e.text))
		sb.WriteString("\n")
	}
	if m.partial != "" {
		sb.WriteString(m.styles.Body.Render(m.partial) + "\n")
	}
	m.vp.SetContent(sb.String())
}

// renderMarkdown formats a completed reply. Falls back to the raw text
// when the renderer is unavailable.
func (m ChatPageModel) renderMarkdown(text string) string {
	width := m.vp.Width
	if width <= 0 {
		width = 78
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}

// View renders the page.
func (m ChatPageModel) View() string {
	var status string
	switch {
	case m.busy:
		status = m.spin.View() + m.styles.Muted.Render(" consulting...")
	case m.errMsg != "":
		status = m.styles.Error.Render("Error: " + m.errMsg)
	case m.editing:
		status = m.styles.Footer.Render("enter: save persona (starts a new chat) | ctrl+p: cancel")
	default:
		status = m.styles.Footer.Render("enter: send | ctrl+p: edit persona")
	}

	return strings.Join([]string{
		m.vp.View(),
		m.styles.Label.Render("> ") + m.input.View(),
		status,
	}, "\n")
}
