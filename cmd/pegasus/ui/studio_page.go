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

	"pegasusedge/internal/access"
	"pegasusedge/internal/logging"
	"pegasusedge/internal/payments"
	"pegasusedge/internal/studio"
)

const (
	inputNiche = iota
	inputTopic
	inputStyle
	inputCount
)

// stepDoneMsg reports a finished step action. It carries the session
// clone the action ran against; Update adopts it so the live session is
// only ever touched on the program goroutine.
type stepDoneMsg struct {
	session  *studio.Session
	decision access.Decision
	err      error
}

// paymentDoneMsg reports a settled (or failed) payment confirmation.
type paymentDoneMsg struct {
	err error
}

// StudioPageModel drives the Creator's Edge Studio wizard.
type StudioPageModel struct {
	engine  *studio.Engine
	gate    *payments.Gate
	session *studio.Session
	styles  Styles

	inputs  [inputCount]textinput.Model
	focus   int
	spin    spinner.Model
	vp      viewport.Model
	pending *studio.Session
	busy    bool
	settled bool
	errMsg  string
	width   int
	height  int
}

// NewStudioPageModel creates the studio page.
func NewStudioPageModel(engine *studio.Engine, gate *payments.Gate, styles Styles) StudioPageModel {
	var inputs [inputCount]textinput.Model
	labels := [inputCount]string{"e.g. weeknight cooking", "e.g. 15-minute pasta dishes", "e.g. fast-paced and funny"}
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = labels[i]
		ti.CharLimit = 120
		ti.Width = 48
		inputs[i] = ti
	}
	inputs[inputNiche].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	return StudioPageModel{
		engine:  engine,
		gate:    gate,
		session: studio.NewSession("", "", ""),
		styles:  styles,
		inputs:  inputs,
		spin:    sp,
		vp:      viewport.New(80, 20),
	}
}

// SetSize updates the layout.
func (m *StudioPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.vp.Width = w - 2
	m.vp.Height = h - 8
}

// Modal reports whether the page holds a modal interaction (paywall or
// a running generation).
func (m StudioPageModel) Modal() bool {
	return m.busy || (m.gate != nil && m.gate.IsOpen())
}

func (m *StudioPageModel) syncInputs() {
	m.session.Niche = strings.TrimSpace(m.inputs[inputNiche].Value())
	m.session.Topic = strings.TrimSpace(m.inputs[inputTopic].Value())
	m.session.Style = strings.TrimSpace(m.inputs[inputStyle].Value())
}

func (m StudioPageModel) runStepCmd() tea.Cmd {
	session := m.session.Clone()
	engine := m.engine
	return func() tea.Msg {
		decision, err := engine.RunStep(context.Background(), session)
		return stepDoneMsg{session: session, decision: decision, err: err}
	}
}

func (m StudioPageModel) confirmCmd() tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		return paymentDoneMsg{err: gate.Confirm(context.Background())}
	}
}

// Update handles messages.
func (m StudioPageModel) Update(msg tea.Msg) (StudioPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case stepDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		if msg.decision == access.DecisionPaymentRequired {
			// The parked action holds the clone; adopt it only once the
			// payment flow settles.
			m.pending = msg.session
			if err := m.gate.Open(payments.PlanPayPerUse); err != nil {
				m.errMsg = err.Error()
			}
			return m, nil
		}
		if msg.session != nil {
			m.session = msg.session
		}
		return m, nil

	case paymentDoneMsg:
		m.busy = false
		m.settled = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.errMsg = ""
			if m.pending != nil {
				m.session = m.pending
			}
		}
		m.pending = nil
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}

		// Paywall modal swallows all keys.
		if m.gate.IsOpen() {
			switch msg.String() {
			case "y", "enter":
				m.busy = true
				m.settled = true
				return m, tea.Batch(m.spin.Tick, m.confirmCmd())
			case "n", "esc":
				m.gate.Cancel()
				m.pending = nil
				logging.Session("Paywall dismissed")
			}
			return m, nil
		}

		switch msg.String() {
		case "enter":
			if m.session.AtEnd() {
				return m, nil
			}
			m.syncInputs()
			m.busy = true
			m.errMsg = ""
			return m, tea.Batch(m.spin.Tick, m.runStepCmd())
		case "b", "esc":
			if m.session.Current() != studio.StepVision && !m.typing() {
				m.session.Back()
			}
		case "n":
			if !m.typing() {
				if err := m.engine.StartNewPack(m.session); err != nil {
					m.errMsg = err.Error()
				}
				for i := range m.inputs {
					m.inputs[i].SetValue("")
				}
				m.focus = inputNiche
				m.inputs[inputNiche].Focus()
				return m, nil
			}
		case "up", "shift+tab":
			if m.typing() {
				m.moveFocus(-1)
				return m, nil
			}
		case "down":
			if m.typing() {
				m.moveFocus(1)
				return m, nil
			}
		}
	}

	if m.typing() {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// typing reports whether the creator input form is active.
func (m StudioPageModel) typing() bool {
	return m.session.Current() == studio.StepVision
}

func (m *StudioPageModel) moveFocus(delta int) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + inputCount) % inputCount
	m.inputs[m.focus].Focus()
}

// View renders the page.
func (m StudioPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.stepBar())
	sb.WriteString("\n\n")

	if m.gate.IsOpen() || m.settled {
		return sb.String() + m.paywallView()
	}

	switch m.session.Current() {
	case studio.StepVision:
		sb.WriteString(m.visionForm())
	case studio.StepPack:
		m.vp.SetContent(m.packView())
		sb.WriteString(m.vp.View())
	default:
		sb.WriteString(m.recapView())
	}

	sb.WriteString("\n")
	if m.busy {
		sb.WriteString(m.spin.View() + m.styles.Muted.Render(" generating..."))
	} else if m.errMsg != "" {
		sb.WriteString(m.styles.Error.Render("Error: "+m.errMsg) + m.styles.Muted.Render("  (enter to retry)"))
	} else {
		sb.WriteString(m.helpLine())
	}

	return sb.String()
}

func (m StudioPageModel) stepBar() string {
	ids := []studio.StepID{studio.StepVision, studio.StepSignature, studio.StepBlueprint, studio.StepAudioAlchemy, studio.StepPack}
	parts := make([]string, 0, len(ids))
	for i, id := range ids {
		name := studio.StepName(id)
		switch {
		case i < m.session.Index():
			parts = append(parts, m.styles.StepDone.Render("✓ "+name))
		case i == m.session.Index():
			parts = append(parts, m.styles.StepCurrent.Render("▸ "+name))
		default:
			parts = append(parts, m.styles.StepTodo.Render("  "+name))
		}
	}
	return strings.Join(parts, m.styles.Muted.Render("  │  "))
}

func (m StudioPageModel) visionForm() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Creator's Edge Studio") + "\n")
	sb.WriteString(m.styles.Muted.Render("Tell the studio about your channel. Niche is required.") + "\n\n")

	labels := [inputCount]string{"Channel niche *", "Video topic", "Content style"}
	for i, ti := range m.inputs {
		sb.WriteString(m.styles.Label.Render(fmt.Sprintf("%-16s", labels[i])))
		sb.WriteString(ti.View())
		sb.WriteString("\n")
	}
	return sb.String()
}

// recapView shows the latest outputs while the user is mid-wizard.
func (m StudioPageModel) recapView() string {
	var cards []string

	if v := m.session.Vision; v != nil {
		cards = append(cards, m.styles.Card.Render(
			m.styles.Subtitle.Render("The Vision")+"\n"+
				m.styles.Body.Render("Titles: "+strings.Join(v.Titles, " / "))+"\n"+
				m.styles.Body.Render("Angles: "+strings.Join(v.Angles, " / "))+"\n"+
				m.styles.Body.Render("Audience: "+v.AudiencePersona)))
	}
	if s := m.session.Signature; s != nil {
		var lines []string
		for _, p := range s.ColorPalettes {
			lines = append(lines, fmt.Sprintf("Palette %s: %s", p.Name, strings.Join(p.Colors, ", ")))
		}
		for _, f := range s.FontPairings {
			lines = append(lines, fmt.Sprintf("Fonts: %s & %s (%s)", f.Heading, f.Body, f.Vibe))
		}
		lines = append(lines, "Thumbnails: "+strings.Join(s.ThumbnailConcepts, " | "))
		cards = append(cards, m.styles.Card.Render(
			m.styles.Subtitle.Render("Visual Signature")+"\n"+m.styles.Body.Render(strings.Join(lines, "\n"))))
	}
	if b := m.session.Blueprint; b != nil {
		cards = append(cards, m.styles.Card.Render(
			m.styles.Subtitle.Render("Content Blueprint")+"\n"+
				m.styles.Body.Render("Points: "+strings.Join(b.TalkingPoints, " | "))+"\n"+
				m.styles.Body.Render("Hooks: "+strings.Join(b.IntroHooks, " | "))+"\n"+
				m.styles.Body.Render("CTAs: "+strings.Join(b.CTAPhrases, " | "))))
	}

	next := m.styles.Info.Render(fmt.Sprintf("Next: %s", studio.StepName(m.session.Current())))
	return strings.Join(append(cards, next), "\n")
}

// packView renders the complete creator's pack.
func (m StudioPageModel) packView() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Your Creator's Pack") + "\n\n")
	sb.WriteString(m.recapView() + "\n")

	if a := m.session.Audio; a != nil {
		var lines []string
		lines = append(lines, "Music styles: "+strings.Join(a.MusicStyleSuggestions, " | "))
		lines = append(lines, "Jingles: "+strings.Join(a.JingleIdeas, " | "))
		lines = append(lines, "SFX: "+strings.Join(a.SfxConcepts, " | "))
		lines = append(lines, "Voiceover tone: "+strings.Join(a.VoiceOverTone, " | "))

		for _, asset := range a.GeneratedMusic {
			lines = append(lines, m.assetLine("♫", asset.Description, asset.AudioURL, asset.Err))
		}
		for _, asset := range a.GeneratedJingles {
			lines = append(lines, m.assetLine("♪", asset.Description, asset.AudioURL, asset.Err))
		}
		for _, asset := range a.GeneratedSfx {
			lines = append(lines, m.assetLine("◊", asset.Description, asset.AudioURL, asset.Err))
		}
		for _, asset := range a.GeneratedVoiceovers {
			lines = append(lines, m.assetLine("🎙", asset.Description, asset.AudioURL, asset.Err))
		}

		sb.WriteString(m.styles.Card.Render(
			m.styles.Subtitle.Render("Audio Alchemy") + "\n" + m.styles.Body.Render(strings.Join(lines, "\n"))))
	}
	return sb.String()
}

func (m StudioPageModel) assetLine(icon, desc, url, errMsg string) string {
	if errMsg != "" {
		return m.styles.Error.Render(fmt.Sprintf("%s %s - failed: %s", icon, truncate(desc, 40), errMsg))
	}
	return fmt.Sprintf("%s %s - %s", icon, truncate(desc, 40), m.styles.Muted.Render(url))
}

func (m StudioPageModel) paywallView() string {
	plan, err := payments.FindPlan(m.gate.Plans(), payments.PlanPayPerUse)
	label := "$1/use"
	if err == nil {
		label = plan.PriceLabel()
	}

	var body string
	if m.busy {
		body = m.spin.View() + " processing payment..."
	} else {
		body = m.styles.Title.Render("Unlock your Creator's Pack") + "\n\n" +
			m.styles.Body.Render("Your free studio generation is used up.") + "\n" +
			m.styles.Body.Render("Single Use Pass: "+label) + "\n" +
			m.styles.Muted.Render("Subscriptions are on the Plans page.") + "\n\n" +
			m.styles.Success.Render("[y] pay & generate") + "   " + m.styles.Error.Render("[n] not now")
	}
	return lipgloss.Place(m.width, m.height-4, lipgloss.Center, lipgloss.Center,
		m.styles.Overlay.Render(body))
}

func (m StudioPageModel) helpLine() string {
	switch {
	case m.session.Current() == studio.StepVision:
		return m.styles.Footer.Render("up/down: field | enter: generate vision | n: new pack")
	case m.session.AtEnd():
		return m.styles.Footer.Render("n: start new pack | b: back")
	default:
		return m.styles.Footer.Render(fmt.Sprintf("enter: run %s | b: back | n: new pack", studio.StepName(m.session.Current())))
	}
}
