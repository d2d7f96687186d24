package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pegasusedge/internal/access"
	"pegasusedge/internal/logging"
	"pegasusedge/internal/payments"
)

// purchaseDoneMsg reports a settled (or failed) purchase.
type purchaseDoneMsg struct {
	plan payments.PlanID
	err  error
}

// PlansPageModel shows the plan catalog and handles simulated purchases.
type PlansPageModel struct {
	gate   *payments.Gate
	styles Styles

	cursor int
	spin   spinner.Model
	busy   bool
	bought payments.PlanID
	errMsg string
	width  int
}

// NewPlansPageModel creates the plans page.
func NewPlansPageModel(gate *payments.Gate, styles Styles) PlansPageModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	return PlansPageModel{
		gate:   gate,
		styles: styles,
		spin:   sp,
	}
}

// SetSize updates the layout.
func (m *PlansPageModel) SetSize(w, h int) {
	m.width = w
}

func (m PlansPageModel) purchaseCmd(id payments.PlanID) tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		return purchaseDoneMsg{plan: id, err: gate.Purchase(context.Background(), id)}
	}
}

// Update handles messages.
func (m PlansPageModel) Update(msg tea.Msg) (PlansPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case purchaseDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.bought = msg.plan
		logging.Payments("Plan purchased: %s", msg.plan)
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		plans := m.gate.Plans()
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(plans)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(plans) {
				m.busy = true
				m.errMsg = ""
				return m, tea.Batch(m.spin.Tick, m.purchaseCmd(plans[m.cursor].ID))
			}
		}
	}
	return m, nil
}

// View renders the page.
func (m PlansPageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Pegasus Edge Plans") + "\n")
	sb.WriteString(m.styles.Muted.Render("Purchases here are simulated. Subscriptions unlock Audio Alchemy.") + "\n\n")

	var cards []string
	for i, plan := range m.gate.Plans() {
		var lines []string
		name := m.styles.Subtitle.Render(plan.Name)
		if plan.Highlight {
			name += m.styles.Warning.Render(" ★")
		}
		lines = append(lines, name)
		lines = append(lines, m.styles.Title.Render(plan.PriceLabel()))
		for _, f := range plan.Features {
			lines = append(lines, m.styles.Body.Render("• "+f))
		}
		if plan.Tier == access.TierNone {
			lines = append(lines, m.styles.Muted.Render("one generation, no subscription"))
		}
		if m.bought == plan.ID {
			lines = append(lines, m.styles.Success.Render("✓ active"))
		}
		if i == m.cursor {
			lines = append(lines, m.styles.Info.Render("[enter] "+plan.CTA))
		}

		card := m.styles.Card.Render(strings.Join(lines, "\n"))
		if i == m.cursor {
			card = m.styles.Card.BorderForeground(m.styles.Theme.Accent).Render(strings.Join(lines, "\n"))
		}
		cards = append(cards, card)
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))

	sb.WriteString("\n")
	switch {
	case m.busy:
		sb.WriteString(m.spin.View() + m.styles.Muted.Render(" processing payment..."))
	case m.errMsg != "":
		sb.WriteString(m.styles.Error.Render("Error: " + m.errMsg))
	default:
		sb.WriteString(m.styles.Footer.Render("up/down: select | enter: purchase"))
	}
	return sb.String()
}
