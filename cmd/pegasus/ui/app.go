package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pegasusedge/internal/access"
	"pegasusedge/internal/config"
	"pegasusedge/internal/gemini"
	"pegasusedge/internal/logging"
	"pegasusedge/internal/payments"
	"pegasusedge/internal/studio"
)

// Deps carries the wired application services into the UI. Generation
// dependencies are nil when no API key is configured; the app then
// renders a configuration error and nothing else.
type Deps struct {
	Config     *config.Config
	Gatekeeper *access.Gatekeeper
	Gate       *payments.Gate
	Engine     *studio.Engine
	Gemini     *gemini.Client
	Audio      studio.AudioBackend
	Images     *gemini.ImageGenerator
}

// page identifies a top-level screen.
type page int

const (
	pageStudio page = iota
	pageChat
	pageTrends
	pageImage
	pagePlans
	pageCount
)

var pageNames = [pageCount]string{"Studio", "Consultant", "Trends", "Images", "Plans"}

// Model is the top-level bubbletea model.
type Model struct {
	deps   Deps
	styles Styles

	active page
	width  int
	height int

	studio StudioPageModel
	chat   ChatPageModel
	trends TrendsPageModel
	image  ImagePageModel
	plans  PlansPageModel
}

// NewModel builds the top-level model from wired dependencies.
func NewModel(deps Deps) Model {
	styles := NewStyles(ThemeFor(deps.Config.Theme))
	return Model{
		deps:   deps,
		styles: styles,
		studio: NewStudioPageModel(deps.Engine, deps.Gate, styles),
		chat:   NewChatPageModel(deps.Gemini, styles),
		trends: NewTrendsPageModel(deps.Gemini, styles),
		image:  NewImagePageModel(deps.Images, deps.Config, styles),
		plans:  NewPlansPageModel(deps.Gate, styles),
	}
}

// Run starts the interactive application.
func Run(deps Deps) error {
	m := NewModel(deps)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	logging.Session("UI started")
	return nil
}

// configured reports whether generation services are available.
func (m Model) configured() bool {
	return m.deps.Engine != nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		content := msg.Height - 4 // header, tabs, footer
		m.studio.SetSize(msg.Width, content)
		m.chat.SetSize(msg.Width, content)
		m.trends.SetSize(msg.Width, content)
		m.image.SetSize(msg.Width, content)
		m.plans.SetSize(msg.Width, content)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			logging.Session("UI quit")
			return m, tea.Quit
		case "tab":
			if m.configured() && !m.captureInput() {
				m.active = (m.active + 1) % pageCount
				return m, nil
			}
		case "shift+tab":
			if m.configured() && !m.captureInput() {
				m.active = (m.active + pageCount - 1) % pageCount
				return m, nil
			}
		}
	}

	if !m.configured() {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.active {
	case pageStudio:
		m.studio, cmd = m.studio.Update(msg)
	case pageChat:
		m.chat, cmd = m.chat.Update(msg)
	case pageTrends:
		m.trends, cmd = m.trends.Update(msg)
	case pageImage:
		m.image, cmd = m.image.Update(msg)
	case pagePlans:
		m.plans, cmd = m.plans.Update(msg)
	}
	return m, cmd
}

// captureInput reports whether the active page is in a mode where tab
// should be left alone (e.g. a busy generation or a modal).
func (m Model) captureInput() bool {
	return m.active == pageStudio && m.studio.Modal()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	if !m.configured() {
		return m.configErrorView()
	}

	header := m.styles.Header.Width(m.width).Render("Pegasus Edge")

	var tabs []string
	for i := page(0); i < pageCount; i++ {
		if i == m.active {
			tabs = append(tabs, m.styles.TabOn.Render(pageNames[i]))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(pageNames[i]))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var body string
	switch m.active {
	case pageStudio:
		body = m.studio.View()
	case pageChat:
		body = m.chat.View()
	case pageTrends:
		body = m.trends.View()
	case pageImage:
		body = m.image.View()
	case pagePlans:
		body = m.plans.View()
	}

	profile := m.deps.Gatekeeper.Profile()
	footer := m.styles.Footer.Render(fmt.Sprintf("tab: switch page | ctrl+c: quit | tier: %s", tierLabel(profile)))

	return strings.Join([]string{header, tabBar, body, footer}, "\n")
}

func (m Model) configErrorView() string {
	msg := m.styles.Error.Render("Configuration error") + "\n\n" +
		m.styles.Body.Render("No Gemini API key is configured.") + "\n" +
		m.styles.Muted.Render("Set GEMINI_API_KEY or add \"api_key\" to "+m.deps.Config.DataDir+"/config.json,\nthen restart pegasus.") + "\n\n" +
		m.styles.Footer.Render("ctrl+c: quit")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.styles.Overlay.Render(msg))
}

func tierLabel(p access.Profile) string {
	switch {
	case p.Subscribed():
		return string(p.Tier)
	case p.TrialAvailable():
		return "free trial available"
	default:
		return "trial used"
	}
}
