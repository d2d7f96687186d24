package ui

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pegasusedge/internal/config"
	"pegasusedge/internal/gemini"
	"pegasusedge/internal/logging"
)

// imageDoneMsg carries the outcome of an image generation.
type imageDoneMsg struct {
	path string
	err  error
}

// ImagePageModel generates thumbnail and branding images.
type ImagePageModel struct {
	images *gemini.ImageGenerator
	cfg    *config.Config
	styles Styles

	input  textinput.Model
	spin   spinner.Model
	busy   bool
	saved  []string
	errMsg string
}

// NewImagePageModel creates the image page.
func NewImagePageModel(images *gemini.ImageGenerator, cfg *config.Config, styles Styles) ImagePageModel {
	ti := textinput.New()
	ti.Placeholder = "Describe a thumbnail or channel art..."
	ti.CharLimit = 400
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	return ImagePageModel{
		images: images,
		cfg:    cfg,
		styles: styles,
		input:  ti,
		spin:   sp,
	}
}

// SetSize updates the layout.
func (m *ImagePageModel) SetSize(w, h int) {
	m.input.Width = w - 6
}

func (m ImagePageModel) generateCmd(prompt string) tea.Cmd {
	images := m.images
	dataDir := m.cfg.DataDir
	return func() tea.Msg {
		dataURI, err := images.Generate(context.Background(), prompt)
		if err != nil {
			return imageDoneMsg{err: err}
		}
		path, err := writeDataURI(dataDir, dataURI)
		return imageDoneMsg{path: path, err: err}
	}
}

// writeDataURI decodes a jpeg data URI into the images directory.
func writeDataURI(dataDir, dataURI string) (string, error) {
	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(dataURI, prefix) {
		return "", fmt.Errorf("unexpected image format")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, prefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	dir := filepath.Join(dataDir, "images")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("pegasus_%d.jpg", time.Now().UnixNano()))
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

// Update handles messages.
func (m ImagePageModel) Update(msg tea.Msg) (ImagePageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case imageDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.saved = append(m.saved, msg.path)
		logging.Studio("Image saved to %s", msg.path)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "enter" && !m.busy {
			prompt := strings.TrimSpace(m.input.Value())
			if prompt == "" {
				return m, nil
			}
			m.busy = true
			m.errMsg = ""
			return m, tea.Batch(m.spin.Tick, m.generateCmd(prompt))
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the page.
func (m ImagePageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Image Studio") + "\n")
	sb.WriteString(m.styles.Muted.Render("16:9 images rendered with "+m.cfg.ImageModel) + "\n\n")
	sb.WriteString(m.styles.Label.Render("> ") + m.input.View() + "\n\n")

	for _, path := range m.saved {
		sb.WriteString(m.styles.Success.Render("✓ ") + m.styles.Body.Render(path) + "\n")
	}

	sb.WriteString("\n")
	switch {
	case m.busy:
		sb.WriteString(m.spin.View() + m.styles.Muted.Render(" rendering..."))
	case m.errMsg != "":
		sb.WriteString(m.styles.Error.Render("Error: " + m.errMsg))
	default:
		sb.WriteString(m.styles.Footer.Render("enter: generate"))
	}
	return sb.String()
}
