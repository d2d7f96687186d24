package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pegasusedge/internal/access"
	"pegasusedge/internal/audio"
	"pegasusedge/internal/config"
	"pegasusedge/internal/gemini"
	"pegasusedge/internal/payments"
	"pegasusedge/internal/studio"
)

type fixedText struct {
	response string
}

func (f fixedText) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	return f.response, nil
}

type silentAudio struct{}

func (silentAudio) GenerateMusic(ctx context.Context, prompt string, duration int) (*audio.MusicAsset, error) {
	return &audio.MusicAsset{Description: prompt, AudioURL: "http://localhost:8000/files/m.wav"}, nil
}

func (silentAudio) GenerateJingle(ctx context.Context, prompt string) (*audio.MusicAsset, error) {
	return &audio.MusicAsset{Description: prompt, AudioURL: "http://localhost:8000/files/j.wav"}, nil
}

func (silentAudio) GenerateSfx(ctx context.Context, prompt string) (*audio.SfxAsset, error) {
	return &audio.SfxAsset{Description: prompt, AudioURL: "http://localhost:8000/files/s.wav"}, nil
}

func (silentAudio) GenerateVoiceover(ctx context.Context, text, voiceStyle, emotion string) (*audio.VoiceoverAsset, error) {
	return &audio.VoiceoverAsset{Text: text}, nil
}

func testHarness(t *testing.T, response string) (*studio.Engine, *payments.Gate) {
	t.Helper()
	store, err := access.NewStore(filepath.Join(t.TempDir(), "profile.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	gk := access.NewGatekeeper(store)
	plans, err := payments.LoadPlans()
	if err != nil {
		t.Fatalf("LoadPlans: %v", err)
	}
	return studio.NewEngine(fixedText{response: response}, silentAudio{}, gk), payments.NewGate(gk, plans)
}

func typeRunes(t *testing.T, m StudioPageModel, s string) StudioPageModel {
	t.Helper()
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestStudioPageShowsVisionForm(t *testing.T) {
	engine, gate := testHarness(t, "{}")
	m := NewStudioPageModel(engine, gate, NewStyles(DarkTheme()))
	m.SetSize(100, 30)

	view := m.View()
	if !strings.Contains(view, "Creator's Edge Studio") {
		t.Errorf("expected studio title in view, got:\n%s", view)
	}
	if !strings.Contains(view, "Channel niche") {
		t.Errorf("expected niche input label in view")
	}
	if !strings.Contains(view, "The Vision") {
		t.Errorf("expected step bar in view")
	}
}

func TestStudioPageRunsVisionStep(t *testing.T) {
	visionJSON := `{"titles":["T1","T2","T3"],"angles":["A1"],"audiencePersona":"Busy parents"}`
	engine, gate := testHarness(t, visionJSON)
	m := NewStudioPageModel(engine, gate, NewStyles(DarkTheme()))
	m.SetSize(100, 30)

	m = typeRunes(t, m, "cooking")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command after enter")
	}
	if !m.Modal() {
		t.Error("expected page to be busy while generating")
	}

	m, _ = m.Update(m.runStepCmd()())

	if m.Modal() {
		t.Error("expected page to settle after step completion")
	}
	if m.session.Current() != studio.StepSignature {
		t.Errorf("expected session on Visual Signature, got %v", m.session.Current())
	}
	view := m.View()
	if !strings.Contains(view, "Busy parents") {
		t.Errorf("expected vision recap in view, got:\n%s", view)
	}
}

// The step command runs on its own goroutine while the program keeps
// rendering; the command must work on a session clone so View never
// observes a concurrent write.
func TestStudioPageRenderWhileStepRuns(t *testing.T) {
	visionJSON := `{"titles":["T1"],"angles":["A1"],"audiencePersona":"Busy parents"}`
	engine, gate := testHarness(t, visionJSON)
	m := NewStudioPageModel(engine, gate, NewStyles(DarkTheme()))
	m.SetSize(100, 30)

	m = typeRunes(t, m, "cooking")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	cmd := m.runStepCmd()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	for i := 0; i < 200; i++ {
		_ = m.View()
	}
	msg, ok := (<-done).(stepDoneMsg)
	if !ok {
		t.Fatal("expected a stepDoneMsg from the step command")
	}
	if msg.err != nil {
		t.Fatalf("RunStep: %v", msg.err)
	}
	if m.session.Current() != studio.StepVision {
		t.Error("expected the live session untouched until Update adopts the result")
	}

	m, _ = m.Update(msg)
	if m.session.Current() != studio.StepSignature {
		t.Errorf("expected session on Visual Signature after adoption, got %v", m.session.Current())
	}
	if m.session.Vision == nil || m.session.Vision.AudiencePersona != "Busy parents" {
		t.Error("expected adopted session to carry the vision output")
	}
}

func TestStudioPageEmptyNicheShowsError(t *testing.T) {
	engine, gate := testHarness(t, "{}")
	m := NewStudioPageModel(engine, gate, NewStyles(DarkTheme()))
	m.SetSize(100, 30)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := m.runStepCmd()().(stepDoneMsg)
	if !ok {
		t.Fatal("expected a stepDoneMsg from the step command")
	}
	m, _ = m.Update(msg)

	if msg.err == nil {
		t.Fatal("expected a precondition error for empty niche")
	}
	_ = engine
	if !strings.Contains(m.View(), "Error:") {
		t.Error("expected error line in view")
	}
	if m.session.Current() != studio.StepVision {
		t.Error("expected session to stay on The Vision")
	}
}

func TestStudioPagePaywallOpensAndCancels(t *testing.T) {
	engine, gate := testHarness(t, "{}")
	m := NewStudioPageModel(engine, gate, NewStyles(DarkTheme()))
	m.SetSize(100, 30)

	m, _ = m.Update(stepDoneMsg{session: m.session.Clone(), decision: access.DecisionPaymentRequired})
	if !gate.IsOpen() {
		t.Fatal("expected paywall to open on DecisionPaymentRequired")
	}
	if m.pending == nil {
		t.Error("expected parked session clone held until the payment settles")
	}
	if !m.Modal() {
		t.Error("expected Modal() while paywall is open")
	}
	if !strings.Contains(m.View(), "Unlock your Creator's Pack") {
		t.Errorf("expected paywall overlay in view")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if gate.IsOpen() {
		t.Error("expected paywall to close on n")
	}
	if m.Modal() {
		t.Error("expected Modal() to clear after cancel")
	}
	if m.pending != nil {
		t.Error("expected parked session clone discarded on cancel")
	}
}

func TestPlansPageCursorAndView(t *testing.T) {
	_, gate := testHarness(t, "{}")
	m := NewPlansPageModel(gate, NewStyles(LightTheme()))
	m.SetSize(120, 30)

	view := m.View()
	for _, name := range []string{"Pegasus Pro Monthly", "Pegasus Edge Lifetime", "Single Use Pass"} {
		if !strings.Contains(view, name) {
			t.Errorf("expected plan %q in view", name)
		}
	}

	if m.cursor != 0 {
		t.Fatalf("expected cursor at 0, got %d", m.cursor)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 2 {
		t.Errorf("expected cursor clamped at 2, got %d", m.cursor)
	}
}

func TestPlansPagePurchaseUpdatesTier(t *testing.T) {
	_, gate := testHarness(t, "{}")
	m := NewPlansPageModel(gate, NewStyles(DarkTheme()))

	m, _ = m.Update(purchaseDoneMsg{plan: payments.PlanMonthly})
	if m.bought != payments.PlanMonthly {
		t.Errorf("expected monthly plan marked active")
	}
	if !strings.Contains(m.View(), "active") {
		t.Error("expected active marker in view")
	}
}

func TestTrendsPageRendersSources(t *testing.T) {
	m := NewTrendsPageModel(nil, NewStyles(DarkTheme()))
	m.SetSize(100, 30)

	m, _ = m.Update(trendsDoneMsg{result: &gemini.Result{
		Text: "Short-form cooking content is peaking.",
		Sources: []gemini.Source{
			{URI: "https://example.com/report", Title: "Creator Report"},
		},
	}})

	view := m.View()
	if !strings.Contains(view, "peaking") {
		t.Errorf("expected answer text in view")
	}
	if !strings.Contains(view, "Creator Report") || !strings.Contains(view, "example.com") {
		t.Errorf("expected cited source in view, got:\n%s", view)
	}
}

func TestChatPageIgnoresEmptySend(t *testing.T) {
	m := NewChatPageModel(nil, NewStyles(DarkTheme()))
	m.SetSize(100, 30)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.busy {
		t.Error("expected no send on empty input")
	}
	_ = cmd
}

func TestChatPageRendersTranscript(t *testing.T) {
	m := NewChatPageModel(nil, NewStyles(DarkTheme()))
	m.SetSize(100, 30)

	m.entries = append(m.entries, chatEntry{user: "How do I grow on Shorts?"})
	m.partial = "Post daily and"
	m.refresh()

	view := m.View()
	if !strings.Contains(view, "How do I grow on Shorts?") {
		t.Errorf("expected user turn in transcript")
	}
	if !strings.Contains(view, "Post daily and") {
		t.Errorf("expected streamed partial in transcript")
	}
}

func TestChatPagePersonaEditResetsConversation(t *testing.T) {
	m := NewChatPageModel(nil, NewStyles(DarkTheme()))
	m.SetSize(100, 30)
	m.entries = append(m.entries, chatEntry{user: "old turn"})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	if !m.editing {
		t.Fatal("expected persona edit mode after ctrl+p")
	}
	if m.input.Value() != defaultPersona {
		t.Error("expected input prefilled with current persona")
	}

	m.input.SetValue("You are a pirate growth coach.")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Error("expected edit mode to end on enter")
	}
	if m.persona != "You are a pirate growth coach." {
		t.Errorf("persona = %q", m.persona)
	}
	if len(m.entries) != 0 {
		t.Error("expected transcript cleared on persona change")
	}
}

func TestAppShowsConfigErrorWithoutKey(t *testing.T) {
	store, err := access.NewStore(filepath.Join(t.TempDir(), "profile.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	deps := Deps{
		Config:     &config.Config{Theme: "dark", DataDir: t.TempDir()},
		Gatekeeper: access.NewGatekeeper(store),
	}
	m := NewModel(deps)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := updated.(Model).View()
	if !strings.Contains(view, "Configuration error") {
		t.Errorf("expected configuration error view, got:\n%s", view)
	}
	if !strings.Contains(view, "GEMINI_API_KEY") {
		t.Errorf("expected remediation hint in view")
	}
}

func TestTierLabel(t *testing.T) {
	cases := []struct {
		profile access.Profile
		want    string
	}{
		{access.Profile{Tier: access.TierMonthly}, "monthly"},
		{access.Profile{Tier: access.TierLifetime}, "lifetime"},
		{access.Profile{Tier: access.TierTrialAvailable}, "free trial available"},
		{access.Profile{Tier: access.TierTrialConsumed, TrialConsumed: true}, "trial used"},
	}
	for _, tc := range cases {
		if got := tierLabel(tc.profile); got != tc.want {
			t.Errorf("tierLabel(%+v) = %q, want %q", tc.profile, got, tc.want)
		}
	}
}

func TestThemeFor(t *testing.T) {
	if ThemeFor("light").IsDark {
		t.Error("light theme reported dark")
	}
	if !ThemeFor("dark").IsDark {
		t.Error("dark theme reported light")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefghij", 8); got != "abcde..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
