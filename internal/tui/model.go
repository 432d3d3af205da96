package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"llamachat/internal/chat"
	"llamachat/internal/config"
	"llamachat/internal/engine"
	apierrors "llamachat/internal/errors"
	"llamachat/internal/render"
	"llamachat/internal/sysmon"
)

// Message types for the TUI
type (
	// engineEventMsg delivers one event from the in-flight request
	engineEventMsg struct {
		ev engine.Event
	}
	// streamClosedMsg is sent when the event channel closes
	streamClosedMsg struct{}
	// usageTickMsg delivers a fresh resource sample
	usageTickMsg struct {
		stats sysmon.Stats
	}
)

// Model represents the chat TUI state
type Model struct {
	session   *chat.Session
	modelName string
	styles    styles
	mdOpts    render.Options

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// In-flight request stream; nil while idle
	events <-chan engine.Event

	// Resource overlay
	sampler     *sysmon.Sampler
	usage       sysmon.Stats
	sampleEvery time.Duration
	showUsage   bool

	// State
	ready  bool
	notice string

	// Dimensions
	width  int
	height int
}

// NewChatModel creates the chat TUI model
func NewChatModel(eng engine.Engine, cfg config.Config, modelName string) Model {
	st := newStyles(render.ResolveTUITheme(cfg.TUITheme))

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(st.theme.Text)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(st.theme.TextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = st.loading

	return Model{
		session:     chat.NewSession(eng, cfg.SystemPrompt),
		modelName:   modelName,
		styles:      st,
		mdOpts:      render.FromMarkdownConfig(cfg.Markdown),
		textarea:    ta,
		spinner:     s,
		sampler:     sysmon.NewSampler(),
		sampleEvery: cfg.Resources.Interval(),
		showUsage:   cfg.Resources.Enabled,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		m.spinner.Tick,
	}
	if m.showUsage {
		cmds = append(cmds, tickUsage(m.sampler, m.sampleEvery))
	}
	return tea.Batch(cmds...)
}

// waitForEvent pumps the next event off the request stream. It re-arms
// itself from Update until a terminal event or channel close arrives.
func waitForEvent(events <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return engineEventMsg{ev: ev}
	}
}

// tickUsage samples process resource usage on a fixed cadence. Only one
// tick is ever outstanding, so the sampler sees sequential access.
func tickUsage(s *sysmon.Sampler, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return usageTickMsg{stats: s.Sample()}
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 2      // Extra spacing

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.textarea.SetWidth(contentWidth - 4)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
			m.textarea.SetWidth(contentWidth - 4)
		}
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.session.Cancel()
			return m, tea.Quit

		case "esc":
			// No mid-flight cancel; Esc only quits an idle session
			if !m.session.Generating() {
				m.session.Cancel()
				return m, tea.Quit
			}
			return m, nil

		case "ctrl+y":
			if text := m.session.LastAssistantText(); text != "" {
				if err := clipboard.WriteAll(text); err == nil {
					m.notice = "reply copied to clipboard"
				} else {
					m.notice = "clipboard unavailable"
				}
			}
			return m, nil

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				break
			}

			if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
				m.session.Cancel()
				return m, tea.Quit
			}

			if input == "/clear" {
				if !m.session.Generating() {
					m.session.Clear()
					m.textarea.Reset()
					m.notice = ""
					m.updateViewport()
				}
				return m, nil
			}

			events, ok := m.session.Send(m.textarea.Value())
			if !ok {
				break
			}
			m.events = events
			m.notice = ""
			m.textarea.Reset()
			m.updateViewport()
			m.viewport.GotoBottom()

			return m, tea.Batch(
				waitForEvent(events),
				m.spinner.Tick,
			)
		}

	case engineEventMsg:
		m.session.Apply(msg.ev)
		m.updateViewport()
		m.viewport.GotoBottom()
		if msg.ev.Terminal() {
			m.events = nil
		} else if m.events != nil {
			cmds = append(cmds, waitForEvent(m.events))
		}

	case streamClosedMsg:
		// A stream that closes before its terminal event is a failed
		// request from the transcript's point of view
		if m.session.Generating() {
			m.session.Apply(engine.ErrorEvent(errors.New("response stream closed unexpectedly")))
			m.updateViewport()
		}
		m.events = nil

	case usageTickMsg:
		m.usage = msg.stats
		if m.showUsage {
			cmds = append(cmds, tickUsage(m.sampler, m.sampleEvery))
		}

	case spinner.TickMsg:
		if m.session.Generating() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Only pass KeyMsg to the textarea to prevent escape sequence leaks
	if !m.session.Generating() {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return m.styles.loading.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	header := m.renderHeader(contentWidth)
	sections = append(sections, header)

	var messagesContent string
	if m.session.Len() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := m.styles.messagesArea.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	var inputContent string
	if m.session.Generating() {
		inputContent = m.spinner.View() + m.styles.loading.Render(" Generating...") +
			m.styles.hint.Render("  tokens stream into the reply above")
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.inputLabel.Render("You"),
			m.textarea.View(),
		)
	}
	inputPanel := m.styles.inputPanel.Width(contentWidth).Render(inputContent)
	sections = append(sections, inputPanel)

	sections = append(sections, m.renderStatusBar(contentWidth))

	if alert := m.session.Alert(); alert != "" {
		sections = append(sections, m.renderAlert(contentWidth, alert))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the top panel with the model name
func (m Model) renderHeader(width int) string {
	parts := []string{
		m.styles.title.Render("✦ Llama Chat"),
		m.styles.hint.Render("  •  "),
		m.styles.subtitle.Render(m.modelName),
	}
	content := lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	return m.styles.header.Width(width).Render(content)
}

// renderWelcome renders the empty-transcript screen
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := m.styles.welcomeIcon.Width(width).Align(lipgloss.Center).Render("✦")
	title := m.styles.welcomeTitle.Width(width).Align(lipgloss.Center).Render("Welcome to Llama Chat")
	subtitle := m.styles.welcomeText.Width(width).Align(lipgloss.Center).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		icon,
		"",
		title,
		"",
		subtitle,
		"",
	)

	contentHeight := lipgloss.Height(content)
	topPadding := (height - contentHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders shortcuts on the left and live telemetry on
// the right
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Quit"},
		{"Ctrl+Y", "Copy"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, m.styles.statusKey.Render(s.key)+m.styles.statusDesc.Render(" "+s.desc))
	}
	left := strings.Join(items, "  │  ")

	var right []string
	if m.notice != "" {
		right = append(right, m.styles.notice.Render(m.notice))
	}
	if stats, ok := m.session.Stats(); ok {
		right = append(right, m.styles.statsLine.Render(formatStats(stats)))
	}
	if m.showUsage {
		right = append(right, m.styles.usageLine.Render(formatUsage(m.usage)))
	}

	bar := left
	if len(right) > 0 {
		rightText := strings.Join(right, "  ")
		gap := width - lipgloss.Width(left) - lipgloss.Width(rightText)
		if gap < 2 {
			gap = 2
		}
		bar = left + strings.Repeat(" ", gap) + rightText
	}

	return m.styles.statusBar.Width(width).Render(bar)
}

// renderAlert renders the error panel below the status bar
func (m Model) renderAlert(width int, alert string) string {
	body := m.styles.alertText.Render("⚠ " + alert)
	if hint := errorHint(m.session.LastError()); hint != "" {
		body += "\n" + m.styles.alertHint.Render("Hint: "+hint)
	}
	return m.styles.alertPanel.Width(width).Render(body)
}

// formatStats renders the throughput summary of the last generation
func formatStats(s engine.Stats) string {
	line := fmt.Sprintf("⚡ %.1f tok/s", s.TokensPerSec)
	if s.PromptTokensPerSec > 0 {
		line += fmt.Sprintf(" · prompt %.1f tok/s", s.PromptTokensPerSec)
	}
	return fmt.Sprintf("%s · %d tokens", line, s.OutputTokens)
}

// formatUsage renders the process resource overlay
func formatUsage(u sysmon.Stats) string {
	return fmt.Sprintf("CPU %.1f%% · MEM %.1f%%", u.CPUPercent, u.MemPercent)
}

// errorHint maps a generation error to a one-line recovery suggestion
func errorHint(err error) string {
	switch {
	case err == nil:
		return ""
	case apierrors.IsModelNotFound(err):
		var me *apierrors.ModelError
		if errors.As(err, &me) && me.Name != "" {
			return "pull the model first: ollama pull " + me.Name
		}
		return "pull the model first with ollama pull"
	case apierrors.IsUnavailable(err):
		return "is the server running? try: ollama serve"
	case apierrors.IsTimeout(err):
		return "the request timed out, try again"
	default:
		return ""
	}
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	msgs := m.session.Messages()

	for i, msg := range msgs {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == chat.RoleUser {
			label := m.styles.userLabel.Render("⬤ You")
			bubble := m.styles.userBubble.Width(bubbleWidth).Render(msg.Text)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := m.styles.assistantLabel.Render("✦ " + m.modelName)
			content.WriteString(label + "\n")

			text := msg.Text
			if text == "" {
				// Placeholder of an in-flight or failed generation
				content.WriteString(m.styles.hint.Render("…"))
				content.WriteString("\n")
				continue
			}

			rendered, err := render.Markdown(text, m.mdOpts.WithWidth(bubbleWidth-4))
			if err != nil {
				rendered = text
			}
			content.WriteString(strings.TrimRight(rendered, "\n"))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI
func RunChat(eng engine.Engine, cfg config.Config, modelName string) error {
	m := NewChatModel(eng, cfg, modelName)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	// The program can quit with a generation still in flight
	m.session.Cancel()
	return err
}
