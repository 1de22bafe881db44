// Package tui runs the research wizard as an interactive terminal program.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppiankov/trustboard/internal/model"
	"github.com/ppiankov/trustboard/internal/render"
	"github.com/ppiankov/trustboard/internal/wizard"
)

// field is a focusable control on the configure step
type field int

const (
	fieldTimeRange field = iota
	fieldClaims
	fieldTokens
	fieldJournals
	fieldNotes
	fieldSubmit
	fieldCount
)

// settledMsg reports that a verify or submit call returned
type settledMsg struct{ err error }

// Navigation records the route the wizard sent the user to
type Navigation struct {
	mu    sync.Mutex
	route string
}

// Navigate implements wizard.Navigator
func (n *Navigation) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.route = route
}

// Route returns the last route navigated to, or ""
func (n *Navigation) Route() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}

// Model is the bubbletea model of the research wizard
type Model struct {
	ctx    context.Context
	wiz    *wizard.Wizard
	styles render.Styles

	handle  textinput.Model
	claims  textinput.Model
	tokens  textinput.Model
	notes   textinput.Model
	spinner spinner.Model

	focus   field
	journal int
	busy    bool
	done    bool
}

// New builds the wizard model. wiz must have been created with a Navigator
// the caller can read after the program ends.
func New(ctx context.Context, wiz *wizard.Wizard, styles render.Styles) Model {
	handle := textinput.New()
	handle.Placeholder = "Enter influencer handle (e.g. hubermanlab)"
	handle.CharLimit = 64
	handle.Width = 48
	handle.Focus()

	claims := textinput.New()
	claims.CharLimit = 4
	claims.Width = 6

	tokens := textinput.New()
	tokens.CharLimit = 7
	tokens.Width = 8

	notes := textinput.New()
	notes.Placeholder = "Add any specific instructions or focus areas..."
	notes.CharLimit = 500
	notes.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Heading

	return Model{
		ctx:     ctx,
		wiz:     wiz,
		styles:  styles,
		handle:  handle,
		claims:  claims,
		tokens:  tokens,
		notes:   notes,
		spinner: sp,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			// abandons any request still in flight
			m.wiz.Reset()
			m.done = true
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		if m.wiz.Snapshot().Step.Verified() {
			return m.updateConfigure(msg)
		}
		return m.updateHandle(msg)

	case settledMsg:
		m.busy = false
		snap := m.wiz.Snapshot()
		switch snap.Step {
		case wizard.StepSubmitted:
			m.done = true
			return m, tea.Quit
		case wizard.StepConfiguring:
			m.syncDraft(snap.Draft)
			m.focusField(m.focus)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) updateHandle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		if !m.wiz.Snapshot().CanVerify {
			return m, nil
		}
		m.busy = true
		m.focus = fieldTimeRange
		return m, tea.Batch(m.spinner.Tick, m.run(m.wiz.Verify))
	}

	var cmd tea.Cmd
	m.handle, cmd = m.handle.Update(msg)
	_ = m.wiz.SetHandle(m.handle.Value())
	return m, cmd
}

func (m Model) updateConfigure(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		_ = m.wiz.Change()
		m.handle.SetValue("")
		m.handle.Focus()
		m.blurConfigure()
		return m, nil
	case "ctrl+s":
		return m.submit()
	case "tab", "down":
		if msg.String() == "down" && m.focus == fieldJournals && m.journal < len(model.Journals)-1 {
			m.journal++
			return m, nil
		}
		m.focusField((m.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab", "up":
		if msg.String() == "up" && m.focus == fieldJournals && m.journal > 0 {
			m.journal--
			return m, nil
		}
		m.focusField((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	}

	switch m.focus {
	case fieldTimeRange:
		m.cycleTimeRange(msg.String())
	case fieldClaims:
		var cmd tea.Cmd
		m.claims, cmd = m.claims.Update(msg)
		_ = m.wiz.SetClaimsCountInput(m.claims.Value())
		m.syncDraft(m.wiz.Snapshot().Draft)
		return m, cmd
	case fieldTokens:
		switch msg.String() {
		case "+", "right":
			_ = m.wiz.StepMaxTokens(1)
		case "-", "left":
			_ = m.wiz.StepMaxTokens(-1)
		default:
			var cmd tea.Cmd
			m.tokens, cmd = m.tokens.Update(msg)
			_ = m.wiz.SetMaxTokensInput(m.tokens.Value())
			m.syncDraft(m.wiz.Snapshot().Draft)
			return m, cmd
		}
		m.syncDraft(m.wiz.Snapshot().Draft)
	case fieldJournals:
		if msg.String() == " " || msg.Type == tea.KeyEnter {
			_ = m.wiz.ToggleJournal(model.Journals[m.journal])
		}
	case fieldNotes:
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		_ = m.wiz.SetNotes(m.notes.Value())
		return m, cmd
	case fieldSubmit:
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.wiz.Snapshot().CanSubmit {
		return m, nil
	}
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, m.run(m.wiz.Submit))
}

// run wraps a blocking wizard call as a command
func (m Model) run(call func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return settledMsg{err: call(ctx)}
	}
}

func (m *Model) cycleTimeRange(key string) {
	current := m.wiz.Snapshot().Draft.TimeRange
	i := slices.Index(model.TimeRanges, current)
	switch key {
	case "right", " ", "l":
		i = (i + 1) % len(model.TimeRanges)
	case "left", "h":
		i = (i + len(model.TimeRanges) - 1) % len(model.TimeRanges)
	default:
		return
	}
	_ = m.wiz.SetTimeRange(model.TimeRanges[i])
}

func (m *Model) syncDraft(d wizard.Draft) {
	m.claims.SetValue(strconv.Itoa(d.ClaimsCount))
	m.tokens.SetValue(strconv.Itoa(d.MaxTokens))
	if m.notes.Value() != d.Notes {
		m.notes.SetValue(d.Notes)
	}
}

func (m *Model) focusField(f field) {
	m.focus = f
	m.handle.Blur()
	m.blurConfigure()
	switch f {
	case fieldClaims:
		m.claims.Focus()
	case fieldTokens:
		m.tokens.Focus()
	case fieldNotes:
		m.notes.Focus()
	}
}

func (m *Model) blurConfigure() {
	m.claims.Blur()
	m.tokens.Blur()
	m.notes.Blur()
}

// Done reports whether the program ended
func (m Model) Done() bool {
	return m.done
}

// View implements tea.Model
func (m Model) View() string {
	snap := m.wiz.Snapshot()
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Research Tasks"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtle.Render("Verify an influencer, then configure what to check their claims against."))
	b.WriteString("\n\n")

	switch {
	case snap.Step == wizard.StepSubmitted:
		b.WriteString(m.styles.High.Render("✓ Research task created"))
		if snap.Task != nil && snap.Task.ID != "" {
			b.WriteString(" " + m.styles.Subtle.Render("("+snap.Task.ID+")"))
		}
		b.WriteString("\n")
		return b.String()
	case !snap.Step.Verified():
		m.viewHandle(&b, snap)
	default:
		m.viewConfigure(&b, snap)
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Subtle.Render(m.help(snap)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewHandle(b *strings.Builder, snap wizard.Snapshot) {
	b.WriteString(m.styles.Heading.Render("Influencer"))
	b.WriteString("\n")
	b.WriteString(m.handle.View())
	b.WriteString("\n")

	switch {
	case snap.Step == wizard.StepVerifying:
		b.WriteString(m.spinner.View() + " Verifying...\n")
	case snap.Failure != nil:
		b.WriteString(m.styles.Error.Render(snap.Failure.Message))
		b.WriteString("\n")
	}
}

func (m Model) viewConfigure(b *strings.Builder, snap wizard.Snapshot) {
	if snap.Identity != nil {
		b.WriteString(m.styles.Identity(*snap.Identity))
		b.WriteString("\n\n")
	}

	label := func(f field, text string) string {
		if m.focus == f {
			return m.styles.Heading.Render("› " + text)
		}
		return "  " + text
	}

	ranges := make([]string, len(model.TimeRanges))
	for i, r := range model.TimeRanges {
		if r == snap.Draft.TimeRange {
			ranges[i] = m.styles.High.Render("(" + r.Label() + ")")
			continue
		}
		ranges[i] = m.styles.Subtle.Render(" " + r.Label() + " ")
	}
	b.WriteString(label(fieldTimeRange, "Time Range  ") + strings.Join(ranges, " ") + "\n")
	b.WriteString(label(fieldClaims, "Claims to Analyze  ") + m.claims.View() + "\n")
	b.WriteString(label(fieldTokens, "Max Tokens  ") + m.tokens.View() + "\n")

	b.WriteString(label(fieldJournals, "Scientific Journals") + "\n")
	for i, j := range model.Journals {
		box := "[ ]"
		if snap.Draft.HasJournal(j) {
			box = "[x]"
		}
		line := fmt.Sprintf("    %s %s", box, j)
		if m.focus == fieldJournals && i == m.journal {
			line = m.styles.Heading.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(label(fieldNotes, "Notes  ") + m.notes.View() + "\n\n")

	button := "[ Start Research ]"
	switch {
	case snap.Step == wizard.StepSubmitting:
		button = m.spinner.View() + " Starting research..."
	case !snap.CanSubmit:
		button = m.styles.Subtle.Render(button + "  select at least one journal")
	case m.focus == fieldSubmit:
		button = m.styles.High.Render("› " + button)
	}
	b.WriteString(button + "\n")

	if snap.Failure != nil {
		b.WriteString(m.styles.Error.Render(snap.Failure.Message))
		b.WriteString("\n")
		if snap.Failure.Details != "" {
			b.WriteString(snap.Failure.Details + "\n")
		}
	}
}

func (m Model) help(snap wizard.Snapshot) string {
	if !snap.Step.Verified() {
		return "enter verify • esc quit"
	}
	return "tab/shift+tab move • ←/→ change • space toggle • ctrl+s start • ctrl+r change influencer • esc quit"
}

// Run starts the wizard on the terminal and returns the route it navigated
// to, or "" if the user quit first.
func Run(ctx context.Context, wiz *wizard.Wizard, nav *Navigation, styles render.Styles, opts ...tea.ProgramOption) (string, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, wiz, styles), opts...)
	if _, err := p.Run(); err != nil {
		return "", fmt.Errorf("run wizard: %w", err)
	}
	return nav.Route(), nil
}
