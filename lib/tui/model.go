// Package tui is the terminal front-end. The bubbletea event loop is the
// only goroutine that touches the form and its state; the network call runs
// in a command and comes back as an outcomeMsg.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/moviefinder/lib/presenter"
	"github.com/icco/moviefinder/lib/recommend"
	"github.com/icco/moviefinder/models"
)

type focus int

const (
	focusDescription focus = iota
	focusMovieType
	focusReleasePref
	focusSubmit
	focusResults
)

// outcomeMsg carries a finished request back into Update.
type outcomeMsg struct {
	outcome recommend.Outcome
}

// Model is the bubbletea model. It composes one form and the state it
// writes to.
type Model struct {
	ctx     context.Context
	form    *recommend.Form
	state   *recommend.State
	input   textinput.Model
	spinner spinner.Model

	focus    focus
	typeIdx  int
	prefIdx  int
	cursor   int
	expanded map[string]bool
	width    int
}

// New returns a model bound to form and state. ctx is passed to every
// request the model starts.
func New(ctx context.Context, form *recommend.Form, state *recommend.State) Model {
	ti := textinput.New()
	ti.Placeholder = "e.g., A sci-fi movie with time travel and a lot of philosophy..."
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	draft := form.Draft()
	ti.SetValue(draft.Description)

	return Model{
		ctx:      ctx,
		form:     form,
		state:    state,
		input:    ti,
		spinner:  sp,
		typeIdx:  indexOf(models.MovieTypes, draft.MovieType),
		prefIdx:  indexOf(models.ReleasePrefs, draft.ReleasePref),
		expanded: make(map[string]bool),
	}
}

func indexOf[T comparable](values []T, v T) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return 0
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 6; w > 10 && w < 60 {
			m.input.Width = w
		}
		return m, nil

	case outcomeMsg:
		if m.form.Finish(msg.outcome) {
			m.cursor = 0
			m.expanded = make(map[string]bool)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down":
		if m.focus == focusResults && msg.String() == "down" {
			m.moveCursor(1)
			return m, nil
		}
		m.setFocus(m.nextFocus(1))
		return m, nil
	case "shift+tab", "up":
		if m.focus == focusResults && msg.String() == "up" && m.cursor > 0 {
			m.moveCursor(-1)
			return m, nil
		}
		m.setFocus(m.nextFocus(-1))
		return m, nil
	}

	switch m.focus {
	case focusDescription:
		if msg.String() == "enter" {
			return m.submit()
		}
		return m.updateInput(msg)

	case focusMovieType:
		switch msg.String() {
		case "left", "h":
			m.typeIdx = wrap(m.typeIdx-1, len(models.MovieTypes))
		case "right", "l", " ":
			m.typeIdx = wrap(m.typeIdx+1, len(models.MovieTypes))
		case "enter":
			return m.submit()
		}
		_ = m.form.UpdateField(recommend.FieldMovieType, string(models.MovieTypes[m.typeIdx]))

	case focusReleasePref:
		switch msg.String() {
		case "left", "h":
			m.prefIdx = wrap(m.prefIdx-1, len(models.ReleasePrefs))
		case "right", "l", " ":
			m.prefIdx = wrap(m.prefIdx+1, len(models.ReleasePrefs))
		case "enter":
			return m.submit()
		}
		_ = m.form.UpdateField(recommend.FieldReleasePref, string(models.ReleasePrefs[m.prefIdx]))

	case focusSubmit:
		if msg.String() == "enter" || msg.String() == " " {
			return m.submit()
		}

	case focusResults:
		if msg.String() == "enter" || msg.String() == " " {
			m.toggleSelected()
		}
	}

	return m, nil
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	_ = m.form.UpdateField(recommend.FieldDescription, m.input.Value())
	return m, cmd
}

// submit starts a request. A rejected draft or an in-flight request leaves
// the model as it is; the form already holds any message to show.
func (m Model) submit() (tea.Model, tea.Cmd) {
	sub, err := m.form.Start()
	if err != nil {
		return m, nil
	}

	m.cursor = 0
	m.expanded = make(map[string]bool)
	if m.focus == focusResults {
		m.setFocus(focusSubmit)
	}

	ctx := m.ctx
	run := func() tea.Msg {
		return outcomeMsg{outcome: sub.Run(ctx)}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusDescription {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m Model) nextFocus(step int) focus {
	n := int(focusResults)
	if m.hasResults() {
		n++
	}
	return focus(wrap(int(m.focus)+step, n))
}

func (m Model) hasResults() bool {
	snap := m.state.Snapshot()
	return !snap.Loading() && len(snap.Movies) > 0
}

func (m *Model) moveCursor(step int) {
	n := len(m.state.Snapshot().Movies)
	if n == 0 {
		return
	}
	m.cursor = wrap(m.cursor+step, n)
}

func (m *Model) toggleSelected() {
	view := presenter.Render(m.state.Snapshot().Movies, false)
	if m.cursor >= len(view.Cards) {
		return
	}
	key := view.Cards[m.cursor].Key
	m.expanded[key] = !m.expanded[key]
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Smart Movie Finder"))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("🎥 Movie Recommender"))
	b.WriteString("\n")

	b.WriteString(m.formView())
	b.WriteString("\n")

	snap := m.state.Snapshot()
	view := presenter.Render(snap.Movies, snap.Loading())
	if results := renderResults(view, m.expanded, m.cursor, m.focus == focusResults); results != "" {
		b.WriteString("\n")
		b.WriteString(results)
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("tab: next field • ←/→: change option • enter: submit • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) formView() string {
	var b strings.Builder

	b.WriteString(m.label(focusDescription, "What are you in the mood for?"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	b.WriteString(m.label(focusMovieType, "Movie Type"))
	b.WriteString("\n")
	b.WriteString(radio(models.MovieTypes, m.typeIdx))
	b.WriteString("\n\n")

	b.WriteString(m.label(focusReleasePref, "Release Preference"))
	b.WriteString("\n")
	b.WriteString(radio(models.ReleasePrefs, m.prefIdx))
	b.WriteString("\n\n")

	b.WriteString(m.button())
	b.WriteString("\n")

	if msg := m.form.Error(); msg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) label(f focus, text string) string {
	if m.focus == f {
		return focusedStyle.Render("› " + text)
	}
	return labelStyle.Render("  " + text)
}

func (m Model) button() string {
	if !m.form.CanSubmit() {
		return disabledButtonStyle.Render(m.spinner.View() + " Generating...")
	}
	label := "Get Recommendations"
	if m.focus == focusSubmit {
		label = "› " + label
	}
	return buttonStyle.Render(label)
}

func radio[T ~string](options []T, selected int) string {
	parts := make([]string, len(options))
	for i, o := range options {
		mark := "( )"
		if i == selected {
			mark = "(•)"
		}
		parts[i] = fmt.Sprintf("%s %s", mark, o)
	}
	return "  " + strings.Join(parts, "   ")
}
