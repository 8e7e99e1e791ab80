package editor

import (
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"quotacard/internal/config"
	"quotacard/internal/domain"
	"quotacard/internal/editor/services/search"
	"quotacard/internal/editor/services/selection"
	"quotacard/internal/editor/views"
	"quotacard/internal/eventbus"
)

// phase is the editor lifecycle state.
type phase int

const (
	phaseLoading phase = iota
	phaseReady
	phaseFailed
)

// focusArea identifies which control owns key input.
type focusArea int

const (
	focusAuthors focusArea = iota
	focusTags
	focusInterval
	focusBgColor
	focusTextColor
	focusAreaCount
)

const listHeight = 12

// listPane bundles the per-list services with the cursor position.
type listPane struct {
	title     string
	cursor    int
	selection *selection.Service
	search    *search.Service
}

// displayed returns the candidate list currently on display in this pane.
func (p *listPane) displayed() []domain.Candidate {
	return p.search.Displayed()
}

// clampCursor keeps the cursor inside the displayed list.
func (p *listPane) clampCursor() {
	if max := len(p.displayed()) - 1; p.cursor > max {
		p.cursor = max
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// Model represents the UI state
type Model struct {
	bus eventbus.EventBus
	cfg *config.Config

	phase phase
	focus focusArea

	width  int
	height int

	authors *listPane
	tags    *listPane

	editingQuery bool
	queryInput   textinput.Model

	intervalInput textinput.Model
	bgInput       textinput.Model
	fgInput       textinput.Model

	// Last committed field values; a field commit only saves when the value
	// actually changed.
	committedInterval string
	committedBg       string
	committedFg       string

	quote   *domain.Quote
	history []domain.Quote
	status  string

	renderer *views.Renderer

	// Program reference for terminal management around the pager
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(bus eventbus.EventBus, cfg *config.Config) *Model {
	queryInput := textinput.New()
	queryInput.Prompt = "search: "
	queryInput.CharLimit = 64

	intervalInput := textinput.New()
	intervalInput.Prompt = ""
	intervalInput.CharLimit = 5
	intervalInput.Width = 6

	bgInput := textinput.New()
	bgInput.Prompt = ""
	bgInput.CharLimit = 16
	bgInput.Width = 10

	fgInput := textinput.New()
	fgInput.Prompt = ""
	fgInput.CharLimit = 16
	fgInput.Width = 10

	return &Model{
		bus:   bus,
		cfg:   cfg,
		phase: phaseLoading,
		authors: &listPane{
			title:     "Authors",
			selection: selection.NewService(domain.SelectionAuthors, bus),
			search:    search.NewService(),
		},
		tags: &listPane{
			title:     "Tags",
			selection: selection.NewService(domain.SelectionTags, bus),
			search:    search.NewService(),
		},
		queryInput:    queryInput,
		intervalInput: intervalInput,
		bgInput:       bgInput,
		fgInput:       fgInput,
		renderer:      views.NewRenderer(),
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case pagerClosedMsg:
		if msg.err != nil {
			log.Printf("Quote history pager failed: %v", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleEvent applies a forwarded domain event to the UI state.
func (m *Model) handleEvent(event domain.DomainEvent) {
	switch e := event.(type) {
	case domain.LoadCompletedEvent:
		m.applyLoad(e)

	case domain.LoadFailedEvent:
		// Deliberately quiet: no form, no error banner, reason in the log.
		m.phase = phaseFailed

	case domain.SearchCompletedEvent:
		m.authors.search.SetResults(e.Results)
		m.authors.cursor = 0

	case domain.SearchFailedEvent:
		log.Printf("Search %q failed, keeping previous list: %v", e.Query, e.Err)

	case domain.ConfigSavedEvent:
		m.status = "configuration saved"

	case domain.SaveFailedEvent:
		log.Printf("Save failed, state unchanged: %v", e.Err)

	case domain.QuoteFetchedEvent:
		quote := e.Quote
		m.quote = &quote
		m.history = append(m.history, quote)
		if limit := m.cfg.UISettings.HistoryLimit; limit > 0 && len(m.history) > limit {
			m.history = m.history[len(m.history)-limit:]
		}

	case domain.ErrorEvent:
		log.Printf("%s: %v", e.Message, e.Err)
	}
}

// applyLoad installs the loaded candidate lists and the stored
// configuration, then renders the form.
func (m *Model) applyLoad(e domain.LoadCompletedEvent) {
	m.authors.search.SetOriginal(e.Authors)
	m.tags.search.SetOriginal(e.Tags)
	m.tags.search.SetMatcherFunction(search.ContainsMatcher)

	m.authors.selection.Replace(e.Stored.SelectedAuthors)
	m.tags.selection.Replace(e.Stored.SelectedTags)

	m.committedInterval = e.Stored.UpdateMinutes
	m.committedBg = e.Stored.Styles.BgColor
	m.committedFg = e.Stored.Styles.TextColor
	m.intervalInput.SetValue(m.committedInterval)
	m.bgInput.SetValue(m.committedBg)
	m.fgInput.SetValue(m.committedFg)

	m.phase = phaseReady
	m.status = "loaded"
}

// handleKey routes key input by editor state and focus.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.phase != phaseReady {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.editingQuery {
		return m.handleQueryKey(msg)
	}

	switch m.focus {
	case focusAuthors, focusTags:
		return m.handleListKey(msg)
	default:
		return m.handleFieldKey(msg)
	}
}

// handleQueryKey edits the search query for the focused list pane.
func (m *Model) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editingQuery = false
		m.queryInput.Blur()
		m.submitQuery(m.queryInput.Value())
		return m, nil
	case tea.KeyEsc:
		m.editingQuery = false
		m.queryInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

// submitQuery resolves a query for the focused pane: locally for tags,
// remotely for authors.
func (m *Model) submitQuery(query string) {
	pane := m.focusedPane()
	if pane == nil {
		return
	}

	if pane.search.StartSearch(query) {
		m.bus.Publish(eventbus.SearchRequestedEvent{Query: query})
	}
	pane.cursor = 0
}

// handleListKey drives the focused picklist pane.
func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pane := m.focusedPane()

	switch msg.Type {
	case tea.KeyTab:
		m.moveFocus(1)
		return m, nil
	case tea.KeyShiftTab:
		m.moveFocus(-1)
		return m, nil
	case tea.KeyUp:
		pane.cursor--
		pane.clampCursor()
		return m, nil
	case tea.KeyDown:
		pane.cursor++
		pane.clampCursor()
		return m, nil
	case tea.KeySpace, tea.KeyEnter:
		m.toggleAtCursor(pane)
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "k":
		pane.cursor--
		pane.clampCursor()
	case "j":
		pane.cursor++
		pane.clampCursor()
	case " ":
		m.toggleAtCursor(pane)
	case "/":
		m.editingQuery = true
		m.queryInput.SetValue(pane.search.Query())
		m.queryInput.Focus()
	case "v":
		return m, m.showHistoryCmd()
	}

	return m, nil
}

// toggleAtCursor toggles the candidate under the cursor and schedules the
// full-configuration save that follows every selection change.
func (m *Model) toggleAtCursor(pane *listPane) {
	items := pane.displayed()
	if pane.cursor < 0 || pane.cursor >= len(items) {
		return
	}
	if pane.selection.Toggle(items[pane.cursor]) {
		m.publishSave()
	}
}

// handleFieldKey drives the interval and color inputs.
func (m *Model) handleFieldKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		m.commitFocusedField()
		m.moveFocus(1)
		return m, nil
	case tea.KeyShiftTab:
		m.commitFocusedField()
		m.moveFocus(-1)
		return m, nil
	case tea.KeyEnter:
		m.commitFocusedField()
		return m, nil
	}

	input := m.focusedInput()
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return m, cmd
}

// commitFocusedField publishes a save when the focused field value changed.
func (m *Model) commitFocusedField() {
	var committed *string
	var value string

	switch m.focus {
	case focusInterval:
		committed, value = &m.committedInterval, m.intervalInput.Value()
	case focusBgColor:
		committed, value = &m.committedBg, m.bgInput.Value()
	case focusTextColor:
		committed, value = &m.committedFg, m.fgInput.Value()
	default:
		return
	}

	if *committed == value {
		return
	}
	*committed = value
	m.publishSave()
}

// publishSave snapshots the full configuration and requests a push. Every
// mutating interaction goes through here; there is no separate apply step.
func (m *Model) publishSave() {
	m.bus.Publish(eventbus.SaveRequestedEvent{Config: m.cardConfig()})
}

// cardConfig builds the current configuration snapshot.
func (m *Model) cardConfig() domain.CardConfig {
	return domain.CardConfig{
		EntityID:        m.cfg.EntityID,
		SelectedAuthors: m.authors.selection.Items(),
		SelectedTags:    m.tags.selection.Items(),
		UpdateMinutes:   m.committedInterval,
		Styles: domain.Styles{
			BgColor:   m.committedBg,
			TextColor: m.committedFg,
		},
	}
}

// moveFocus cycles focus across panes and fields.
func (m *Model) moveFocus(delta int) {
	m.blurFocusedInput()
	m.focus = focusArea((int(m.focus) + delta + int(focusAreaCount)) % int(focusAreaCount))
	if input := m.focusedInput(); input != nil {
		input.Focus()
	}
}

// focusedPane returns the focused list pane, if any.
func (m *Model) focusedPane() *listPane {
	switch m.focus {
	case focusAuthors:
		return m.authors
	case focusTags:
		return m.tags
	}
	return nil
}

// focusedInput returns the focused field input, if any.
func (m *Model) focusedInput() *textinput.Model {
	switch m.focus {
	case focusInterval:
		return &m.intervalInput
	case focusBgColor:
		return &m.bgInput
	case focusTextColor:
		return &m.fgInput
	}
	return nil
}

func (m *Model) blurFocusedInput() {
	if input := m.focusedInput(); input != nil {
		input.Blur()
	}
}

// showHistoryCmd opens the quote history in the pager.
func (m *Model) showHistoryCmd() tea.Cmd {
	history := make([]domain.Quote, len(m.history))
	copy(history, m.history)
	program := m.program

	return func() tea.Msg {
		ops := NewPagerOps(program)
		return pagerClosedMsg{err: ops.ShowQuoteHistory(RenderQuoteHistory(history))}
	}
}

// View renders the editor. Before a successful load there is no form at
// all; a failed load keeps it that way.
func (m *Model) View() string {
	title := m.renderer.RenderTitle(m.cfg.EntityID)
	help := m.renderer.RenderHelp("tab focus · space toggle · / search · v history · q quit")

	switch m.phase {
	case phaseLoading:
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			m.renderer.RenderStatus("connecting to quotable backend…"),
			help,
		)
	case phaseFailed:
		return lipgloss.JoinVertical(lipgloss.Left, title, help)
	}

	authorsPane := m.renderer.RenderCandidateList(
		m.authors.title, m.authors.displayed(), m.authors.cursor,
		m.authors.selection.IsSelected, m.focus == focusAuthors, listHeight)
	tagsPane := m.renderer.RenderCandidateList(
		m.tags.title, m.tags.displayed(), m.tags.cursor,
		m.tags.selection.IsSelected, m.focus == focusTags, listHeight)

	sections := []string{
		title,
		m.renderer.RenderChips("authors", m.authors.selection.Items()),
		m.renderer.RenderChips("tags", m.tags.selection.Items()),
		lipgloss.JoinHorizontal(lipgloss.Top, authorsPane, " ", tagsPane),
	}

	if m.editingQuery {
		sections = append(sections, m.queryInput.View())
	}

	sections = append(sections,
		m.renderer.RenderField("interval (min)", m.fieldView(focusInterval, &m.intervalInput), m.focus == focusInterval),
		fmt.Sprintf("%s %s",
			m.renderer.RenderField("background", m.fieldView(focusBgColor, &m.bgInput), m.focus == focusBgColor),
			m.renderer.RenderSwatch(m.bgInput.Value())),
		fmt.Sprintf("%s %s",
			m.renderer.RenderField("text color", m.fieldView(focusTextColor, &m.fgInput), m.focus == focusTextColor),
			m.renderer.RenderSwatch(m.fgInput.Value())),
	)

	if m.cfg.UISettings.ShowQuotePreview {
		sections = append(sections, m.renderer.RenderQuote(m.quote))
	}

	sections = append(sections, m.renderer.RenderStatus(m.status), help)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// fieldView shows the live input for the focused field and the plain value
// otherwise.
func (m *Model) fieldView(area focusArea, input *textinput.Model) string {
	if m.focus == area {
		return input.View()
	}
	return input.Value()
}
