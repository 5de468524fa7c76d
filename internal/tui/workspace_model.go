// Package tui is the interactive workspace: it hosts the views, lists the
// cache contents and exposes the commands as key bindings.
package tui

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/jirafocus/internal/app"
	"github.com/rshade/jirafocus/internal/cache"
	"github.com/rshade/jirafocus/internal/duration"
	listview "github.com/rshade/jirafocus/internal/tui/list"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	minListHeight = 3
	// chromeHeight is the number of rows used by everything but the entry list.
	chromeHeight = 14
)

// NoticeMsg carries a user notice emitted by a command.
type NoticeMsg struct {
	Text string
}

// SettingsChangedMsg is sent when the settings file changed on disk and
// was reloaded.
type SettingsChangedMsg struct{}

type commandDoneMsg struct {
	id  string
	err error
}

type settingsSavedMsg struct {
	err error
}

type entryRow struct {
	cache string
	info  cache.Info
}

// rowRenderer is shared by every copy of the model so the list always
// renders with the current theme.
type rowRenderer struct {
	st  styles
	now func() time.Time
}

// darkModePref is the dark mode the user asked for last. It is shared by
// every copy of the model; saves hold the lock so the last request wins.
type darkModePref struct {
	mu   sync.Mutex
	want bool
}

// Model is the workspace model.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View.
type Model struct {
	ctx     context.Context
	app     *app.App
	notices <-chan string
	now     func() time.Time
	printer *message.Printer

	keys    keyMap
	help    help.Model
	views   table.Model
	entries *listview.Model[entryRow]
	rows    *rowRenderer

	search    textinput.Model
	searching bool

	dark     *darkModePref
	darkMode bool
	theme    Theme
	st       styles
	width  int
	height int

	notice string
	err    error
}

// Option configures a Model.
type Option func(*Model)

// WithNotices sets the channel the app notifier writes to.
func WithNotices(ch <-chan string) Option {
	return func(m *Model) { m.notices = ch }
}

// WithClock sets the clock used for relative times.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// New returns a workspace model for a loaded app.
func New(ctx context.Context, a *app.App, opts ...Option) Model {
	m := Model{
		ctx:     ctx,
		app:     a,
		now:     time.Now,
		printer: message.NewPrinter(language.English),
		keys:    defaultKeyMap(),
		help:    help.New(),
		search:  newSearchInput(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.views = table.New(
		table.WithColumns(viewColumns(m.width)),
		table.WithHeight(2),
		table.WithFocused(false),
	)
	m.rows = &rowRenderer{now: m.now}
	m.darkMode = m.storedDarkMode()
	m.dark = &darkModePref{want: m.darkMode}
	m.entries = listview.New[entryRow](nil, m.listHeight(), m.width, m.rows.render)
	m.refresh()
	return m
}

// Notifier returns an app.Notifier writing to ch without blocking.
func Notifier(ch chan<- string) app.Notifier {
	return func(msg string) {
		select {
		case ch <- msg:
		default:
		}
	}
}

func waitForNotice(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		text, ok := <-ch
		if !ok {
			return nil
		}
		return NoticeMsg{Text: text}
	}
}

// Init starts listening for notices.
func (m Model) Init() tea.Cmd {
	return waitForNotice(m.notices)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.views.SetColumns(viewColumns(m.width))
		m.entries.SetSize(m.width, m.listHeight())
		return m, nil

	case NoticeMsg:
		m.notice = msg.Text
		m.refresh()
		return m, waitForNotice(m.notices)

	case SettingsChangedMsg:
		m.darkMode = m.storedDarkMode()
		m.dark.mu.Lock()
		m.dark.want = m.darkMode
		m.dark.mu.Unlock()
		m.refresh()
		return m, nil

	case commandDoneMsg:
		m.err = msg.err
		m.refresh()
		return m, nil

	case searchDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.notice = m.printer.Sprintf("%q: %d of %d issues", msg.jql, len(msg.results.Issues), msg.results.Total)
		}
		m.refresh()
		return m, nil

	case settingsSavedMsg:
		m.err = msg.err
		if msg.err != nil {
			m.darkMode = m.storedDarkMode()
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Graph):
		return m, m.runCommand(app.CommandOpenGraphView)
	case key.Matches(msg, m.keys.Search):
		return m.openSearch()
	case key.Matches(msg, m.keys.Clear):
		return m, m.runCommand(app.CommandClearCache)
	case key.Matches(msg, m.keys.Dark):
		m.darkMode = !m.darkMode
		m.refresh()
		return m, m.saveDarkMode(m.darkMode)
	case key.Matches(msg, m.keys.Refresh):
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	m.entries.Update(msg)
	return m, nil
}

func (m Model) runCommand(id string) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return commandDoneMsg{id: id, err: a.RunCommand(ctx, id)}
	}
}

func (m Model) saveDarkMode(want bool) tea.Cmd {
	m.dark.mu.Lock()
	m.dark.want = want
	m.dark.mu.Unlock()

	store, ctx, pref := m.app.Store, m.ctx, m.dark
	return func() tea.Msg {
		pref.mu.Lock()
		defer pref.mu.Unlock()
		return settingsSavedMsg{err: store.SetDarkMode(ctx, pref.want)}
	}
}

func (m Model) storedDarkMode() bool {
	if m.app.Store == nil {
		return false
	}
	return m.app.Store.Snapshot().DarkMode
}

// refresh rebuilds the derived state from the app.
func (m *Model) refresh() {
	m.theme = ThemeFor(m.darkMode)
	m.st = newStyles(m.theme)
	m.rows.st = m.st

	if m.app.Workspace != nil {
		var rows []table.Row
		for _, kind := range m.app.Workspace.Kinds() {
			handles := m.app.Workspace.Instances(kind)
			title := string(kind)
			if len(handles) > 0 {
				if v, ok := m.app.Workspace.View(handles[0]); ok {
					title = v.DisplayText()
				}
			}
			rows = append(rows, table.Row{
				string(kind),
				title,
				m.app.Activator.State(kind).String(),
				strconv.Itoa(len(handles)),
			})
		}
		m.views.SetRows(rows)
		m.views.SetHeight(len(rows) + 1)
	}

	var rows []entryRow
	if m.app.Issues != nil {
		for _, info := range m.app.Issues.Entries() {
			rows = append(rows, entryRow{cache: "issue", info: info})
		}
	}
	if m.app.Searches != nil {
		for _, info := range m.app.Searches.Entries() {
			rows = append(rows, entryRow{cache: "search", info: info})
		}
	}
	m.entries.SetItems(rows)
}

func (m Model) listHeight() int {
	return max(m.height-chromeHeight, minListHeight)
}

func (r *rowRenderer) render(row entryRow, selected bool) string {
	var state string
	switch {
	case row.info.IsError:
		state = r.st.failed.Render("error")
	case row.info.Fresh:
		state = r.st.fresh.Render("fresh")
	default:
		state = r.st.stale.Render("stale")
	}

	prefix, keyStyle := "  ", r.st.value
	if selected {
		prefix, keyStyle = "> ", r.st.selected
	}
	return prefix +
		r.st.label.Render(row.cache+" ") +
		keyStyle.Render(row.info.Key) + " " +
		state + " " +
		r.st.muted.Render(humanize.RelTime(row.info.CreatedAt, r.now(), "ago", "from now"))
}

func viewColumns(width int) []table.Column {
	kindWidth, stateWidth, countWidth := 18, 8, 9
	titleWidth := max(width-kindWidth-stateWidth-countWidth-8, 10)
	return []table.Column{
		{Title: "Kind", Width: kindWidth},
		{Title: "Title", Width: titleWidth},
		{Title: "State", Width: stateWidth},
		{Title: "Instances", Width: countWidth},
	}
}

// View renders the workspace.
func (m Model) View() string {
	var b strings.Builder

	header := ""
	if m.app.Store != nil {
		header = m.app.Store.Snapshot().Host
		if ttl, err := m.app.Store.TTL(); err == nil {
			header += " ttl " + duration.Format(ttl)
		}
	}
	b.WriteString(m.st.title.Render("jirafocus"))
	b.WriteString(" ")
	b.WriteString(m.st.label.Render(header))
	b.WriteString("\n\n")

	b.WriteString(m.views.View())
	b.WriteString("\n\n")

	b.WriteString(m.st.title.Render("Cache"))
	b.WriteString(" ")
	b.WriteString(m.st.label.Render(m.cacheSummary()))
	b.WriteString("\n")
	if m.entries.Len() == 0 {
		b.WriteString(m.st.muted.Render("Cache is empty"))
	} else {
		b.WriteString(m.entries.View())
	}
	b.WriteString("\n")

	if m.app.Workspace != nil {
		if _, v, ok := m.app.Workspace.Focused(); ok {
			b.WriteString("\n")
			b.WriteString(m.st.box.Render(v.Render(max(m.width-6, 10))))
			b.WriteString("\n")
		}
	}

	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(m.st.notice.Render(m.notice))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(m.st.errText.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
}

func (m Model) cacheSummary() string {
	fresh := 0
	for _, row := range m.entries.Items() {
		if row.info.Fresh && !row.info.IsError {
			fresh++
		}
	}
	return m.printer.Sprintf("%d entries, %d fresh", m.entries.Len(), fresh)
}

// ActiveViews returns the number of live view instances.
func (m Model) ActiveViews() int {
	if m.app.Workspace == nil {
		return 0
	}
	return len(m.app.Workspace.Handles())
}

// Theme returns the current theme.
func (m Model) Theme() Theme {
	return m.theme
}
