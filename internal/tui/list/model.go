package listview

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders one row. selected is true for the highlighted row.
type RenderFunc[T any] func(item T, selected bool) string

// KeyMap holds the navigation bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
}

// DefaultKeyMap returns arrow and vim-style bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Home:     key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first")),
		End:      key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last")),
	}
}

// Model is a windowed list. The zero value is not usable; call New.
type Model[T any] struct {
	items  []T
	render RenderFunc[T]
	keys   KeyMap

	selected int
	from     int
	to       int
	height   int
	width    int
}

// New returns a list showing height rows.
func New[T any](items []T, height, width int, render RenderFunc[T]) *Model[T] {
	m := &Model[T]{
		items:  items,
		render: render,
		keys:   DefaultKeyMap(),
		height: max(height, 1),
		width:  width,
	}
	m.updateWindow()
	return m
}

// SetKeyMap replaces the navigation bindings.
func (m *Model[T]) SetKeyMap(k KeyMap) {
	m.keys = k
}

// SetItems replaces the items, keeping the selection index in range.
func (m *Model[T]) SetItems(items []T) {
	m.items = items
	m.SetSelected(m.selected)
}

// SetSize changes the window.
func (m *Model[T]) SetSize(width, height int) {
	m.width = width
	m.height = max(height, 1)
	m.updateWindow()
}

// Update handles navigation keys. Other messages are ignored.
func (m *Model[T]) Update(msg tea.Msg) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.items) == 0 {
		return
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		m.SetSelected(m.selected - 1)
	case key.Matches(keyMsg, m.keys.Down):
		m.SetSelected(m.selected + 1)
	case key.Matches(keyMsg, m.keys.PageUp):
		m.SetSelected(m.selected - m.height)
	case key.Matches(keyMsg, m.keys.PageDown):
		m.SetSelected(m.selected + m.height)
	case key.Matches(keyMsg, m.keys.Home):
		m.SetSelected(0)
	case key.Matches(keyMsg, m.keys.End):
		m.SetSelected(len(m.items) - 1)
	}
}

// updateWindow keeps the selection inside [from, to), centered when possible.
func (m *Model[T]) updateWindow() {
	if len(m.items) == 0 {
		m.from, m.to = 0, 0
		return
	}

	from := max(m.selected-m.height/2, 0)
	to := min(from+m.height, len(m.items))
	from = max(to-m.height, 0)

	m.from, m.to = from, to
}

// View renders the visible rows.
func (m *Model[T]) View() string {
	if len(m.items) == 0 {
		return ""
	}

	var b strings.Builder
	for i := m.from; i < m.to; i++ {
		if i > m.from {
			b.WriteByte('\n')
		}
		b.WriteString(m.render(m.items[i], i == m.selected))
	}
	return b.String()
}

// Items returns the items.
func (m *Model[T]) Items() []T {
	return m.items
}

// Len returns the number of items.
func (m *Model[T]) Len() int {
	return len(m.items)
}

// Selected returns the selected index.
func (m *Model[T]) Selected() int {
	return m.selected
}

// SetSelected moves the selection, clamped to the items.
func (m *Model[T]) SetSelected(index int) {
	switch {
	case len(m.items) == 0 || index < 0:
		m.selected = 0
	case index >= len(m.items):
		m.selected = len(m.items) - 1
	default:
		m.selected = index
	}
	m.updateWindow()
}

// Window returns the visible range [from, to).
func (m *Model[T]) Window() (from, to int) {
	return m.from, m.to
}

// SelectedItem returns the selected item, or nil when the list is empty.
func (m *Model[T]) SelectedItem() *T {
	if len(m.items) == 0 {
		return nil
	}
	return &m.items[m.selected]
}
