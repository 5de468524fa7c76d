package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/jirafocus/internal/app"
	"github.com/rshade/jirafocus/internal/jira"
)

const searchCharLimit = 512

type searchDoneMsg struct {
	jql     string
	results *jira.SearchResults
	err     error
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "project = PROJ AND status = Done"
	ti.Prompt = "JQL: "
	ti.CharLimit = searchCharLimit
	ti.ShowSuggestions = true
	return ti
}

// jqlSuggestions returns the completion words from the primed autocomplete data.
func jqlSuggestions(client *jira.Client) []string {
	if client == nil {
		return nil
	}
	data := client.AutocompleteData()
	if data == nil {
		return nil
	}
	out := make([]string, 0, len(data.VisibleFieldNames)+len(data.VisibleFunctionNames)+len(data.JQLReservedWords))
	for _, f := range data.VisibleFieldNames {
		out = append(out, f.Value)
	}
	for _, f := range data.VisibleFunctionNames {
		out = append(out, f.Value)
	}
	return append(out, data.JQLReservedWords...)
}

func (m Model) openSearch() (tea.Model, tea.Cmd) {
	m.searching = true
	m.search.SetSuggestions(jqlSuggestions(m.app.Client))
	m.search.Focus()
	return m, textinput.Blink
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		jql := m.search.Value()
		if jql == "" {
			return m, nil
		}
		return m, runSearch(m.ctx, m.app, jql)
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func runSearch(ctx context.Context, a *app.App, jql string) tea.Cmd {
	return func() tea.Msg {
		results, err := a.Search(ctx, jql, 0)
		return searchDoneMsg{jql: jql, results: results, err: err}
	}
}
