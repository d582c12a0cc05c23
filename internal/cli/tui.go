package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/beerxml/pkg/pipeline"
	"github.com/matzehuels/beerxml/pkg/recipe"
	"github.com/matzehuels/beerxml/pkg/render"
	"github.com/matzehuels/beerxml/pkg/units"
)

var (
	browseDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	browseCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// browseKeyMap lists the browser's key bindings. It implements help.KeyMap.
type browseKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	First key.Binding
	Last  key.Binding
	Units key.Binding
	Quit  key.Binding
}

var browseKeys = browseKeyMap{
	Next:  key.NewBinding(key.WithKeys("right", "l", "n", "tab"), key.WithHelp("→", "next")),
	Prev:  key.NewBinding(key.WithKeys("left", "h", "p", "shift+tab"), key.WithHelp("←", "prev")),
	First: key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
	Last:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
	Units: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "units")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Units, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Prev, k.Next, k.First, k.Last}, {k.Units, k.Quit}}
}

// =============================================================================
// RecipeBrowserModel - Interactive recipe viewer
// =============================================================================

// RecipeBrowserModel is the bubbletea model for `beerxml browse`. It steps
// through every recipe of a document and toggles the unit system.
type RecipeBrowserModel struct {
	Source  string
	Recipes []recipe.Recipe
	Cursor  int
	Units   units.System
	Cache   pipeline.CacheInfo

	help help.Model
}

// NewRecipeBrowserModel creates a browser over the recipes of res.
func NewRecipeBrowserModel(res *pipeline.Result, sys units.System) RecipeBrowserModel {
	return RecipeBrowserModel{
		Source:  res.Source.String(),
		Recipes: res.Recipes,
		Units:   sys,
		Cache:   res.CacheInfo,
		help:    help.New(),
	}
}

func (m RecipeBrowserModel) Init() tea.Cmd {
	return nil
}

func (m RecipeBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, browseKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, browseKeys.Units):
			m.Units = m.Units.Toggle()
		case key.Matches(msg, browseKeys.Next):
			if m.Cursor < len(m.Recipes)-1 {
				m.Cursor++
			}
		case key.Matches(msg, browseKeys.Prev):
			if m.Cursor > 0 {
				m.Cursor--
			}
		case key.Matches(msg, browseKeys.First):
			m.Cursor = 0
		case key.Matches(msg, browseKeys.Last):
			m.Cursor = max(len(m.Recipes)-1, 0)
		}
	}
	return m, nil
}

func (m RecipeBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(browseDimStyle.Render(m.Source))
	b.WriteString("\n")
	if len(m.Recipes) == 0 {
		b.WriteString("\nNo recipes.\n")
		return b.String()
	}

	var body strings.Builder
	_ = render.WriteText(&body, render.Project(m.Recipes[m.Cursor], m.Units))
	b.WriteString(body.String())

	b.WriteString("\n")
	b.WriteString(browseCursorStyle.Render(fmt.Sprintf("[%d/%d]", m.Cursor+1, len(m.Recipes))))
	b.WriteString(browseDimStyle.Render("  " + string(m.Units)))
	if m.Cache.Hit {
		b.WriteString(browseDimStyle.Render("  cached " + humanize.Time(m.Cache.StoredAt)))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(browseKeys))
	b.WriteString("\n")

	return b.String()
}
