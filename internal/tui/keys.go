package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

/* ----------------------------------------
	KEY MAPS
---------------------------------------- */

type menuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var menuKeys = menuKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "select")),
	Back:   key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

func (k menuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Quit}
}

func (k menuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Help}}
}

type tableKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	Parent    key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	Bigger    key.Binding
	Smaller   key.Binding
	NextSort  key.Binding
	Sort      key.Binding
	Reload    key.Binding
	Tables    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var tableKeys = tableKeyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:      key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("⏎", "open")),
	Parent:    key.NewBinding(key.WithKeys("backspace", "left", "h"), key.WithHelp("⌫", "up a level")),
	NextPage:  key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
	PrevPage:  key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
	FirstPage: key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
	LastPage:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
	Bigger:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more rows")),
	Smaller:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer rows")),
	NextSort:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "sort column")),
	Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Tables:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "tables")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

func (k tableKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Parent, k.NextPage, k.PrevPage, k.Help, k.Quit}
}

func (k tableKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Parent},
		{k.NextPage, k.PrevPage, k.FirstPage, k.LastPage},
		{k.Bigger, k.Smaller, k.NextSort, k.Sort},
		{k.Reload, k.Tables, k.Help, k.Quit},
	}
}
