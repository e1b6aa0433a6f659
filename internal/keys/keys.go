package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down     key.Binding
	Up       key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Filters
	Search       key.Binding
	CycleDue     key.Binding
	CycleStatus  key.Binding
	ClearFilters key.Binding

	// Sort
	CycleSort     key.Binding
	ToggleSortDir key.Binding

	// Actions
	New        key.Binding
	EditStatus key.Binding
	Confirm    key.Binding
	Refresh    key.Binding

	// Help toggle
	Help key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "right", "]"),
			key.WithHelp("l/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left", "["),
			key.WithHelp("h/←", "prev page"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search by name"),
		),
		CycleDue: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "due filter"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "status filter"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle sort"),
		),
		ToggleSortDir: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort direction"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new pdf"),
		),
		EditStatus: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit status"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.NextPage, k.PrevPage,
		k.New, k.EditStatus, k.Search, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage, k.Back, k.Quit},
		{k.Search, k.CycleDue, k.CycleStatus, k.ClearFilters},
		{k.CycleSort, k.ToggleSortDir, k.Refresh, k.Help},
		{k.New, k.EditStatus, k.Confirm},
	}
}
