package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Status filters
	FilterAvailable key.Binding
	FilterAccepted  key.Binding
	FilterPicked    key.Binding

	// Notifications panel
	Notifications key.Binding
	MarkRead      key.Binding

	// Listing actions
	NewDonation key.Binding
	Accept      key.Binding
	Claim       key.Binding
	Pickup      key.Binding
	Deliver     key.Binding
	Cancel      key.Binding

	// Tab cycle on split views
	CycleTab key.Binding

	// Session
	Logout key.Binding
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
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		FilterAvailable: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "available"),
		),
		FilterAccepted: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "accepted"),
		),
		FilterPicked: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "picked up"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "notifications"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark all read"),
		),
		NewDonation: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add donation"),
		),
		Accept: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "accept"),
		),
		Claim: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "claim task"),
		),
		Pickup: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "mark picked up"),
		),
		Deliver: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "mark delivered"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel listing"),
		),
		CycleTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch tab"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "log out"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Notifications,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Help, k.Refresh, k.Notifications, k.MarkRead, k.CycleTab},
		{k.FilterAvailable, k.FilterAccepted, k.FilterPicked},
		{k.NewDonation, k.Accept, k.Claim, k.Pickup, k.Deliver, k.Cancel, k.Logout},
	}
}
