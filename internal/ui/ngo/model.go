package ngo

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/foodbridge/cli/internal/api"
	"github.com/foodbridge/cli/internal/keys"
	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/store"
	"github.com/foodbridge/cli/internal/theme"
	"github.com/foodbridge/cli/internal/ui/listing"
)

// ListingsLoadedMsg is sent when the nearby available listings have
// been fetched.
type ListingsLoadedMsg struct {
	Listings []model.Listing
	Err      error
}

// ActionDoneMsg is sent when an accept has completed.
type ActionDoneMsg struct {
	Err error
}

// Model is the NGO dashboard: available donations near the NGO with the
// accept action.
type Model struct {
	list     list.Model
	foodAPI  *api.FoodAPI
	cache    store.Store
	keys     *keys.KeyMap
	user     *model.User
	radiusKm int
	errText  string
	width    int
	height   int
}

// New creates an NGO dashboard model. radiusKm bounds the nearby
// search when the NGO profile has coordinates.
func New(f *api.FoodAPI, cache store.Store, k *keys.KeyMap, radiusKm, width, height int) Model {
	l := list.New([]list.Item{}, listing.Delegate{}, width, height-2)
	l.Title = "Available Donations"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:     l,
		foodAPI:  f,
		cache:    cache,
		keys:     k,
		radiusKm: radiusKm,
		width:    width,
		height:   height,
	}
}

// SetUser sets the signed-in NGO account, used for the nearby search.
func (m *Model) SetUser(u *model.User) {
	m.user = u
}

// Init returns a command that loads the available listings.
func (m Model) Init() tea.Cmd {
	return m.LoadListings()
}

// Update handles messages for the NGO dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ListingsLoadedMsg:
		if msg.Err != nil {
			m.errText = api.UserMessage(msg.Err)
			return m, nil
		}
		m.errText = ""
		items := make([]list.Item, len(msg.Listings))
		for i, l := range msg.Listings {
			items[i] = listing.Item{Listing: l}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case ActionDoneMsg:
		if msg.Err != nil {
			m.errText = api.UserMessage(msg.Err)
			return m, nil
		}
		m.errText = ""
		return m, m.LoadListings()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m, m.LoadListings()

	case key.Matches(msg, m.keys.Accept), key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(listing.Item)
		if !ok {
			return m, nil
		}
		if !model.CanAct(item.Listing.Status, model.RoleNGO, model.ActionAccept) {
			return m, nil
		}
		return m, m.acceptListing(item.Listing.ID)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the NGO dashboard.
func (m Model) View() string {
	if m.errText != "" {
		bar := theme.ErrorStyle.Padding(0, 1).Render(m.errText)
		return lipgloss.JoinVertical(lipgloss.Left, bar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No donations available nearby.\n\nYou will be notified when one is posted.")
	}

	return m.list.View()
}

// LoadListings returns a tea.Cmd that fetches available donations. When
// the NGO profile carries coordinates the search is distance-bounded,
// otherwise it falls back to the unscoped available list.
func (m Model) LoadListings() tea.Cmd {
	f := m.foodAPI
	cache := m.cache
	user := m.user
	radius := m.radiusKm
	return func() tea.Msg {
		ctx := context.Background()

		var (
			listings []model.Listing
			err      error
		)
		if user != nil && user.Location.HasCoordinates() {
			lng := user.Location.Coordinates[0]
			lat := user.Location.Coordinates[1]
			listings, err = f.GetNearby(ctx, lng, lat, radius)
		} else {
			listings, err = f.List(ctx, api.ListFilter{Status: model.StatusAvailable})
		}
		if err != nil {
			return ListingsLoadedMsg{Err: err}
		}
		if cache != nil {
			_ = cache.UpsertListings(ctx, listings)
		}
		return ListingsLoadedMsg{Listings: listings}
	}
}

func (m Model) acceptListing(id string) tea.Cmd {
	f := m.foodAPI
	return func() tea.Msg {
		err := f.Accept(context.Background(), id)
		return ActionDoneMsg{Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
