package donor

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

// ListingsLoadedMsg is sent when the donor's listings have been fetched.
type ListingsLoadedMsg struct {
	Listings []model.Listing
	Err      error
}

// ActionDoneMsg is sent when a listing action has completed.
type ActionDoneMsg struct {
	Err error
}

// NewDonationMsg asks the application to open the donation form.
type NewDonationMsg struct{}

// Model is the donor dashboard: the donor's own listings with a status
// filter and the cancel action.
type Model struct {
	list    list.Model
	foodAPI *api.FoodAPI
	cache   store.Store
	keys    *keys.KeyMap
	status  model.ListingStatus
	errText string
	width   int
	height  int
}

// New creates a donor dashboard model.
func New(f *api.FoodAPI, cache store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, listing.Delegate{}, width, height-2)
	l.Title = "My Donations"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:    l,
		foodAPI: f,
		cache:   cache,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Init returns a command that loads the donor's listings.
func (m Model) Init() tea.Cmd {
	return m.LoadListings()
}

// Update handles messages for the donor dashboard.
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

	case key.Matches(msg, m.keys.NewDonation):
		return m, func() tea.Msg { return NewDonationMsg{} }

	case key.Matches(msg, m.keys.FilterAvailable):
		m.toggleStatus(model.StatusAvailable)
		return m, m.LoadListings()

	case key.Matches(msg, m.keys.FilterAccepted):
		m.toggleStatus(model.StatusAccepted)
		return m, m.LoadListings()

	case key.Matches(msg, m.keys.FilterPicked):
		m.toggleStatus(model.StatusPicked)
		return m, m.LoadListings()

	case key.Matches(msg, m.keys.Cancel):
		item, ok := m.list.SelectedItem().(listing.Item)
		if !ok {
			return m, nil
		}
		if !model.CanAct(item.Listing.Status, model.RoleDonor, model.ActionCancel) {
			return m, nil
		}
		return m, m.cancelListing(item.Listing.ID)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) toggleStatus(s model.ListingStatus) {
	if m.status == s {
		m.status = ""
	} else {
		m.status = s
	}
}

// View renders the donor dashboard.
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
			Render("No donations yet.\n\nPress a to post surplus food.")
	}

	return m.list.View()
}

// LoadListings returns a tea.Cmd that fetches the donor's listings and
// refreshes the local cache.
func (m Model) LoadListings() tea.Cmd {
	f := m.foodAPI
	cache := m.cache
	filter := api.ListFilter{Status: m.status}
	return func() tea.Msg {
		ctx := context.Background()
		listings, err := f.List(ctx, filter)
		if err != nil {
			if cache != nil {
				cached, cacheErr := cache.GetListings(ctx, cacheFilter(filter))
				if cacheErr == nil && len(cached) > 0 {
					return ListingsLoadedMsg{Listings: cached}
				}
			}
			return ListingsLoadedMsg{Err: err}
		}
		if cache != nil {
			_ = cache.UpsertListings(ctx, listings)
		}
		return ListingsLoadedMsg{Listings: listings}
	}
}

func (m Model) cancelListing(id string) tea.Cmd {
	f := m.foodAPI
	return func() tea.Msg {
		err := f.Delete(context.Background(), id)
		return ActionDoneMsg{Err: err}
	}
}

func cacheFilter(f api.ListFilter) store.ListingFilter {
	var out store.ListingFilter
	if f.Status != "" {
		s := f.Status
		out.Status = &s
	}
	if f.Type != "" {
		t := f.Type
		out.Type = &t
	}
	return out
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
