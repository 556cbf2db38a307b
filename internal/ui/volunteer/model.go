package volunteer

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/foodbridge/cli/internal/api"
	"github.com/foodbridge/cli/internal/keys"
	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/theme"
	"github.com/foodbridge/cli/internal/ui/listing"
)

// tab selects which listing set the dashboard shows.
type tab int

const (
	tabMyTasks tab = iota
	tabOpenTasks
)

// ListingsLoadedMsg is sent when a tab's listings have been fetched.
type ListingsLoadedMsg struct {
	Tab      tab
	Listings []model.Listing
	Err      error
}

// ActionDoneMsg is sent when a delivery action has completed.
type ActionDoneMsg struct {
	Err error
}

// Model is the volunteer dashboard: the volunteer's own delivery tasks
// and the open accepted donations still needing a volunteer.
type Model struct {
	list    list.Model
	foodAPI *api.FoodAPI
	keys    *keys.KeyMap
	active  tab
	errText string
	width   int
	height  int
}

// New creates a volunteer dashboard model.
func New(f *api.FoodAPI, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, listing.Delegate{}, width, height-2)
	l.Title = "My Deliveries"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:    l,
		foodAPI: f,
		keys:    k,
		active:  tabMyTasks,
		width:   width,
		height:  height,
	}
}

// Init returns a command that loads the active tab.
func (m Model) Init() tea.Cmd {
	return m.LoadListings()
}

// Update handles messages for the volunteer dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ListingsLoadedMsg:
		if msg.Tab != m.active {
			return m, nil
		}
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

	case key.Matches(msg, m.keys.CycleTab):
		if m.active == tabMyTasks {
			m.active = tabOpenTasks
			m.list.Title = "Open Tasks"
		} else {
			m.active = tabMyTasks
			m.list.Title = "My Deliveries"
		}
		return m, m.LoadListings()

	case key.Matches(msg, m.keys.Claim):
		item, ok := m.selected()
		if !ok || m.active != tabOpenTasks {
			return m, nil
		}
		if !model.CanAct(item.Status, model.RoleVolunteer, model.ActionClaim) {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) error {
			return m.foodAPI.AssignVolunteer(ctx, item.ID)
		})

	case key.Matches(msg, m.keys.Pickup):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		if !model.CanAct(item.Status, model.RoleVolunteer, model.ActionMarkPickedUp) {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) error {
			return m.foodAPI.MarkPickedUp(ctx, item.ID)
		})

	case key.Matches(msg, m.keys.Deliver):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		if !model.CanAct(item.Status, model.RoleVolunteer, model.ActionMarkDelivered) {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) error {
			return m.foodAPI.MarkDelivered(ctx, item.ID)
		})
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) selected() (model.Listing, bool) {
	item, ok := m.list.SelectedItem().(listing.Item)
	if !ok {
		return model.Listing{}, false
	}
	return item.Listing, true
}

func (m Model) run(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return ActionDoneMsg{Err: fn(context.Background())}
	}
}

// View renders the volunteer dashboard.
func (m Model) View() string {
	tabs := m.renderTabs()

	if m.errText != "" {
		bar := theme.ErrorStyle.Padding(0, 1).Render(m.errText)
		return lipgloss.JoinVertical(lipgloss.Left, tabs, bar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		empty := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height - 1).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(m.emptyText())
		return lipgloss.JoinVertical(lipgloss.Left, tabs, empty)
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabs, m.list.View())
}

func (m Model) renderTabs() string {
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Padding(0, 1)

	mine := inactiveStyle.Render("My Deliveries")
	open := inactiveStyle.Render("Open Tasks")
	if m.active == tabMyTasks {
		mine = activeStyle.Render("My Deliveries")
	} else {
		open = activeStyle.Render("Open Tasks")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, mine, open,
		theme.HelpStyle.Render("  tab to switch"))
}

func (m Model) emptyText() string {
	if m.active == tabMyTasks {
		return "No deliveries assigned.\n\nPress tab to browse open tasks."
	}
	return "No open tasks right now.\n\nYou will be notified when one appears."
}

// LoadListings returns a tea.Cmd that fetches the active tab's listings.
func (m Model) LoadListings() tea.Cmd {
	f := m.foodAPI
	active := m.active
	return func() tea.Msg {
		ctx := context.Background()

		var (
			listings []model.Listing
			err      error
		)
		if active == tabMyTasks {
			listings, err = f.VolunteerTasks(ctx)
		} else {
			listings, err = f.List(ctx, api.ListFilter{Status: model.StatusAccepted})
		}
		if err != nil {
			return ListingsLoadedMsg{Tab: active, Err: err}
		}

		if active == tabOpenTasks {
			open := listings[:0]
			for _, l := range listings {
				if l.AssignedVolunteer == nil {
					open = append(open, l)
				}
			}
			listings = open
		}
		return ListingsLoadedMsg{Tab: active, Listings: listings}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
}
