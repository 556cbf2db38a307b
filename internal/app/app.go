package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/foodbridge/cli/internal/api"
	"github.com/foodbridge/cli/internal/geo"
	"github.com/foodbridge/cli/internal/guard"
	"github.com/foodbridge/cli/internal/session"
	"github.com/foodbridge/cli/internal/store"
	appsync "github.com/foodbridge/cli/internal/sync"
	"github.com/foodbridge/cli/internal/ui"
	"github.com/foodbridge/cli/internal/ui/addfood"
	"github.com/foodbridge/cli/internal/ui/donor"
	helpview "github.com/foodbridge/cli/internal/ui/help"
	"github.com/foodbridge/cli/internal/ui/home"
	"github.com/foodbridge/cli/internal/ui/login"
	"github.com/foodbridge/cli/internal/ui/ngo"
	"github.com/foodbridge/cli/internal/ui/notifpanel"
	"github.com/foodbridge/cli/internal/ui/register"
	"github.com/foodbridge/cli/internal/ui/volunteer"
)

// Model is the root Bubble Tea model that manages routing between the
// public views and the role dashboards.
type Model struct {
	layout  ui.Layout
	session *session.Store
	foodAPI *api.FoodAPI
	keys    *KeyMap

	// route is the active destination; pending holds a destination
	// requested while the session was still loading, replayed once the
	// bootstrap settles. resume is where a successful login returns to.
	route   string
	pending string
	resume  string

	showNotifs bool
	showHelp   bool
	statusText string

	refresher *appsync.Refresher

	homeView      home.Model
	loginView     login.Model
	registerView  register.Model
	addFoodView   addfood.Model
	donorView     donor.Model
	ngoView       ngo.Model
	volunteerView volunteer.Model
	notifView     notifpanel.Model
	helpView      helpview.Model

	ready bool
}

// Deps bundles everything the root model needs.
type Deps struct {
	Session  *session.Store
	FoodAPI  *api.FoodAPI
	StatsAPI *api.StatsAPI
	Cache    store.Store
	Locator  geo.Provider
	RadiusKm int
}

// New creates the root application model.
func New(d Deps) Model {
	k := DefaultKeyMap()

	return Model{
		session:       d.Session,
		foodAPI:       d.FoodAPI,
		keys:          k,
		route:         guard.RouteHome,
		pending:       guard.RouteHome,
		homeView:      home.New(d.StatsAPI, 80, 24),
		loginView:     login.New(80, 24),
		registerView:  register.New(d.Locator, 80, 24),
		addFoodView:   addfood.New(80, 24),
		donorView:     donor.New(d.FoodAPI, d.Cache, k, 80, 24),
		ngoView:       ngo.New(d.FoodAPI, d.Cache, k, d.RadiusKm, 80, 24),
		volunteerView: volunteer.New(d.FoodAPI, k, 80, 24),
		notifView:     notifpanel.New(k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		refresher:     appsync.New(0),
	}
}

// Init starts the session bootstrap and the update subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.bootstrap(),
		m.waitForUpdate(),
		m.refresher.Start(),
		m.homeView.Init(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.homeView.SetSize(w, h)
		m.loginView.SetSize(w, h)
		m.registerView.SetSize(w, h)
		m.addFoodView.SetSize(w, h)
		m.donorView.SetSize(w, h)
		m.ngoView.SetSize(w, h)
		m.volunteerView.SetSize(w, h)
		m.notifView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case bootstrapDoneMsg:
		dest := m.pending
		if dest == "" {
			dest = m.route
		}
		if user := m.session.User(); user != nil && dest == guard.RouteHome {
			dest = guard.DashboardRoute(user.Role)
		}
		return m, m.navigate(dest)

	case sessionUpdateMsg:
		return m.handleSessionUpdate(msg.update)

	case appsync.TickMsg:
		return m, tea.Batch(m.refresher.WaitForTick(), m.refreshDashboard())

	case login.SubmitMsg:
		return m, m.login(msg.Credentials)

	case login.CancelMsg:
		m.resume = ""
		return m, m.navigate(guard.RouteHome)

	case loginResultMsg:
		if msg.err != nil {
			return m, m.loginView.SetError(msg.err)
		}
		m.statusText = ""
		return m, m.afterAuth()

	case register.SubmitMsg:
		return m, m.register(msg.Registration)

	case register.CancelMsg:
		return m, m.navigate(guard.RouteHome)

	case registerResultMsg:
		if msg.err != nil {
			return m, m.registerView.SetError(msg.err)
		}
		m.statusText = ""
		return m, m.afterAuth()

	case addfood.SubmitMsg:
		return m, m.postDonation(msg.Listing)

	case addfood.CancelMsg:
		return m, m.navigate(guard.RouteDonorDashboard)

	case donationPostedMsg:
		if msg.err != nil {
			return m, m.addFoodView.SetError(msg.err)
		}
		return m, m.navigate(guard.RouteDonorDashboard)

	case donor.NewDonationMsg:
		return m, m.navigate(guard.RouteAddFood)

	case notifpanel.MarkAllReadMsg:
		m.session.MarkAllNotificationsRead()
		m.notifView.SetNotifications(m.session.Notifications())
		return m, nil

	case notifpanel.CloseMsg:
		m.showNotifs = false
		return m, nil

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleSessionUpdate reacts to async session changes: new
// notifications refresh the panel and the active dashboard, an expired
// session drops the user back to login.
func (m Model) handleSessionUpdate(u session.Update) (tea.Model, tea.Cmd) {
	rearm := m.waitForUpdate()

	switch u {
	case session.UpdateExpired:
		m.resume = m.route
		m.statusText = "Session expired. Please log in again."
		return m, tea.Batch(rearm, m.navigate(guard.RouteLogin))

	case session.UpdateNotifications:
		m.notifView.SetNotifications(m.session.Notifications())
		return m, tea.Batch(rearm, m.refreshDashboard())
	}

	return m, rearm
}

// refreshDashboard reloads the active dashboard so pushed changes show
// up without a manual refresh.
func (m Model) refreshDashboard() tea.Cmd {
	switch m.route {
	case guard.RouteDonorDashboard:
		return m.donorView.LoadListings()
	case guard.RouteNGODashboard:
		return m.ngoView.LoadListings()
	case guard.RouteVolunteerDashboard:
		return m.volunteerView.LoadListings()
	}
	return nil
}

// handleGlobalKeys processes keys that apply regardless of the active
// view. Form routes keep full key ownership except for quit.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.refresher.Stop()
		m.session.Logout()
		return true, m, tea.Quit
	}

	onForm := m.route == guard.RouteLogin ||
		m.route == guard.RouteRegister ||
		m.route == guard.RouteAddFood
	if onForm {
		return false, m, nil
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return true, m, nil
	}

	if m.showNotifs {
		var cmd tea.Cmd
		m.notifView, cmd = m.notifView.Update(msg)
		return true, m, cmd
	}

	switch msg.String() {
	case "q":
		m.refresher.Stop()
		m.session.Logout()
		return true, m, tea.Quit

	case "?":
		m.showHelp = true
		return true, m, nil

	case "l":
		if m.route == guard.RouteHome {
			return true, m, m.navigate(guard.RouteLogin)
		}

	case "s":
		if m.route == guard.RouteHome {
			return true, m, m.navigate(guard.RouteRegister)
		}

	case "n":
		if m.session.User() != nil {
			m.showNotifs = true
			m.notifView.SetNotifications(m.session.Notifications())
			return true, m, nil
		}

	case "ctrl+l":
		if m.session.User() != nil {
			m.session.Logout()
			m.resume = ""
			m.statusText = ""
			return true, m, m.navigate(guard.RouteHome)
		}
	}

	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.route {
	case guard.RouteHome:
		m.homeView, cmd = m.homeView.Update(msg)
	case guard.RouteLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case guard.RouteRegister:
		m.registerView, cmd = m.registerView.Update(msg)
	case guard.RouteAddFood:
		m.addFoodView, cmd = m.addFoodView.Update(msg)
	case guard.RouteDonorDashboard:
		m.donorView, cmd = m.donorView.Update(msg)
	case guard.RouteNGODashboard:
		m.ngoView, cmd = m.ngoView.Update(msg)
	case guard.RouteVolunteerDashboard:
		m.volunteerView, cmd = m.volunteerView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.pending != "" {
		return m.layout.RenderWithFrame(
			m.layout.RenderHeader("FoodBridge", 0),
			"\n  Checking session...",
			m.layout.RenderStatusBar(""),
		)
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.session.UnreadCount())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) headerTitle() string {
	user := m.session.User()
	if user == nil {
		return "FoodBridge"
	}
	return "FoodBridge · " + user.FirstName() + " (" + string(user.Role) + ")"
}

// renderContent returns the rendered string for the current view.
func (m Model) renderContent() string {
	if m.showHelp {
		return m.helpView.View()
	}
	if m.showNotifs {
		return m.notifView.View()
	}

	switch m.route {
	case guard.RouteHome:
		return m.homeView.View()
	case guard.RouteLogin:
		return m.loginView.View()
	case guard.RouteRegister:
		return m.registerView.View()
	case guard.RouteAddFood:
		return m.addFoodView.View()
	case guard.RouteDonorDashboard:
		return m.donorView.View()
	case guard.RouteNGODashboard:
		return m.ngoView.View()
	case guard.RouteVolunteerDashboard:
		return m.volunteerView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusText != "" {
		return m.statusText
	}
	if m.showHelp {
		return "? close help"
	}
	if m.showNotifs {
		return "m mark all read | esc close"
	}

	switch m.route {
	case guard.RouteHome:
		return "l log in | s sign up | q quit"
	case guard.RouteLogin, guard.RouteRegister, guard.RouteAddFood:
		return "enter submit | esc cancel"
	case guard.RouteDonorDashboard:
		return "a add donation | x cancel | 1/2/3 filter | n notifications | r refresh | q quit"
	case guard.RouteNGODashboard:
		return "y accept | n notifications | r refresh | q quit"
	case guard.RouteVolunteerDashboard:
		return "tab switch | c claim | p picked up | d delivered | n notifications | q quit"
	default:
		return "q quit"
	}
}
