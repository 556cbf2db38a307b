package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/foodbridge/cli/internal/guard"
	"github.com/foodbridge/cli/internal/model"
)

// routeRoles maps each protected destination to the roles admitted to
// it. Routes absent from the map are public.
var routeRoles = map[string][]model.Role{
	guard.RouteAddFood:            {model.RoleDonor},
	guard.RouteDonorDashboard:     {model.RoleDonor},
	guard.RouteNGODashboard:       {model.RoleNGO},
	guard.RouteVolunteerDashboard: {model.RoleVolunteer},
}

// sessionState derives the guard state from the session store.
func (m *Model) sessionState() (guard.State, model.Role) {
	if m.session.Loading() {
		return guard.Loading, ""
	}
	user := m.session.User()
	if user == nil {
		return guard.Unauthenticated, ""
	}
	return guard.Authenticated, user.Role
}

// navigate runs the guard for the requested destination and switches
// the active view accordingly. Denied requests follow the redirect,
// remembering where to resume after login.
func (m *Model) navigate(requested string) tea.Cmd {
	state, role := m.sessionState()
	d := guard.Decide(state, role, routeRoles[requested], requested)

	if d.Placeholder {
		m.pending = requested
		return nil
	}
	m.pending = ""

	if !d.Allow {
		if d.Resume != "" && d.Redirect == guard.RouteLogin {
			m.resume = d.Resume
		}
		return m.enter(d.Redirect)
	}
	return m.enter(requested)
}

// enter activates the view for an already-permitted destination.
func (m *Model) enter(route string) tea.Cmd {
	m.route = route
	m.showNotifs = false
	m.showHelp = false

	switch route {
	case guard.RouteHome:
		return m.homeView.Init()
	case guard.RouteLogin:
		return m.loginView.Start()
	case guard.RouteRegister:
		return m.registerView.Start()
	case guard.RouteAddFood:
		return m.addFoodView.Start()
	case guard.RouteDonorDashboard:
		return m.donorView.Init()
	case guard.RouteNGODashboard:
		m.ngoView.SetUser(m.session.User())
		return m.ngoView.Init()
	case guard.RouteVolunteerDashboard:
		return m.volunteerView.Init()
	default:
		m.route = guard.RouteHome
		return m.homeView.Init()
	}
}

// afterAuth picks the destination after a successful login or
// registration: the remembered route when one is pending, otherwise the
// role's own dashboard.
func (m *Model) afterAuth() tea.Cmd {
	user := m.session.User()
	if user == nil {
		return m.navigate(guard.RouteHome)
	}

	dest := guard.DashboardRoute(user.Role)
	if m.resume != "" {
		dest = m.resume
		m.resume = ""
	}
	return m.navigate(dest)
}
