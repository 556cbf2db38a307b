package guard

import "github.com/foodbridge/cli/internal/model"

// Route constants shared between the guard and the view layer.
const (
	RouteHome               = "/"
	RouteLogin              = "/login"
	RouteRegister           = "/register"
	RouteAddFood            = "/food/add"
	RouteDonorDashboard     = "/dashboard/donor"
	RouteNGODashboard       = "/dashboard/ngo"
	RouteVolunteerDashboard = "/dashboard/volunteer"
)

// State is the session phase the guard decides against.
type State int

const (
	// Loading means the startup rehydration check is still in flight;
	// no access decision can be made yet.
	Loading State = iota

	// Unauthenticated means no identity is present.
	Unauthenticated

	// Authenticated means an identity with a role is present.
	Authenticated
)

// Decision is the guard's verdict for one requested destination.
type Decision struct {
	// Allow grants access to the requested destination.
	Allow bool

	// Placeholder asks the caller to render a loading placeholder and
	// retry once the session settles.
	Placeholder bool

	// Redirect is the destination to navigate to when access is
	// denied.
	Redirect string

	// Resume is the originally requested destination, retained so a
	// successful login can return there.
	Resume string
}

// DashboardRoute returns the given role's own dashboard destination.
func DashboardRoute(role model.Role) string {
	switch role {
	case model.RoleDonor:
		return RouteDonorDashboard
	case model.RoleNGO:
		return RouteNGODashboard
	case model.RoleVolunteer:
		return RouteVolunteerDashboard
	default:
		return RouteHome
	}
}

// Decide is a pure function of session state gating access to a
// destination. An empty allowed set admits any authenticated role.
func Decide(state State, role model.Role, allowed []model.Role, requested string) Decision {
	switch state {
	case Loading:
		return Decision{Placeholder: true}

	case Unauthenticated:
		return Decision{
			Redirect: RouteLogin,
			Resume:   requested,
		}

	default:
		if len(allowed) == 0 {
			return Decision{Allow: true}
		}
		for _, r := range allowed {
			if r == role {
				return Decision{Allow: true}
			}
		}
		// Wrong role: send the user to their own dashboard.
		return Decision{Redirect: DashboardRoute(role)}
	}
}
