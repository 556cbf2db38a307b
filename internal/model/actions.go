package model

// ListingAction is an operation a user may perform on a listing. Each
// action maps to exactly one lifecycle endpoint on the listings API.
type ListingAction string

const (
	ActionCancel        ListingAction = "cancel"
	ActionAccept        ListingAction = "accept"
	ActionClaim         ListingAction = "claim"
	ActionMarkPickedUp  ListingAction = "pickup"
	ActionMarkDelivered ListingAction = "deliver"
)

// actionTable enumerates which actions each role may take at each
// listing status. The server re-validates every transition; this table
// only decides which buttons the dashboards offer.
var actionTable = map[ListingStatus]map[Role][]ListingAction{
	StatusAvailable: {
		RoleDonor: {ActionCancel},
		RoleNGO:   {ActionAccept},
	},
	StatusAccepted: {
		RoleVolunteer: {ActionClaim, ActionMarkPickedUp},
	},
	StatusPicked: {
		RoleVolunteer: {ActionMarkDelivered},
	},
}

// AllowedActions returns the actions role may take on a listing in the
// given status. The returned slice is shared; callers must not mutate it.
func AllowedActions(status ListingStatus, role Role) []ListingAction {
	byRole, ok := actionTable[status]
	if !ok {
		return nil
	}
	return byRole[role]
}

// CanAct reports whether role may perform action on a listing in the
// given status.
func CanAct(status ListingStatus, role Role, action ListingAction) bool {
	for _, a := range AllowedActions(status, role) {
		if a == action {
			return true
		}
	}
	return false
}
