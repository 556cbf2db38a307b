package model

// Role identifies which side of the marketplace an account belongs to.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleNGO       Role = "ngo"
	RoleVolunteer Role = "volunteer"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleNGO, RoleVolunteer:
		return true
	}
	return false
}

// Location is a GeoJSON-style point with the human-readable address
// fields the server stores alongside it. Coordinates are ordered
// longitude first; [0, 0] means the position was never captured.
type Location struct {
	Coordinates [2]float64 `json:"coordinates"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	Pincode     string     `json:"pincode,omitempty"`
}

// HasCoordinates reports whether the location carries a real position.
func (l Location) HasCoordinates() bool {
	return l.Coordinates[0] != 0 || l.Coordinates[1] != 0
}

// User is the authenticated account profile as returned by the auth
// endpoints. It is owned by the session store and replaced wholesale
// on login, register, and bootstrap.
type User struct {
	// ID is the server-assigned account identifier.
	ID string `json:"_id"`

	// Name is the account holder's display name.
	Name string `json:"name"`

	// Email is the login email address.
	Email string `json:"email"`

	// Phone is an optional contact number.
	Phone string `json:"phone,omitempty"`

	// Role selects which dashboard and actions the account gets.
	Role Role `json:"role"`

	// Organization is the business or NGO name; empty for volunteers.
	Organization string `json:"organization,omitempty"`

	// Location is the account's registered position, used for
	// nearby-listing queries.
	Location Location `json:"location"`
}

// FirstName returns the leading word of the display name for greetings.
func (u *User) FirstName() string {
	if u == nil {
		return ""
	}
	for i, r := range u.Name {
		if r == ' ' {
			return u.Name[:i]
		}
	}
	return u.Name
}
