package model

import "time"

// ListingStatus is the lifecycle state of a donation listing. The
// server is the sole arbiter of transitions; the client only renders
// the current status and offers the actions valid for it.
type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusAccepted  ListingStatus = "accepted"
	StatusPicked    ListingStatus = "picked"
	StatusDelivered ListingStatus = "delivered"
	StatusExpired   ListingStatus = "expired"
	StatusCancelled ListingStatus = "cancelled"
)

// FoodType categorizes the kind of food being donated.
type FoodType string

const (
	TypeCooked    FoodType = "cooked"
	TypeRaw       FoodType = "raw"
	TypePackaged  FoodType = "packaged"
	TypeBeverages FoodType = "beverages"
	TypeBakery    FoodType = "bakery"
	TypeDairy     FoodType = "dairy"
	TypeOther     FoodType = "other"
)

// FoodTypes lists all types in display order for filter tabs and forms.
var FoodTypes = []FoodType{
	TypeCooked, TypeRaw, TypePackaged, TypeBeverages, TypeBakery, TypeDairy, TypeOther,
}

// Dietary category constants.
const (
	CategoryVeg    = "veg"
	CategoryNonVeg = "nonveg"
)

// Quantity is the amount of food in a listing.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// UserRef is the embedded summary of a related account on a listing
// (donor, accepting NGO, or assigned volunteer).
type UserRef struct {
	ID           string   `json:"_id"`
	Name         string   `json:"name"`
	Organization string   `json:"organization,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Location     Location `json:"location,omitempty"`
}

// Listing is a single food donation as returned by the listings API.
type Listing struct {
	// ID is the server-assigned listing identifier.
	ID string `json:"_id"`

	// Name is the short label for the food (e.g. "Biryani, Bread").
	Name string `json:"name"`

	// Description is free-form detail text.
	Description string `json:"description,omitempty"`

	// Type is the food type (use the Type* constants).
	Type FoodType `json:"type"`

	// Category is "veg" or "nonveg".
	Category string `json:"category"`

	// Quantity is how much food is offered.
	Quantity Quantity `json:"quantity"`

	// PreparedAt is when the food was prepared.
	PreparedAt time.Time `json:"preparedAt"`

	// ExpiresAt is when the food stops being safe to distribute.
	ExpiresAt time.Time `json:"expiresAt"`

	// ImageURL optionally links a photo of the donation.
	ImageURL string `json:"imageUrl,omitempty"`

	// DeliveryNotes carries pickup instructions for the volunteer.
	DeliveryNotes string `json:"deliveryNotes,omitempty"`

	// Location is where the food must be picked up.
	Location Location `json:"location"`

	// Status is the current lifecycle state.
	Status ListingStatus `json:"status"`

	// Donor is the account that posted the listing.
	Donor *UserRef `json:"donor,omitempty"`

	// AcceptedBy is the NGO that accepted the donation, if any.
	AcceptedBy *UserRef `json:"acceptedBy,omitempty"`

	// AssignedVolunteer is the volunteer delivering it, if any.
	AssignedVolunteer *UserRef `json:"assignedVolunteer,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExpiresIn returns the remaining time before the listing expires,
// clamped at zero.
func (l *Listing) ExpiresIn(now time.Time) time.Duration {
	d := l.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
