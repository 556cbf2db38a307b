package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/foodbridge/cli/internal/model"
)

// ListFilter narrows List queries by status and/or food type.
type ListFilter struct {
	Status model.ListingStatus
	Type   model.FoodType
}

func (f ListFilter) query() string {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListingPatch holds the fields a donor may edit on an existing
// listing. Nil fields are left unchanged.
type ListingPatch struct {
	Name          *string         `json:"name,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Quantity      *model.Quantity `json:"quantity,omitempty"`
	DeliveryNotes *string         `json:"deliveryNotes,omitempty"`
	ImageURL      *string         `json:"imageUrl,omitempty"`
}

// FoodAPI groups the listing CRUD and lifecycle endpoints. Every call
// is a single round trip; the server alone validates state transitions.
type FoodAPI struct {
	client *Client
}

// NewFoodAPI creates a FoodAPI backed by the given client.
func NewFoodAPI(c *Client) *FoodAPI {
	return &FoodAPI{client: c}
}

type listingsEnvelope struct {
	Listings []model.Listing `json:"listings"`
}

type listingEnvelope struct {
	Listing model.Listing `json:"listing"`
}

// Create posts a new donation listing.
func (f *FoodAPI) Create(ctx context.Context, listing model.Listing) (*model.Listing, error) {
	var resp listingEnvelope
	if err := f.client.Post(ctx, "/food", listing, &resp); err != nil {
		return nil, err
	}
	return &resp.Listing, nil
}

// List returns listings matching the filter. For donors the server
// scopes the result to their own listings.
func (f *FoodAPI) List(ctx context.Context, filter ListFilter) ([]model.Listing, error) {
	var resp listingsEnvelope
	if err := f.client.Get(ctx, "/food"+filter.query(), &resp); err != nil {
		return nil, err
	}
	return resp.Listings, nil
}

// GetNearby returns available listings within radiusKm of the given
// point (longitude first).
func (f *FoodAPI) GetNearby(ctx context.Context, lng, lat float64, radiusKm int) ([]model.Listing, error) {
	q := url.Values{}
	q.Set("longitude", fmt.Sprintf("%g", lng))
	q.Set("latitude", fmt.Sprintf("%g", lat))
	q.Set("radius", fmt.Sprintf("%d", radiusKm))

	var resp listingsEnvelope
	if err := f.client.Get(ctx, "/food/nearby?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Listings, nil
}

// Get returns a single listing by id.
func (f *FoodAPI) Get(ctx context.Context, id string) (*model.Listing, error) {
	var resp listingEnvelope
	if err := f.client.Get(ctx, "/food/"+id, &resp); err != nil {
		return nil, err
	}
	return &resp.Listing, nil
}

// Update edits a listing the caller owns.
func (f *FoodAPI) Update(ctx context.Context, id string, patch ListingPatch) (*model.Listing, error) {
	var resp listingEnvelope
	if err := f.client.Put(ctx, "/food/"+id, patch, &resp); err != nil {
		return nil, err
	}
	return &resp.Listing, nil
}

// Delete cancels a listing the caller owns.
func (f *FoodAPI) Delete(ctx context.Context, id string) error {
	return f.client.Delete(ctx, "/food/"+id)
}

// Accept claims an available listing for the calling NGO.
func (f *FoodAPI) Accept(ctx context.Context, id string) error {
	return f.client.Post(ctx, "/food/"+id+"/accept", nil, nil)
}

// AssignVolunteer assigns the calling volunteer to an accepted listing.
func (f *FoodAPI) AssignVolunteer(ctx context.Context, id string) error {
	return f.client.Post(ctx, "/food/"+id+"/assign", nil, nil)
}

// MarkPickedUp records that the assigned volunteer collected the food.
func (f *FoodAPI) MarkPickedUp(ctx context.Context, id string) error {
	return f.client.Post(ctx, "/food/"+id+"/pickup", nil, nil)
}

// MarkDelivered records that the food reached the accepting NGO.
func (f *FoodAPI) MarkDelivered(ctx context.Context, id string) error {
	return f.client.Post(ctx, "/food/"+id+"/deliver", nil, nil)
}

// VolunteerTasks returns the listings assigned to the calling volunteer.
func (f *FoodAPI) VolunteerTasks(ctx context.Context) ([]model.Listing, error) {
	var resp struct {
		Tasks []model.Listing `json:"tasks"`
	}
	if err := f.client.Get(ctx, "/food/volunteer/tasks", &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}
