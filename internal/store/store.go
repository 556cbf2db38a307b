package store

import (
	"context"

	"github.com/foodbridge/cli/internal/model"
)

// ListingFilter controls filtering and ordering for cached-listing
// queries.
type ListingFilter struct {
	Status *model.ListingStatus
	Type   *model.FoodType
	Limit  int
}

// Store defines the local persistence interface: a cache of the last
// fetched listings so dashboards can render between refreshes, and the
// notification history that outlives the bounded live log.
type Store interface {
	// === Listing cache ===

	UpsertListings(ctx context.Context, listings []model.Listing) error
	GetListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error)
	GetListingByID(ctx context.Context, id string) (*model.Listing, error)
	DeleteListing(ctx context.Context, id string) error

	// === Notification history ===

	AppendNotification(ctx context.Context, n model.Notification) error
	GetNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) error
	ClearNotifications(ctx context.Context) error
}
