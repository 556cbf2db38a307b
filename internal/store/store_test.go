package store_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/store"
	"github.com/foodbridge/cli/tests/testutil"
)

func sampleListing(id string, status model.ListingStatus, updated time.Time) model.Listing {
	return model.Listing{
		ID:          id,
		Name:        "Veg Biryani",
		Description: "Leftover from event",
		Type:        model.TypeCooked,
		Category:    model.CategoryVeg,
		Status:      status,
		Quantity:    model.Quantity{Value: 5, Unit: "kg"},
		PreparedAt:  updated.Add(-2 * time.Hour),
		ExpiresAt:   updated.Add(4 * time.Hour),
		CreatedAt:   updated.Add(-time.Hour),
		UpdatedAt:   updated,
	}
}

func TestUpsertAndGetListings(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	listings := []model.Listing{
		sampleListing("l1", model.StatusAvailable, now.Add(-time.Minute)),
		sampleListing("l2", model.StatusAccepted, now),
	}
	if err := s.UpsertListings(ctx, listings); err != nil {
		t.Fatalf("upserting listings: %v", err)
	}

	got, err := s.GetListings(ctx, store.ListingFilter{})
	if err != nil {
		t.Fatalf("getting listings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d listings, want 2", len(got))
	}
	if got[0].ID != "l2" {
		t.Errorf("newest first ordering violated, first = %s", got[0].ID)
	}
	if got[0].Quantity.Value != 5 || got[0].Quantity.Unit != "kg" {
		t.Errorf("quantity did not round-trip: %+v", got[0].Quantity)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	l := sampleListing("l1", model.StatusAvailable, now)
	if err := s.UpsertListings(ctx, []model.Listing{l}); err != nil {
		t.Fatalf("upserting listing: %v", err)
	}

	l.Status = model.StatusAccepted
	if err := s.UpsertListings(ctx, []model.Listing{l}); err != nil {
		t.Fatalf("re-upserting listing: %v", err)
	}

	got, err := s.GetListingByID(ctx, "l1")
	if err != nil {
		t.Fatalf("getting listing: %v", err)
	}
	if got.Status != model.StatusAccepted {
		t.Errorf("status = %s, want %s", got.Status, model.StatusAccepted)
	}

	all, err := s.GetListings(ctx, store.ListingFilter{})
	if err != nil {
		t.Fatalf("getting listings: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("got %d listings after replace, want 1", len(all))
	}
}

func TestGetListingsFiltered(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	available := sampleListing("l1", model.StatusAvailable, now)
	accepted := sampleListing("l2", model.StatusAccepted, now)
	bakery := sampleListing("l3", model.StatusAvailable, now)
	bakery.Type = model.TypeBakery

	if err := s.UpsertListings(ctx, []model.Listing{available, accepted, bakery}); err != nil {
		t.Fatalf("upserting listings: %v", err)
	}

	status := model.StatusAvailable
	got, err := s.GetListings(ctx, store.ListingFilter{Status: &status})
	if err != nil {
		t.Fatalf("getting by status: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d available listings, want 2", len(got))
	}

	foodType := model.TypeBakery
	got, err = s.GetListings(ctx, store.ListingFilter{Status: &status, Type: &foodType})
	if err != nil {
		t.Fatalf("getting by status and type: %v", err)
	}
	if len(got) != 1 || got[0].ID != "l3" {
		t.Errorf("combined filter = %v", got)
	}

	got, err = s.GetListings(ctx, store.ListingFilter{Limit: 1})
	if err != nil {
		t.Fatalf("getting with limit: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d listings with limit 1", len(got))
	}
}

func TestDeleteListing(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	l := sampleListing("l1", model.StatusAvailable, time.Now().UTC())
	if err := s.UpsertListings(ctx, []model.Listing{l}); err != nil {
		t.Fatalf("upserting listing: %v", err)
	}
	if err := s.DeleteListing(ctx, "l1"); err != nil {
		t.Fatalf("deleting listing: %v", err)
	}

	if _, err := s.GetListingByID(ctx, "l1"); err == nil {
		t.Error("expected an error for a deleted listing")
	}
}

func TestNotificationHistory(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	events := []model.EventName{model.EventNewListing, model.EventListingAccepted, model.EventFoodDelivered}
	for i, ev := range events {
		n := model.Notification{
			Event:      ev,
			Payload:    json.RawMessage(`{"foodId":"l1"}`),
			ReceivedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.AppendNotification(ctx, n); err != nil {
			t.Fatalf("appending notification: %v", err)
		}
	}

	got, err := s.GetNotifications(ctx, 0)
	if err != nil {
		t.Fatalf("getting notifications: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d notifications, want 3", len(got))
	}
	if got[0].Event != model.EventFoodDelivered {
		t.Errorf("newest first ordering violated, first = %s", got[0].Event)
	}
	if got[0].Read {
		t.Error("fresh notification should be unread")
	}
	if got[0].ID == "" {
		t.Error("notification should be assigned an ID")
	}

	limited, err := s.GetNotifications(ctx, 2)
	if err != nil {
		t.Fatalf("getting limited notifications: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d notifications with limit 2", len(limited))
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		n := model.Notification{
			Event:      model.EventNewTask,
			ReceivedAt: time.Now().UTC(),
		}
		if err := s.AppendNotification(ctx, n); err != nil {
			t.Fatalf("appending notification: %v", err)
		}
	}

	if err := s.MarkAllNotificationsRead(ctx); err != nil {
		t.Fatalf("marking read: %v", err)
	}

	got, err := s.GetNotifications(ctx, 0)
	if err != nil {
		t.Fatalf("getting notifications: %v", err)
	}
	for _, n := range got {
		if !n.Read {
			t.Errorf("notification %s still unread", n.ID)
		}
	}
}

func TestClearNotifications(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	n := model.Notification{Event: model.EventReceiveMessage, ReceivedAt: time.Now().UTC()}
	if err := s.AppendNotification(ctx, n); err != nil {
		t.Fatalf("appending notification: %v", err)
	}
	if err := s.ClearNotifications(ctx); err != nil {
		t.Fatalf("clearing notifications: %v", err)
	}

	got, err := s.GetNotifications(ctx, 0)
	if err != nil {
		t.Fatalf("getting notifications: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d notifications after clear, want 0", len(got))
	}
}
