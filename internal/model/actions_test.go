package model

import "testing"

func TestAllowedActions(t *testing.T) {
	tests := []struct {
		status ListingStatus
		role   Role
		want   []ListingAction
	}{
		{StatusAvailable, RoleDonor, []ListingAction{ActionCancel}},
		{StatusAvailable, RoleNGO, []ListingAction{ActionAccept}},
		{StatusAvailable, RoleVolunteer, nil},
		{StatusAccepted, RoleVolunteer, []ListingAction{ActionClaim, ActionMarkPickedUp}},
		{StatusAccepted, RoleDonor, nil},
		{StatusAccepted, RoleNGO, nil},
		{StatusPicked, RoleVolunteer, []ListingAction{ActionMarkDelivered}},
		{StatusPicked, RoleNGO, nil},
		{StatusDelivered, RoleDonor, nil},
		{StatusDelivered, RoleVolunteer, nil},
		{StatusExpired, RoleDonor, nil},
		{StatusCancelled, RoleNGO, nil},
	}

	for _, tt := range tests {
		got := AllowedActions(tt.status, tt.role)
		if len(got) != len(tt.want) {
			t.Errorf("AllowedActions(%s, %s) = %v, want %v", tt.status, tt.role, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("AllowedActions(%s, %s)[%d] = %v, want %v", tt.status, tt.role, i, got[i], tt.want[i])
			}
		}
	}
}

func TestCanAct(t *testing.T) {
	if !CanAct(StatusAvailable, RoleNGO, ActionAccept) {
		t.Error("ngo should accept an available listing")
	}
	if CanAct(StatusDelivered, RoleVolunteer, ActionMarkDelivered) {
		t.Error("delivered listing should offer no further actions")
	}
	if CanAct(StatusAvailable, RoleDonor, ActionAccept) {
		t.Error("donor should not accept their own listing")
	}
}
