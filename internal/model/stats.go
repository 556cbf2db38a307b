package model

// PlatformStats holds the read-only aggregate counters shown on the
// landing view.
type PlatformStats struct {
	TotalMealsSaved int64 `json:"totalMealsSaved"`
	TotalDonations  int64 `json:"totalDonations"`
	TotalNGOs       int64 `json:"totalNGOs"`
	TotalVolunteers int64 `json:"totalVolunteers"`
}

// LeaderboardEntry is one row of the donor leaderboard.
type LeaderboardEntry struct {
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
	Donations    int64  `json:"donations"`
	MealsSaved   int64  `json:"mealsSaved"`
}
