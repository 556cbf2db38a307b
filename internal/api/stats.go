package api

import (
	"context"

	"github.com/foodbridge/cli/internal/model"
)

// StatsAPI groups the read-only aggregate counter endpoints.
type StatsAPI struct {
	client *Client
}

// NewStatsAPI creates a StatsAPI backed by the given client.
func NewStatsAPI(c *Client) *StatsAPI {
	return &StatsAPI{client: c}
}

// Global returns the platform-wide counters.
func (s *StatsAPI) Global(ctx context.Context) (*model.PlatformStats, error) {
	var resp struct {
		Stats model.PlatformStats `json:"stats"`
	}
	if err := s.client.Get(ctx, "/stats", &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

// Leaderboard returns the top donors.
func (s *StatsAPI) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	var resp struct {
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	}
	if err := s.client.Get(ctx, "/stats/leaderboard", &resp); err != nil {
		return nil, err
	}
	return resp.Leaderboard, nil
}
