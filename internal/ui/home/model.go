package home

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/foodbridge/cli/internal/api"
	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/theme"
)

// StatsLoadedMsg is sent when the public platform stats have been fetched.
type StatsLoadedMsg struct {
	Stats       *model.PlatformStats
	Leaderboard []model.LeaderboardEntry
	Err         error
}

// Model is the public landing view with platform impact counters.
type Model struct {
	stats       *model.PlatformStats
	leaderboard []model.LeaderboardEntry
	err         error
	statsAPI    *api.StatsAPI
	width       int
	height      int
}

// New creates the landing view model.
func New(s *api.StatsAPI, width, height int) Model {
	return Model{
		statsAPI: s,
		width:    width,
		height:   height,
	}
}

// Init returns a command that loads the platform stats.
func (m Model) Init() tea.Cmd {
	return m.LoadStats()
}

// Update handles messages for the landing view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if loaded, ok := msg.(StatsLoadedMsg); ok {
		m.stats = loaded.Stats
		m.leaderboard = loaded.Leaderboard
		m.err = loaded.Err
	}
	return m, nil
}

// LoadStats returns a tea.Cmd that fetches the stats and leaderboard.
// The leaderboard is optional; only a stats failure is surfaced.
func (m Model) LoadStats() tea.Cmd {
	s := m.statsAPI
	return func() tea.Msg {
		ctx := context.Background()
		stats, err := s.Global(ctx)
		if err != nil {
			return StatsLoadedMsg{Err: err}
		}
		board, err := s.Leaderboard(ctx)
		if err != nil {
			board = nil
		}
		return StatsLoadedMsg{Stats: stats, Leaderboard: board}
	}
}

// View renders the landing view.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorGreen).
		Render("FoodBridge")

	tagline := theme.HelpStyle.Render("Rescue surplus food. Feed people, not landfills.")

	var body string
	switch {
	case m.err != nil:
		body = theme.ErrorStyle.Render(api.UserMessage(m.err))
	case m.stats == nil:
		body = theme.HelpStyle.Render("Loading platform stats...")
	default:
		body = m.renderStats()
	}

	hint := theme.HelpStyle.Render("l: log in   s: sign up   q: quit")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		tagline,
		"",
		body,
		"",
		hint,
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (m Model) renderStats() string {
	cell := func(label string, value int64) string {
		num := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorGreen).
			Render(fmt.Sprintf("%d", value))
		return theme.BorderStyle.
			Padding(0, 2).
			Render(num + "\n" + theme.HelpStyle.Render(label))
	}

	row := lipgloss.JoinHorizontal(
		lipgloss.Top,
		cell("meals saved", m.stats.TotalMealsSaved),
		cell("donations", m.stats.TotalDonations),
		cell("NGOs", m.stats.TotalNGOs),
		cell("volunteers", m.stats.TotalVolunteers),
	)

	if len(m.leaderboard) == 0 {
		return row
	}

	lines := []string{theme.HeaderStyle.Render("Top donors")}
	max := len(m.leaderboard)
	if max > 5 {
		max = 5
	}
	for i := 0; i < max; i++ {
		e := m.leaderboard[i]
		name := e.Name
		if e.Organization != "" {
			name += " (" + e.Organization + ")"
		}
		lines = append(lines, fmt.Sprintf("%d. %s  %d donations", i+1, name, e.Donations))
	}

	return lipgloss.JoinVertical(lipgloss.Left, row, "", lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
