package notifpanel

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/foodbridge/cli/internal/keys"
	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/theme"
)

// MarkAllReadMsg asks the application to mark every notification read.
type MarkAllReadMsg struct{}

// CloseMsg asks the application to close the panel.
type CloseMsg struct{}

// Model is the notification side panel showing the live event log.
type Model struct {
	notifications []model.Notification
	keys          *keys.KeyMap
	width         int
	height        int
}

// New creates a notification panel model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetNotifications replaces the displayed log. Entries are expected
// newest first.
func (m *Model) SetNotifications(ns []model.Notification) {
	m.notifications = ns
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.MarkRead):
			return m, func() tea.Msg { return MarkAllReadMsg{} }
		case key.Matches(keyMsg, m.keys.Back), key.Matches(keyMsg, m.keys.Notifications):
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}
	return m, nil
}

// View renders the notification panel.
func (m Model) View() string {
	title := theme.HeaderStyle.Render("Notifications")

	if len(m.notifications) == 0 {
		empty := theme.HelpStyle.Render("Nothing yet. Events show up here as they happen.")
		return theme.DetailPanelStyle.
			Width(m.width - 4).
			Render(lipgloss.JoinVertical(lipgloss.Left, title, "", empty))
	}

	lines := []string{title, ""}
	for _, n := range m.notifications {
		lines = append(lines, m.renderEntry(n))
	}
	lines = append(lines, "", theme.HelpStyle.Render("m: mark all read   esc: close"))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderEntry(n model.Notification) string {
	marker := " "
	titleStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	if !n.Read {
		marker = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("●")
		titleStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	}

	when := theme.HelpStyle.Render(relativeTime(n.ReceivedAt))
	return fmt.Sprintf("%s %s  %s", marker, titleStyle.Render(n.Title()), when)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
