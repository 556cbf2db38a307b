package listing

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/theme"
)

// Item wraps a model.Listing so it can be used in a bubbles/list.
type Item struct {
	Listing model.Listing
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Listing.Name }

// Title returns the listing name for the list.
func (i Item) Title() string { return i.Listing.Name }

// Description returns a short summary line for the list.
func (i Item) Description() string {
	parts := []string{
		string(i.Listing.Type),
		string(i.Listing.Status),
		quantityLabel(i.Listing.Quantity),
	}
	return strings.Join(parts, " | ")
}

// Delegate implements list.ItemDelegate for rendering listing rows.
type Delegate struct {
	// Now is overridable for deterministic rendering in tests.
	Now func() time.Time
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single listing line.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	wrapper, ok := item.(Item)
	if !ok {
		return
	}

	l := wrapper.Listing
	isSelected := index == m.Index()

	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}

	statusBadge := theme.StatusStyle(l.Status).Render(string(l.Status))

	typeBadge := lipgloss.NewStyle().
		Foreground(theme.ColorBlue).
		Render(string(l.Type))

	qty := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(quantityLabel(l.Quantity))

	expiry := ""
	if !l.ExpiresAt.IsZero() && l.Status == model.StatusAvailable {
		remaining := l.ExpiresIn(now)
		expiry = " " + theme.ExpiryStyle(remaining).Render(expiryLabel(remaining))
	}

	donor := ""
	if l.Donor != nil && l.Donor.Name != "" {
		donor = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render("  " + l.Donor.Name)
	}

	line := fmt.Sprintf(
		"%s %s %s %s%s%s",
		statusBadge, l.Name, typeBadge, qty, expiry, donor,
	)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

func quantityLabel(q model.Quantity) string {
	if q.Value == 0 {
		return ""
	}
	return fmt.Sprintf("%g %s", q.Value, q.Unit)
}

// expiryLabel returns a compact time-to-expiry label.
func expiryLabel(remaining time.Duration) string {
	if remaining <= 0 {
		return "expired"
	}
	if remaining < time.Hour {
		return fmt.Sprintf("%dm left", int(remaining.Minutes()))
	}
	if remaining < 24*time.Hour {
		return fmt.Sprintf("%dh left", int(remaining.Hours()))
	}
	return fmt.Sprintf("%dd left", int(remaining.Hours()/24))
}
