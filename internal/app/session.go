package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/foodbridge/cli/internal/api"
	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/session"
)

// bootstrapDoneMsg is sent when the startup session rehydration check
// has settled.
type bootstrapDoneMsg struct{}

// sessionUpdateMsg carries one async session change into the UI loop.
type sessionUpdateMsg struct {
	update session.Update
}

// loginResultMsg is sent when a login attempt completes.
type loginResultMsg struct{ err error }

// registerResultMsg is sent when a registration attempt completes.
type registerResultMsg struct{ err error }

// donationPostedMsg is sent when a new donation has been created.
type donationPostedMsg struct{ err error }

// bootstrap returns a tea.Cmd running the startup rehydration check.
func (m Model) bootstrap() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		s.Bootstrap(context.Background())
		return bootstrapDoneMsg{}
	}
}

// waitForUpdate blocks on the session's update channel and forwards the
// next change. The handler re-arms it after every message.
func (m Model) waitForUpdate() tea.Cmd {
	ch := m.session.Updates()
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return sessionUpdateMsg{update: u}
	}
}

func (m Model) login(creds api.Credentials) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return loginResultMsg{err: s.Login(context.Background(), creds)}
	}
}

func (m Model) register(reg api.Registration) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return registerResultMsg{err: s.Register(context.Background(), reg)}
	}
}

// postDonation creates a listing, stamping it with the donor's profile
// location.
func (m Model) postDonation(listing model.Listing) tea.Cmd {
	f := m.foodAPI
	if user := m.session.User(); user != nil {
		listing.Location = user.Location
	}
	return func() tea.Msg {
		_, err := f.Create(context.Background(), listing)
		return donationPostedMsg{err: err}
	}
}
