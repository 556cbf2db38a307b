package register

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/foodbridge/cli/internal/api"
	"github.com/foodbridge/cli/internal/geo"
	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/theme"
)

// SubmitMsg is dispatched when the user submits the registration form.
type SubmitMsg struct {
	Registration api.Registration
}

// CancelMsg is dispatched when the user backs out of the form.
type CancelMsg struct{}

// locatedMsg carries an optional device position resolved in the
// background while the user fills in the form.
type locatedMsg struct {
	lng, lat float64
	ok       bool
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name         string
	email        string
	password     string
	phone        string
	organization string
	role         model.Role
	address      string
	city         string
	pincode      string
}

// Model is the Bubble Tea model for the account registration form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	locator  geo.Provider
	lng, lat float64
	located  bool
	errText  string
	busy     bool
	width    int
	height   int
}

// New creates a new registration form model.
func New(locator geo.Provider, width, height int) Model {
	if locator == nil {
		locator = geo.None{}
	}
	return Model{
		fb:      &formBindings{role: model.RoleDonor},
		locator: locator,
		width:   width,
		height:  height,
	}
}

// Start initializes a fresh form and kicks off the background
// position lookup.
func (m *Model) Start() tea.Cmd {
	m.fb.name = ""
	m.fb.email = ""
	m.fb.password = ""
	m.fb.phone = ""
	m.fb.organization = ""
	m.fb.role = model.RoleDonor
	m.fb.address = ""
	m.fb.city = ""
	m.fb.pincode = ""
	m.located = false
	m.errText = ""
	m.busy = false
	m.form = m.buildForm()
	return tea.Batch(m.form.Init(), m.locate())
}

// SetError records a failed attempt and re-opens the form with the
// profile fields preserved.
func (m *Model) SetError(err error) tea.Cmd {
	m.busy = false
	m.errText = api.UserMessage(err)
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

func (m Model) locate() tea.Cmd {
	locator := m.locator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		lng, lat, ok := locator.Locate(ctx)
		return locatedMsg{lng: lng, lat: lat, ok: ok}
	}
}

// Update handles messages for the registration form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if loc, ok := msg.(locatedMsg); ok {
		m.lng, m.lat, m.located = loc.lng, loc.lat, loc.ok
		return m, nil
	}

	if m.form == nil || m.busy {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.busy = true
		reg := m.buildRegistration()
		return m, func() tea.Msg { return SubmitMsg{Registration: reg} }
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

func (m *Model) buildRegistration() api.Registration {
	loc := model.Location{
		Address: strings.TrimSpace(m.fb.address),
		City:    strings.TrimSpace(m.fb.city),
		Pincode: strings.TrimSpace(m.fb.pincode),
	}
	if m.located {
		loc.Coordinates = [2]float64{m.lng, m.lat}
	}

	return api.Registration{
		Name:         strings.TrimSpace(m.fb.name),
		Email:        strings.TrimSpace(m.fb.email),
		Password:     m.fb.password,
		Phone:        strings.TrimSpace(m.fb.phone),
		Organization: strings.TrimSpace(m.fb.organization),
		Role:         m.fb.role,
		Location:     loc,
	}
}

// View renders the registration form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Join FoodBridge")}
	if m.errText != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.errText))
	}
	if m.located {
		parts = append(parts, theme.HelpStyle.Render("Position detected, it will be attached to your profile."))
	}
	if m.busy {
		parts = append(parts, theme.HelpStyle.Render("Creating account..."))
	} else {
		parts = append(parts, m.form.View())
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Full name or contact person").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validatePassword),
			huh.NewInput().
				Title("Phone").
				Placeholder("+91...").
				Value(&m.fb.phone).
				Validate(validateRequired("Phone")),
			huh.NewSelect[model.Role]().
				Title("I am a").
				Options(
					huh.NewOption("Donor (restaurant, caterer, household)", model.RoleDonor),
					huh.NewOption("NGO (food distribution organization)", model.RoleNGO),
					huh.NewOption("Volunteer (pickup and delivery)", model.RoleVolunteer),
				).
				Value(&m.fb.role),
			huh.NewInput().
				Title("Organization").
				Placeholder("Optional").
				Value(&m.fb.organization),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Address").
				Value(&m.fb.address).
				Validate(validateRequired("Address")),
			huh.NewInput().
				Title("City").
				Value(&m.fb.city).
				Validate(validateRequired("City")),
			huh.NewInput().
				Title("Pincode").
				Value(&m.fb.pincode).
				Validate(validateRequired("Pincode")),
		),
	).WithWidth(formWidth(m.width)).WithHeight(formHeight(m.height))
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Email is required")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func validatePassword(s string) error {
	if len(s) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

func formWidth(w int) int {
	w -= 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func formHeight(h int) int {
	h -= 4
	if h < 12 {
		h = 12
	}
	return h
}
