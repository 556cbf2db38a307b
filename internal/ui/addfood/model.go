package addfood

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/foodbridge/cli/internal/api"
	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/theme"
)

// SubmitMsg is dispatched when the donor submits a new donation.
// Location is left empty; the caller fills it from the donor profile.
type SubmitMsg struct {
	Listing model.Listing
}

// CancelMsg is dispatched when the user backs out of the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name          string
	description   string
	foodType      model.FoodType
	category      string
	quantityValue string
	quantityUnit  string
	preparedAgo   string
	expiresIn     string
	deliveryNotes string
	imageURL      string
}

// Model is the Bubble Tea model for the donation form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	errText string
	busy    bool
	width   int
	height  int
}

// New creates a new donation form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{foodType: model.TypeCooked, category: model.CategoryVeg},
		width:  width,
		height: height,
	}
}

// Start initializes a fresh form.
func (m *Model) Start() tea.Cmd {
	m.fb.name = ""
	m.fb.description = ""
	m.fb.foodType = model.TypeCooked
	m.fb.category = model.CategoryVeg
	m.fb.quantityValue = ""
	m.fb.quantityUnit = "kg"
	m.fb.preparedAgo = "1"
	m.fb.expiresIn = "6"
	m.fb.deliveryNotes = ""
	m.fb.imageURL = ""
	m.errText = ""
	m.busy = false
	m.form = m.buildForm()
	return m.form.Init()
}

// SetError records a failed submission and re-opens the form with the
// entered values preserved.
func (m *Model) SetError(err error) tea.Cmd {
	m.busy = false
	m.errText = api.UserMessage(err)
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the donation form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.busy {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.busy = true
		listing := m.buildListing(time.Now())
		return m, func() tea.Msg { return SubmitMsg{Listing: listing} }
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

func (m *Model) buildListing(now time.Time) model.Listing {
	value, _ := strconv.ParseFloat(strings.TrimSpace(m.fb.quantityValue), 64)
	preparedAgo, _ := strconv.ParseFloat(strings.TrimSpace(m.fb.preparedAgo), 64)
	expiresIn, _ := strconv.ParseFloat(strings.TrimSpace(m.fb.expiresIn), 64)

	return model.Listing{
		Name:        strings.TrimSpace(m.fb.name),
		Description: strings.TrimSpace(m.fb.description),
		Type:        m.fb.foodType,
		Category:    m.fb.category,
		Quantity: model.Quantity{
			Value: value,
			Unit:  strings.TrimSpace(m.fb.quantityUnit),
		},
		PreparedAt:    now.Add(-time.Duration(preparedAgo * float64(time.Hour))),
		ExpiresAt:     now.Add(time.Duration(expiresIn * float64(time.Hour))),
		DeliveryNotes: strings.TrimSpace(m.fb.deliveryNotes),
		ImageURL:      strings.TrimSpace(m.fb.imageURL),
	}
}

// View renders the donation form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("New Donation")}
	if m.errText != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.errText))
	}
	if m.busy {
		parts = append(parts, theme.HelpStyle.Render("Posting donation..."))
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
	typeOpts := make([]huh.Option[model.FoodType], len(model.FoodTypes))
	for i, t := range model.FoodTypes {
		typeOpts[i] = huh.NewOption(string(t), t)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Food").
				Placeholder("e.g. Veg Biryani, Bread").
				Value(&m.fb.name).
				Validate(validateRequired("Food")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
			huh.NewSelect[model.FoodType]().
				Title("Type").
				Options(typeOpts...).
				Value(&m.fb.foodType),
			huh.NewSelect[string]().
				Title("Category").
				Options(
					huh.NewOption("Veg", model.CategoryVeg),
					huh.NewOption("Non-veg", model.CategoryNonVeg),
				).
				Value(&m.fb.category),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Quantity").
				Placeholder("e.g. 5").
				Value(&m.fb.quantityValue).
				Validate(validatePositiveNumber("Quantity")),
			huh.NewInput().
				Title("Unit").
				Placeholder("kg / plates / packets").
				Value(&m.fb.quantityUnit).
				Validate(validateRequired("Unit")),
			huh.NewInput().
				Title("Prepared (hours ago)").
				Value(&m.fb.preparedAgo).
				Validate(validateNonNegativeNumber("Prepared")),
			huh.NewInput().
				Title("Safe for (hours)").
				Value(&m.fb.expiresIn).
				Validate(validatePositiveNumber("Safe for")),
			huh.NewInput().
				Title("Pickup notes").
				Placeholder("Gate code, timings... (optional)").
				Value(&m.fb.deliveryNotes),
			huh.NewInput().
				Title("Image URL").
				Placeholder("Optional").
				Value(&m.fb.imageURL),
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

func validatePositiveNumber(fieldName string) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("%s must be a positive number", fieldName)
		}
		return nil
	}
}

func validateNonNegativeNumber(fieldName string) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || v < 0 {
			return fmt.Errorf("%s must be a number", fieldName)
		}
		return nil
	}
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
