package pdfform

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/pdf-prints/internal/model"
	"github.com/nhle/pdf-prints/internal/theme"
)

// SubmitMsg is dispatched when the form is completed.
type SubmitMsg struct {
	Name    string
	DueDate model.Date
	Status  model.Status
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// validationMsg is a field error shown verbatim under the input by huh.
type validationMsg string

func (m validationMsg) Error() string { return string(m) }

const (
	errDueRequired validationMsg = "Please select a due date."
	errDueFormat   validationMsg = "Invalid date, use YYYY-MM-DD."
)

// formBindings holds field values on the heap so huh's Value() pointers
// stay valid across Bubble Tea model copies.
type formBindings struct {
	name    string
	dueDate string
	status  model.Status
}

// Model is the create form for a PDF record.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a new form model. Call StartCreate before showing it.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{status: model.StatusPending},
		width:  width,
		height: height,
	}
}

// StartCreate clears the fields and builds a fresh form.
func (m *Model) StartCreate() tea.Cmd {
	m.fb.name = ""
	m.fb.dueDate = ""
	m.fb.status = model.StatusPending
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.handleSubmit()
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("New PDF")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(title + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth()).WithHeight(m.formHeight())
	}
}

func (m *Model) buildForm() *huh.Form {
	opts := make([]huh.Option[model.Status], len(model.Statuses))
	for i, s := range model.Statuses {
		opts[i] = huh.NewOption(s.Label(), s)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Invoice 2024-001").
				CharLimit(model.MaxNameLength).
				Value(&m.fb.name),
			huh.NewInput().
				Title("Due Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.dueDate).
				Validate(validateDueDate),
			huh.NewSelect[model.Status]().
				Title("Status").
				Options(opts...).
				Value(&m.fb.status),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	due, err := model.ParseDate(strings.TrimSpace(m.fb.dueDate))
	if err != nil {
		// Validation already rejected this; treat it as a cancel.
		return func() tea.Msg { return CancelMsg{} }
	}
	msg := SubmitMsg{
		Name:    strings.TrimSpace(m.fb.name),
		DueDate: due,
		Status:  m.fb.status,
	}
	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateDueDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errDueRequired
	}
	if _, err := model.ParseDate(s); err != nil {
		return errDueFormat
	}
	return nil
}
