package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/pdf-prints/internal/keys"
	"github.com/nhle/pdf-prints/internal/model"
	"github.com/nhle/pdf-prints/internal/notify"
	"github.com/nhle/pdf-prints/internal/theme"
	"github.com/nhle/pdf-prints/internal/ui"
	helpview "github.com/nhle/pdf-prints/internal/ui/help"
	"github.com/nhle/pdf-prints/internal/ui/pdfform"
	"github.com/nhle/pdf-prints/internal/ui/pdflist"
)

// Service is what the terminal UI needs from the PDF service.
type Service interface {
	pdflist.Service
	CreatePDF(ctx context.Context, name string, dueDate *model.Date, status *model.Status) (*model.PDF, error)
}

// Subscriber delivers change events published by other sessions.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan notify.Event, error)
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewCreate
	ViewHelp
)

// toast is a transient status bar message.
type toast struct {
	text string
	err  bool
	seq  int
}

type toastExpiredMsg struct{ seq int }

// Model is the root Bubble Tea model that routes between the grid, the
// create form and the help overlay.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	svc          Service
	keys         *keys.KeyMap

	pdfList  pdflist.Model
	pdfForm  pdfform.Model
	helpView helpview.Model

	events <-chan notify.Event
	sub    Subscriber

	toast    *toast
	toastSeq int
	ready    bool
}

// Option configures the root model.
type Option func(*Model)

// WithSubscriber refreshes the grid whenever sub reports a change.
func WithSubscriber(sub Subscriber) Option {
	return func(m *Model) { m.sub = sub }
}

// New creates the root model over svc. pageSize is the grid page size.
func New(svc Service, pageSize int, opts ...Option) Model {
	k := keys.DefaultKeyMap()
	m := Model{
		currentView: ViewList,
		svc:         svc,
		keys:        k,
		pdfList:     pdflist.New(svc, k, pageSize, 80, 22),
		pdfForm:     pdfform.New(80, 22),
		helpView:    helpview.New(k, 80, 22),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init loads the first page and starts listening for change events.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.pdfList.Init()}
	if m.sub != nil {
		cmds = append(cmds, subscribe(m.sub))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.Width, m.layout.ContentHeight()
		m.pdfList.SetSize(w, h)
		m.pdfForm.SetSize(w, h)
		m.helpView.SetSize(w, h)
		return m, nil

	case ui.ToastMsg:
		m.toastSeq++
		m.toast = &toast{text: msg.Text, err: msg.Err, seq: m.toastSeq}
		seq := m.toastSeq
		return m, tea.Tick(msg.Duration, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		})

	case toastExpiredMsg:
		if m.toast != nil && m.toast.seq == msg.seq {
			m.toast = nil
		}
		return m, nil

	case subscribedMsg:
		m.events = msg.events
		return m, waitForEvent(m.events)

	case eventMsg:
		slog.Debug("change event", "type", msg.event.Type, "id", msg.event.ID)
		cmd := m.pdfList.LoadPage()
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case pdfform.SubmitMsg:
		m.currentView = ViewList
		return m, m.createPDF(msg)

	case pdfform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case pdfCreatedMsg:
		if msg.err != nil {
			return m, ui.ShowError(fmt.Sprintf("Failed to add PDF: %v", msg.err), ui.ToastLong)
		}
		cmd := m.pdfList.LoadPage()
		return m, tea.Batch(cmd, ui.ShowToast("PDF added", 3*time.Second))

	case pdflist.PageLoadedMsg, pdflist.StatusUpdatedMsg:
		// Results belong to the grid even while another view is open.
		var cmd tea.Cmd
		m.pdfList, cmd = m.pdfList.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.currentView == ViewList && (m.pdfList.Searching() || m.pdfList.Editing()) {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit) && m.currentView != ViewCreate:
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help) && m.currentView != ViewCreate:
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
			m.currentView = m.previousView
			return m, nil

		case key.Matches(msg, m.keys.Back) && m.currentView == ViewCreate:
			m.currentView = ViewList
			return m, nil

		case key.Matches(msg, m.keys.New) && m.currentView == ViewList:
			m.previousView = m.currentView
			m.currentView = ViewCreate
			return m, m.pdfForm.StartCreate()
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.pdfList, cmd = m.pdfList.Update(msg)
	case ViewCreate:
		m.pdfForm, cmd = m.pdfForm.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("PDF Prints", fmt.Sprintf("Total: %d", m.pdfList.Total()))
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCreate:
		return m.pdfForm.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return m.pdfList.View()
	}
}

// statusLine shows the active toast, falling back to key hints.
func (m Model) statusLine() string {
	if m.toast != nil {
		if m.toast.err {
			return theme.ErrorToastStyle.Render(m.toast.text)
		}
		return theme.SuccessToastStyle.Render(m.toast.text)
	}
	return m.keyHints()
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCreate:
		return "enter next/submit | shift+tab back | esc cancel"
	}

	switch {
	case m.pdfList.Searching():
		return "enter apply | esc clear"
	case m.pdfList.Editing():
		return "←/→ status | enter save | esc cancel"
	}
	return "n new | e status | / search | f due | s status | tab sort | h/l page | ? help | q quit"
}
