package app

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/pdf-prints/internal/notify"
	"github.com/nhle/pdf-prints/internal/ui/pdfform"
)

// pdfCreatedMsg is sent after the create form has been persisted.
type pdfCreatedMsg struct{ err error }

// subscribedMsg carries the event channel once the subscription is live.
type subscribedMsg struct {
	events <-chan notify.Event
}

// eventMsg is a change made by any session.
type eventMsg struct {
	event notify.Event
}

// createPDF persists the submitted form.
func (m Model) createPDF(msg pdfform.SubmitMsg) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		due := msg.DueDate
		status := msg.Status
		_, err := svc.CreatePDF(context.Background(), msg.Name, &due, &status)
		return pdfCreatedMsg{err: err}
	}
}

// subscribe opens the change event stream. Failures are logged and the
// grid simply stops auto-refreshing.
func subscribe(sub Subscriber) tea.Cmd {
	return func() tea.Msg {
		events, err := sub.Subscribe(context.Background())
		if err != nil {
			slog.Warn("subscribing to change events", "error", err)
			return nil
		}
		return subscribedMsg{events: events}
	}
}

// waitForEvent blocks until the next event arrives. A closed channel ends
// the loop.
func waitForEvent(events <-chan notify.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg{event: e}
	}
}
