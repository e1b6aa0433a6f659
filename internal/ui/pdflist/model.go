package pdflist

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/pdf-prints/internal/keys"
	"github.com/nhle/pdf-prints/internal/model"
	"github.com/nhle/pdf-prints/internal/query"
	"github.com/nhle/pdf-prints/internal/store"
	"github.com/nhle/pdf-prints/internal/theme"
	"github.com/nhle/pdf-prints/internal/ui"
)

// Service is the subset of the PDF service the grid needs.
type Service interface {
	Today() model.Date
	List(ctx context.Context, c query.Criteria, page store.PageRequest) (store.Page, error)
	Count(ctx context.Context, c query.Criteria) (int, error)
	UpdateStatus(ctx context.Context, id string, status *model.Status) (*model.PDF, error)
}

// PageLoadedMsg carries one page of records and the filtered total.
type PageLoadedMsg struct {
	Seq   int
	Items []model.PDF
	Total int
	Today model.Date
	Err   error
}

// StatusUpdatedMsg reports the outcome of an inline status edit.
type StatusUpdatedMsg struct {
	ID   string
	Prev model.Status
	PDF  *model.PDF
	Err  error
}

// sortModes are the columns cycled by Tab.
var sortModes = []string{
	store.SortCreatedAt,
	store.SortName,
	store.SortDueDate,
}

var sortLabels = map[string]string{
	store.SortCreatedAt: "Created At",
	store.SortName:      "Name",
	store.SortDueDate:   "Due Date",
}

const (
	createdAtLayout = "2006-01-02 15:04"
	notSet          = "Not set"
)

// Model is the paginated PDF grid with its filter toolbar and inline
// status editor.
type Model struct {
	svc  Service
	keys *keys.KeyMap

	table     table.Model
	paginator paginator.Model

	searchInput textinput.Model
	searchMode  bool

	criteria  query.Criteria
	sortIndex int
	sortDesc  bool

	items []model.PDF
	total int
	today model.Date
	seq   int
	err   error

	// editing is set while the status editor is open on the row with id
	// editID. Reloads keep the cursor on that row.
	editing    bool
	editID     string
	editStatus model.Status

	width  int
	height int
}

// New creates the grid. pageSize is the number of rows per page.
func New(svc Service, k *keys.KeyMap, pageSize, width, height int) Model {
	if pageSize <= 0 {
		pageSize = 50
	}

	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(theme.ColorWhite).
		Background(theme.ColorBlue)
	t.SetStyles(styles)

	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = pageSize

	si := textinput.New()
	si.Placeholder = "search by name..."
	si.Prompt = "/ "
	si.CharLimit = model.MaxNameLength

	m := Model{
		svc:         svc,
		keys:        k,
		table:       t,
		paginator:   p,
		searchInput: si,
		sortDesc:    true,
		today:       svc.Today(),
	}
	m.SetSize(width, height)
	return m
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.LoadPage()
}

// Criteria returns the active filters.
func (m Model) Criteria() query.Criteria {
	return m.criteria
}

// Total returns the number of records matching the active filters.
func (m Model) Total() int {
	return m.total
}

// Editing reports whether the inline status editor is open.
func (m Model) Editing() bool {
	return m.editing
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// Items returns the records of the current page.
func (m Model) Items() []model.PDF {
	return m.items
}

// Update handles messages for the grid.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PageLoadedMsg:
		return m.handlePageLoaded(msg)

	case StatusUpdatedMsg:
		return m.handleStatusUpdated(msg)

	case tea.KeyMsg:
		switch {
		case m.searchMode:
			return m.handleSearchKeys(msg)
		case m.editing:
			return m.handleEditKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handlePageLoaded(msg PageLoadedMsg) (Model, tea.Cmd) {
	if msg.Seq < m.seq {
		return m, nil
	}
	m.seq = msg.Seq
	if msg.Err != nil {
		m.err = msg.Err
		return m, ui.ShowError(fmt.Sprintf("Failed to load PDFs: %v", msg.Err), ui.ToastLong)
	}

	m.err = nil
	m.today = msg.Today
	m.total = msg.Total
	pages := max((msg.Total+m.paginator.PerPage-1)/m.paginator.PerPage, 1)
	m.paginator.TotalPages = pages

	// The current page can vanish when rows are removed elsewhere.
	if m.paginator.Page >= pages {
		m.paginator.Page = pages - 1
		cmd := m.LoadPage()
		return m, cmd
	}

	m.items = msg.Items
	m.syncRows()
	if m.editing {
		if i := m.indexOf(m.editID); i >= 0 {
			m.table.SetCursor(i)
		} else {
			m.closeEditor()
			m.syncRows()
		}
	}
	if m.table.Cursor() >= len(m.items) {
		m.table.SetCursor(max(len(m.items)-1, 0))
	}
	return m, nil
}

func (m Model) handleStatusUpdated(msg StatusUpdatedMsg) (Model, tea.Cmd) {
	i := m.indexOf(msg.ID)
	if msg.Err != nil {
		if i >= 0 {
			m.items[i].Status = msg.Prev
			m.syncRows()
		}
		return m, ui.ShowError(fmt.Sprintf("Failed to update status: %v", msg.Err), ui.ToastLong)
	}
	if i >= 0 && msg.PDF != nil {
		m.items[i] = *msg.PDF
		m.syncRows()
	}
	return m, ui.ShowToast("Status updated", ui.ToastShort)
}

// handleSearchKeys processes key input while the search box has focus.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		m.criteria.Name = m.searchInput.Value()
		cmd := m.resetAndLoad()
		return m, cmd

	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.criteria.Name = ""
		cmd := m.resetAndLoad()
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleEditKeys drives the inline status editor.
func (m Model) handleEditKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextPage):
		m.editStatus = m.editStatus.Next()
	case key.Matches(msg, m.keys.PrevPage):
		m.editStatus = m.editStatus.Prev()
	case key.Matches(msg, m.keys.Back):
		m.closeEditor()
	case key.Matches(msg, m.keys.Confirm):
		return m.commitStatus()
	}
	m.syncRows()
	return m, nil
}

// commitStatus applies the edited status to the row the editor was opened
// on optimistically and persists it. A failure reverts the row.
func (m Model) commitStatus() (Model, tea.Cmd) {
	i := m.indexOf(m.editID)
	m.closeEditor()
	if i < 0 {
		m.syncRows()
		return m, nil
	}
	prev := m.items[i].Status
	next := m.editStatus
	if next == prev {
		m.syncRows()
		return m, nil
	}

	m.items[i].Status = next
	m.syncRows()

	id := m.items[i].ID
	svc := m.svc
	return m, func() tea.Msg {
		pdf, err := svc.UpdateStatus(context.Background(), id, &next)
		return StatusUpdatedMsg{ID: id, Prev: prev, PDF: pdf, Err: err}
	}
}

// handleNormalKeys processes key input when no editor has focus.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.criteria.Name)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.EditStatus):
		if pdf, ok := m.Selected(); ok {
			m.editing = true
			m.editID = pdf.ID
			m.editStatus = pdf.Status
			m.syncRows()
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleDue):
		m.criteria.Due = m.criteria.Due.Next()
		cmd := m.resetAndLoad()
		return m, cmd

	case key.Matches(msg, m.keys.CycleStatus):
		m.criteria.Status = nextStatusFilter(m.criteria.Status)
		cmd := m.resetAndLoad()
		return m, cmd

	case key.Matches(msg, m.keys.ClearFilters):
		m.criteria = query.Criteria{}
		m.searchInput.Reset()
		cmd := m.resetAndLoad()
		return m, cmd

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		cmd := m.resetAndLoad()
		return m, cmd

	case key.Matches(msg, m.keys.ToggleSortDir):
		m.sortDesc = !m.sortDesc
		cmd := m.resetAndLoad()
		return m, cmd

	case key.Matches(msg, m.keys.NextPage):
		if m.paginator.OnLastPage() {
			return m, nil
		}
		m.paginator.NextPage()
		cmd := m.LoadPage()
		return m, cmd

	case key.Matches(msg, m.keys.PrevPage):
		if m.paginator.OnFirstPage() {
			return m, nil
		}
		m.paginator.PrevPage()
		cmd := m.LoadPage()
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		cmd := m.LoadPage()
		return m, cmd
	}

	// Cursor movement is left to the table.
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// nextStatusFilter cycles nil -> PENDING -> ... -> CANCELED -> nil.
func nextStatusFilter(cur *model.Status) *model.Status {
	if cur == nil {
		s := model.Statuses[0]
		return &s
	}
	for i, s := range model.Statuses {
		if s == *cur && i+1 < len(model.Statuses) {
			next := model.Statuses[i+1]
			return &next
		}
	}
	return nil
}

// Selected returns the record under the cursor.
func (m Model) Selected() (model.PDF, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return model.PDF{}, false
	}
	return m.items[i], true
}

func (m *Model) closeEditor() {
	m.editing = false
	m.editID = ""
}

func (m Model) indexOf(id string) int {
	for i, p := range m.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// pageRequest is the window and ordering of the current page.
func (m Model) pageRequest() store.PageRequest {
	return store.PageRequest{
		Offset: m.paginator.Page * m.paginator.PerPage,
		Limit:  m.paginator.PerPage,
		Sort: []store.SortOrder{
			{Field: sortModes[m.sortIndex], Desc: m.sortDesc},
		},
	}
}

// resetAndLoad returns to the first page and reloads it.
func (m *Model) resetAndLoad() tea.Cmd {
	m.paginator.Page = 0
	m.table.SetCursor(0)
	return m.LoadPage()
}

// LoadPage returns a command fetching the current page and the filtered
// total. Responses older than the latest request are dropped.
func (m *Model) LoadPage() tea.Cmd {
	m.seq++
	seq := m.seq
	svc := m.svc
	criteria := m.criteria
	page := m.pageRequest()

	return func() tea.Msg {
		ctx := context.Background()
		today := svc.Today()
		p, err := svc.List(ctx, criteria, page)
		if err != nil {
			return PageLoadedMsg{Seq: seq, Err: err}
		}
		total, err := svc.Count(ctx, criteria)
		if err != nil {
			return PageLoadedMsg{Seq: seq, Err: err}
		}
		return PageLoadedMsg{Seq: seq, Items: p.Items, Total: total, Today: today}
	}
}

// syncRows rebuilds the table rows from the loaded items.
func (m *Model) syncRows() {
	rows := make([]table.Row, len(m.items))
	for i, p := range m.items {
		status := p.Status.Label()
		if m.editing && p.ID == m.editID {
			status = "◀ " + m.editStatus.Label() + " ▶"
		}
		rows[i] = table.Row{
			p.Name,
			dueDateText(p.DueDate),
			p.CreatedAt.Local().Format(createdAtLayout),
			BadgeText(model.BucketOf(p.DueDate, m.today)),
			status,
		}
	}
	m.table.SetRows(rows)
}

func dueDateText(d *model.Date) string {
	if d == nil {
		return notSet
	}
	return d.String()
}

// BadgeText is the due badge shown for a bucket.
func BadgeText(b model.DueFilter) string {
	if b == model.DueNone {
		return "—"
	}
	return b.Label()
}

func columns(width int) []table.Column {
	fixed := 12 + 17 + 11 + 14
	name := width - fixed - 10
	if name < 20 {
		name = 20
	}
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Due Date", Width: 12},
		{Title: "Created At", Width: 17},
		{Title: "Due", Width: 11},
		{Title: "Status", Width: 14},
	}
}

// View renders the toolbar, grid, pager and selection line.
func (m Model) View() string {
	parts := []string{m.renderToolbar()}

	if len(m.items) == 0 {
		parts = append(parts, m.renderEmptyState())
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	parts = append(parts,
		m.table.View(),
		theme.HelpStyle.Render(fmt.Sprintf("Page %s", m.paginator.View())),
		m.renderSelection(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderToolbar() string {
	search := m.criteria.Name
	if m.searchMode {
		search = m.searchInput.View()
	} else if search == "" {
		search = "—"
	}

	status := "Any"
	if m.criteria.Status != nil {
		status = m.criteria.Status.Label()
	}

	dir := "↑"
	if m.sortDesc {
		dir = "↓"
	}

	fields := []string{
		"Search: " + search,
		"Due: " + m.criteria.Due.Label(),
		"Status: " + status,
		"Sort: " + sortLabels[sortModes[m.sortIndex]] + " " + dir,
		theme.TotalStyle.Render(fmt.Sprintf("Total: %d", m.total)),
	}
	return theme.ToolbarStyle.Render(strings.Join(fields, "   "))
}

// renderSelection shows the selected record with colored badges.
func (m Model) renderSelection() string {
	p, ok := m.Selected()
	if !ok {
		return ""
	}
	bucket := model.BucketOf(p.DueDate, m.today)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Bold(true).Padding(0, 1).Render(p.Name),
		theme.DueBadgeStyle(string(bucket)).Render(BadgeText(bucket)),
		theme.StatusStyle(string(p.Status)).Render(p.Status.Label()),
	)
}

// renderEmptyState shows guidance text when no records are listed.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(max(m.height-2, 1)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.err != nil {
		return style.Foreground(theme.ColorRed).Render("Could not load PDFs.\nPress r to retry.")
	}

	hasFilters := strings.TrimSpace(m.criteria.Name) != "" ||
		m.criteria.Status != nil ||
		(m.criteria.Due != "" && m.criteria.Due != model.DueAll)
	if hasFilters {
		return style.Render("No matching PDFs.\nTry adjusting your filters.")
	}
	return style.Render("No PDFs yet.\n\nPress n to add one.")
}

// SetSize updates the grid dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetWidth(width)
	// Toolbar, pager and selection line take three rows.
	m.table.SetHeight(max(height-3, 3))
	m.searchInput.Width = max(width/3, 10)
}
