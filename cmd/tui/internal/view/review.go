package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
)

type reviewState int

const (
	reviewStateBrowse reviewState = iota
	reviewStateDecide
)

// ReviewModel works through the official's own queue.
type ReviewModel struct {
	CommonModel
	svc Services

	state   reviewState
	kindIdx int
	table   table.Model
	items   []item
	form    *huh.Form
	loading bool
	err     error
	status  string

	// Form bindings
	approve bool
	comment string
}

func NewReviewModel(svc Services) ReviewModel {
	return ReviewModel{
		svc: svc,
		table: newTable([]table.Column{
			{Title: "Submitted", Width: 12},
			{Title: "State", Width: 22},
			{Title: "Item", Width: 40},
		}),
		loading: true,
	}
}

func (m ReviewModel) Title() string { return "My Queue" }

func (m ReviewModel) ShortHelp() string {
	if m.state == reviewStateDecide {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: decide | k: kind | r: refresh"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadQueueMsg:
		m.loading = false
		m.err = msg.err
		m.items = msg.items
		m.refreshTable()

		return m, nil

	case decisionMsg:
		switch {
		case errors.Is(msg.err, apperr.ErrReconciliation):
			m.status = "Recorded on the ledger; the record will catch up once reconciled"
		case msg.err != nil:
			m.status = fmt.Sprintf("Review failed: %v", msg.err)
		default:
			m.status = "Decision recorded"
		}

		m.state = reviewStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == reviewStateDecide {
		return m.updateDecide(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "k":
			m.kindIdx = (m.kindIdx + 1) % len(kinds)
			m.loading = true

			return m, m.loadCmd()
		case "enter":
			return m.enterDecide()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ReviewModel) selected() (item, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return item{}, false
	}

	return m.items[idx], true
}

func (m ReviewModel) enterDecide() (tea.Model, tea.Cmd) {
	if _, ok := m.selected(); !ok {
		return m, nil
	}

	m.approve = true
	m.comment = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[bool]().
				Key("decision").
				Title("Decision").
				Options(
					huh.NewOption("Approve", true),
					huh.NewOption("Reject", false),
				).
				Value(&m.approve),

			huh.NewText().
				Key("comment").
				Title("Comment").
				Description("Required when rejecting").
				Value(&m.comment).
				Validate(func(s string) error {
					if !m.approve && strings.TrimSpace(s) == "" {
						return fmt.Errorf("a rejection needs a comment")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = reviewStateDecide
	m.table.Blur()

	return m, m.form.Init()
}

func (m ReviewModel) updateDecide(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = reviewStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	it, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.status = "Submitting..."

	return m, m.decideCmd(it, m.approve, m.comment)
}

func (m ReviewModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading queue...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Queue of %s: [k] Kind: %s", m.svc.Official.ID, activeStyle(string(kinds[m.kindIdx])))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	panel := ""
	if it, ok := m.selected(); ok {
		panel = it.Detail
	}

	if m.state == reviewStateDecide && m.form != nil {
		panel += "\n" + m.form.View()
	}

	if panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(panel))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ReviewModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.items))
	for _, it := range m.items {
		rows = append(rows, table.Row{FormatDate(it.Submitted), it.State, it.Summary})
	}

	m.table.SetRows(rows)
}

type loadQueueMsg struct {
	items []item
	err   error
}

func (m ReviewModel) loadCmd() tea.Cmd {
	kind := kinds[m.kindIdx]

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		items, err := m.svc.loadItems(ctx, kind, true)

		return loadQueueMsg{items: items, err: err}
	}
}

type decisionMsg struct {
	err error
}

func (m ReviewModel) decideCmd(it item, approve bool, comment string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		return decisionMsg{err: m.svc.review(ctx, it, approve, comment)}
	}
}
