package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PoolModel browses unassigned review items and claims them.
type PoolModel struct {
	CommonModel
	svc Services

	kindIdx int
	table   table.Model
	items   []item
	loading bool
	err     error
	status  string
}

func NewPoolModel(svc Services) PoolModel {
	return PoolModel{
		svc: svc,
		table: newTable([]table.Column{
			{Title: "Submitted", Width: 12},
			{Title: "State", Width: 22},
			{Title: "Item", Width: 50},
		}),
		loading: true,
	}
}

func (m PoolModel) Title() string { return "Review Pool" }

func (m PoolModel) ShortHelp() string {
	return "Esc: back | c: claim | k: kind | r: refresh"
}

func (m PoolModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m PoolModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPoolMsg:
		m.loading = false
		m.err = msg.err
		m.items = msg.items
		m.refreshTable()

		return m, nil

	case claimMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Claim failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Claimed %s %s; it is now in your queue", msg.item.Kind, msg.item.ID)
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "k":
			m.kindIdx = (m.kindIdx + 1) % len(kinds)
			m.loading = true

			return m, m.loadCmd()
		case "c":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.items) {
				return m, nil
			}

			return m, m.claimCmd(m.items[idx])
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PoolModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading pool...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Pool: [k] Kind: %s | %d item(s)", activeStyle(string(kinds[m.kindIdx])), len(m.items))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *PoolModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.items))
	for _, it := range m.items {
		rows = append(rows, table.Row{FormatDate(it.Submitted), it.State, it.Summary})
	}

	m.table.SetRows(rows)
}

type loadPoolMsg struct {
	items []item
	err   error
}

func (m PoolModel) loadCmd() tea.Cmd {
	kind := kinds[m.kindIdx]

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		items, err := m.svc.loadItems(ctx, kind, false)

		return loadPoolMsg{items: items, err: err}
	}
}

type claimMsg struct {
	item item
	err  error
}

func (m PoolModel) claimCmd(it item) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		return claimMsg{item: it, err: m.svc.Lock.Claim(ctx, it.Kind, it.ID, m.svc.Official)}
	}
}
