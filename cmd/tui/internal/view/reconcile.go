package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
)

const reconcileLimit = 200

// ReconcileModel lists ledger actions waiting to reach the record store.
type ReconcileModel struct {
	CommonModel
	svc Services

	table   table.Model
	rows    []*bridge.Reconciliation
	loading bool
	err     error
	status  string
}

func NewReconcileModel(svc Services) ReconcileModel {
	return ReconcileModel{
		svc: svc,
		table: newTable([]table.Column{
			{Title: "Parked", Width: 12},
			{Title: "Operation", Width: 46},
			{Title: "Receipt", Width: 14},
			{Title: "Tries", Width: 6},
			{Title: "Last error", Width: 30},
		}),
		loading: true,
	}
}

func (m ReconcileModel) Title() string { return "Reconciliations" }

func (m ReconcileModel) ShortHelp() string {
	return "Esc: back | x: run reconciler | r: refresh"
}

func (m ReconcileModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ReconcileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadReconcileMsg:
		m.loading = false
		m.err = msg.err
		m.rows = msg.rows
		m.refreshTable()

		return m, nil

	case reconcileRunMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Reconciler stopped: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Resolved %d parked action(s)", msg.resolved)
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
		case "x":
			m.status = "Reconciling..."
			return m, m.runCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ReconcileModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading reconciliations...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Pending: %s", activeStyle(strconv.Itoa(len(m.rows))))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ReconcileModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		rows = append(rows, table.Row{
			FormatDate(r.CreatedAt),
			r.OperationKey,
			ShortHash(r.Receipt.Hash),
			strconv.Itoa(r.Attempts),
			r.LastError,
		})
	}

	m.table.SetRows(rows)
}

type loadReconcileMsg struct {
	rows []*bridge.Reconciliation
	err  error
}

func (m ReconcileModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		rows, err := m.svc.Bridge.Pending(ctx, reconcileLimit)

		return loadReconcileMsg{rows: rows, err: err}
	}
}

type reconcileRunMsg struct {
	resolved int
	err      error
}

func (m ReconcileModel) runCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		n, err := m.svc.Bridge.Reconcile(ctx)

		return reconcileRunMsg{resolved: n, err: err}
	}
}
