package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/titledeed/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/app"
	"github.com/MrJamesThe3rd/titledeed/internal/config"
)

type model struct {
	official    actor.Actor
	services    view.Services
	currentView View

	poolView      view.PoolModel
	reviewView    view.ReviewModel
	reconcileView view.ReconcileModel
}

type View int

const (
	ViewMenu      View = 0
	ViewPool      View = 1
	ViewReview    View = 2
	ViewReconcile View = 3
)

func newModel(a *app.App, official actor.Actor) model {
	svc := view.Services{
		Official:     official,
		Lock:         a.Assignments,
		Transactions: a.Transactions,
		Properties:   a.Properties,
		Applications: a.Applications,
		Bridge:       a.Bridge,
	}

	return model{
		official:      official,
		services:      svc,
		currentView:   ViewMenu,
		poolView:      view.NewPoolModel(svc),
		reviewView:    view.NewReviewModel(svc),
		reconcileView: view.NewReconcileModel(svc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewPool
				m.poolView = view.NewPoolModel(m.services)

				return m, m.poolView.Init()
			case "2":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.services)

				return m, m.reviewView.Init()
			case "3":
				m.currentView = ViewReconcile
				m.reconcileView = view.NewReconcileModel(m.services)

				return m, m.reconcileView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewPool:
		var newModel tea.Model
		newModel, cmd = m.poolView.Update(msg)
		m.poolView = newModel.(view.PoolModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewReconcile:
		var newModel tea.Model
		newModel, cmd = m.reconcileView.Update(msg)
		m.reconcileView = newModel.(view.ReconcileModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Titledeed Review Console\n" +
				lipgloss.NewStyle().Faint(true).Render("Signed in as "+m.official.ID) + "\n\n" +
				"1. Review Pool\n" +
				"2. My Queue\n" +
				"3. Reconciliations\n\n" +
				"q. Quit",
		)
	case ViewPool:
		return m.poolView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewReconcile:
		return m.reconcileView.View()
	}

	return "Unknown View"
}

// logger keeps log output off the terminal the program draws on.
func logger(debug bool) (*slog.Logger, func(), error) {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := tea.LogToFile("titledeed-tui.log", "")
	if err != nil {
		return nil, nil, err
	}

	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})), func() { _ = f.Close() }, nil
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Console.OfficialID == "" {
		return errors.New("OFFICIAL_ID is required to run the console")
	}

	log, closeLog, err := logger(cfg.App.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	official := actor.New(cfg.Console.OfficialID, actor.RoleOfficial).WithWallet(cfg.Console.OfficialWallet)

	_, err = tea.NewProgram(newModel(a, official), tea.WithAltScreen()).Run()

	return err
}

func main() {
	if err := run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
