package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/application"
	"github.com/MrJamesThe3rd/titledeed/internal/assignment"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/property"
	"github.com/MrJamesThe3rd/titledeed/internal/transaction"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// Services is what the console acts through, always as Official.
type Services struct {
	Official     actor.Actor
	Lock         *assignment.Lock
	Transactions *transaction.Service
	Properties   *property.Service
	Applications *application.Service
	Bridge       *bridge.Bridge
}
