package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/teamperf/internal/core"
	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/scope"
)

// Sender is the part of the Store the view talks to.
type Sender interface {
	Send(core.Action) error
}

// StateMsg carries a new snapshot from the Store into the program.
type StateMsg struct {
	Seq   uint64
	State domain.State
}

type errMsg struct{ err error }

// App renders the state and turns keys into actions.
type App struct {
	store   Sender
	verbose *core.VerboseFlag
	log     *zap.Logger
	keys    keyMap
	help    help.Model

	state  domain.State
	seq    uint64
	status string
	width  int
	height int
}

func New(store Sender, initial domain.State, verbose *core.VerboseFlag, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		store:   store,
		verbose: verbose,
		log:     log,
		keys:    newKeyMap(),
		help:    help.New(),
		state:   initial,
		status:  "Ready",
		width:   80,
		height:  24,
	}
}

// Forward returns a core.Observer that pushes every transition into p.
func Forward(p *tea.Program) core.Observer {
	return func(tr core.Transition) {
		p.Send(StateMsg{Seq: tr.Seq, State: tr.State})
	}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) send(act core.Action) tea.Cmd {
	return func() tea.Msg {
		if err := a.store.Send(act); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		return a, nil
	case StateMsg:
		if msg.Seq > a.seq {
			a.state, a.seq = msg.State, msg.Seq
		}
		return a, nil
	case errMsg:
		a.status = "error: " + msg.err.Error()
		return a, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Timer):
			return a, a.send(core.ToggleTimer{})
		case key.Matches(msg, a.keys.State):
			return a, a.send(core.ToggleState{})
		case key.Matches(msg, a.keys.Increment):
			return a, a.send(core.Increment{})
		case key.Matches(msg, a.keys.Rename):
			path := scope.SelectionPath(a.state, scope.Video)
			name := fmt.Sprintf("%s@%.0f", scope.Project(scope.VideoScope, a.state).ID, a.state.Clock)
			a.status = "rename " + path.String()
			return a, a.send(core.Wrap(path, core.Leaf{Op: "rename", Value: name}))
		}
	}
	return a, nil
}
