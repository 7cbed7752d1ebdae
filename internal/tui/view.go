package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/scope"
)

func (a *App) trace(component string, fields ...zap.Field) {
	if !a.verbose.Enabled() {
		return
	}
	a.log.Info("render "+component, fields...)
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func (a *App) View() string {
	s := a.state
	a.trace("app", zap.Uint64("seq", a.seq))

	timer := stoppedStyle.Render("stopped")
	if s.TimerOn {
		timer = runningStyle.Render("running")
	}
	verbose := valueStyle.Render("off")
	if a.verbose.Enabled() {
		verbose = verboseStyle.Render("on")
	}
	size := "small"
	if !s.IsSmall() {
		size = "big"
	}

	summary := strings.Join([]string{
		row("clock", fmt.Sprintf("%.3f", s.Clock)),
		row("timer", timer),
		row("verbose", verbose),
		row("tree", fmt.Sprintf("%s (%d teams, %d entities)", size, s.Teams.Len(), s.EntityCount())),
	}, "\n")

	focus := strings.Join([]string{
		a.entityRow(scope.Team, scope.TeamScope, s),
		a.entityRow(scope.Game, scope.GameScope, s),
		a.entityRow(scope.Video, scope.VideoScope, s),
		a.entityRow(scope.Member, scope.MemberScope, s),
	}, "\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(titleStyle.Render("State")+"\n"+summary),
		paneStyle.Render(titleStyle.Render("Focus")+"\n"+focus),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("teamperf"),
		body,
		statusStyle.Render(a.status),
		footerStyle.Render(a.help.View(a.keys)),
	)
}

func (a *App) entityRow(level scope.Level, p scope.Projection[domain.State, domain.Entity], s domain.State) string {
	label := level.String()
	e := scope.Project(p, s)
	a.trace(label, zap.String("id", e.ID))
	if _, ok := scope.Lookup(s, scope.SelectionPath(s, level)); !ok {
		return row(label, e.ID+" (absent)")
	}
	return row(label, fmt.Sprintf("%s %q %s", e.ID, e.Name, e.Kind))
}
