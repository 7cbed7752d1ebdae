package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/teamperf/internal/core"
	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/scope"
)

type fakeSender struct {
	sent []core.Action
	err  error
}

func (f *fakeSender) Send(a core.Action) error {
	f.sent = append(f.sent, a)
	return f.err
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func press(t *testing.T, a *App, r rune) tea.Msg {
	t.Helper()
	_, cmd := a.Update(keyRune(r))
	if cmd == nil {
		t.Fatalf("key %q produced no command", r)
	}
	return cmd()
}

func TestKeysSendActions(t *testing.T) {
	fs := &fakeSender{}
	a := New(fs, domain.SmallState(), &core.VerboseFlag{}, nil)

	press(t, a, 't')
	press(t, a, 's')
	press(t, a, 'i')

	want := []core.Action{core.ToggleTimer{}, core.ToggleState{}, core.Increment{}}
	if len(fs.sent) != len(want) {
		t.Fatalf("sent %d actions, want %d", len(fs.sent), len(want))
	}
	for i := range want {
		if fs.sent[i] != want[i] {
			t.Fatalf("action %d = %#v, want %#v", i, fs.sent[i], want[i])
		}
	}
}

func TestRenameTargetsSelectedVideo(t *testing.T) {
	fs := &fakeSender{}
	s := domain.BigState()
	a := New(fs, s, &core.VerboseFlag{}, nil)

	press(t, a, 'n')
	if len(fs.sent) != 1 {
		t.Fatalf("sent %d actions, want 1", len(fs.sent))
	}
	path, leaf := core.PathOf(fs.sent[0])
	if got, want := path.String(), scope.SelectionPath(s, scope.Video).String(); got != want {
		t.Fatalf("path = %s, want %s", got, want)
	}
	l, ok := leaf.(core.Leaf)
	if !ok || l.Op != "rename" {
		t.Fatalf("leaf = %#v", leaf)
	}
}

func TestSendErrorShowsInStatus(t *testing.T) {
	fs := &fakeSender{err: core.ErrStopped}
	a := New(fs, domain.SmallState(), &core.VerboseFlag{}, nil)

	msg := press(t, a, 'i')
	em, ok := msg.(errMsg)
	if !ok || !errors.Is(em.err, core.ErrStopped) {
		t.Fatalf("msg = %#v, want errMsg wrapping ErrStopped", msg)
	}
	a.Update(msg)
	if !strings.Contains(a.View(), "store stopped") {
		t.Fatalf("status missing error:\n%s", a.View())
	}
}

func TestQuitKey(t *testing.T) {
	a := New(&fakeSender{}, domain.SmallState(), nil, nil)
	_, cmd := a.Update(keyRune('q'))
	if cmd == nil {
		t.Fatalf("quit produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestStateMsgIgnoresStaleSeq(t *testing.T) {
	a := New(&fakeSender{}, domain.SmallState(), &core.VerboseFlag{}, nil)

	big := domain.BigState()
	big.Clock = 42
	a.Update(StateMsg{Seq: 2, State: big})
	a.Update(StateMsg{Seq: 1, State: domain.SmallState()})

	if a.state.EntityCount() != big.EntityCount() || a.state.Clock != 42 {
		t.Fatalf("stale snapshot replaced newer one")
	}
}

func TestViewShowsStateAndFocus(t *testing.T) {
	s := domain.BigState()
	s.Clock = 1.5
	s.TimerOn = true
	verbose := &core.VerboseFlag{}
	verbose.Set(true)
	a := New(&fakeSender{}, s, verbose, nil)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	out := a.View()
	for _, want := range []string{"1.500", "running", "big", "172 entities", "t0", "g0", "v0", "m0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestViewMarksAbsentSelection(t *testing.T) {
	s := domain.SmallState()
	s.CurrentVideo = "v99"
	a := New(&fakeSender{}, s, &core.VerboseFlag{}, nil)
	if !strings.Contains(a.View(), "(absent)") {
		t.Fatalf("absent video not marked:\n%s", a.View())
	}
}
