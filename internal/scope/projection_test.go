package scope

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jask/teamperf/internal/domain"
)

func edited(e domain.Entity) domain.Entity {
	e.Name = e.Name + "!"
	e.Score += 2
	e.Kind = domain.KindArchived
	e.Time = 42
	return e
}

func TestLensLawsForSelectedLevels(t *testing.T) {
	for _, level := range []Level{Team, Game, Video, Member} {
		t.Run(level.String(), func(t *testing.T) {
			for _, s := range []domain.State{domain.SmallState(), domain.BigState()} {
				p := ForLevel(level)

				if diff := cmp.Diff(s, p.Integrate(s, p.Focus(s))); diff != "" {
					t.Fatalf("integrate(s, focus(s)) != s:\n%s", diff)
				}

				c := edited(p.Focus(s))
				if diff := cmp.Diff(c, p.Focus(p.Integrate(s, c))); diff != "" {
					t.Fatalf("focus(integrate(s, c)) != c:\n%s", diff)
				}
			}
		})
	}
}

func TestIntegrateWithAbsentIDReturnsStateUnchanged(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.State)
		level  Level
	}{
		{"team", func(s *domain.State) { s.CurrentTeam = "t9" }, Team},
		{"game under missing team", func(s *domain.State) { s.CurrentTeam = "t9" }, Game},
		{"game", func(s *domain.State) { s.CurrentGame = "g9" }, Game},
		{"video", func(s *domain.State) { s.CurrentVideo = "v99" }, Video},
		{"member", func(s *domain.State) { s.CurrentMember = "m9" }, Member},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := domain.BigState()
			tc.mutate(&s)
			p := ForLevel(tc.level)

			focused := p.Focus(s)
			if focused.ChildrenA.Len() != 0 || focused.ChildrenB.Len() != 0 || focused.Name != "" {
				t.Fatalf("expected default entity, got %+v", focused)
			}
			got := p.Integrate(s, edited(focused))
			if diff := cmp.Diff(s, got); diff != "" {
				t.Fatalf("absent id must not write:\n%s", diff)
			}
		})
	}
}

func TestIntegrateTouchesOnlyFocusedEntity(t *testing.T) {
	s := domain.BigState()
	s.CurrentTeam, s.CurrentGame, s.CurrentVideo = "t1", "g3", "v7"

	got := VideoScope.Integrate(s, edited(VideoScope.Focus(s)))

	other, _ := At(Path{{Team, "t0"}, {Game, "g3"}, {Video, "v7"}})
	if diff := cmp.Diff(other.Focus(s), other.Focus(got)); diff != "" {
		t.Fatalf("sibling subtree changed:\n%s", diff)
	}
	target, _ := At(Path{{Team, "t1"}, {Game, "g3"}, {Video, "v7"}})
	if target.Focus(got).Name != "v7!" {
		t.Fatalf("target not written: %+v", target.Focus(got))
	}
	if got.EntityCount() != s.EntityCount() {
		t.Fatalf("entity count changed")
	}
	if s.Teams.Equal(got.Teams) {
		t.Fatalf("original snapshot should differ from the written one")
	}
	if orig := target.Focus(s); orig.Name != "v7" {
		t.Fatalf("original snapshot mutated: %+v", orig)
	}
}

func TestIntegratePinsIdentity(t *testing.T) {
	s := domain.SmallState()
	c := TeamScope.Focus(s)
	c.ID = "renamed"
	got := TeamScope.Integrate(s, c)
	if ids := got.Teams.IDs(); len(ids) != 1 || ids[0] != "t0" {
		t.Fatalf("identity changed: %v", ids)
	}
	// Get-put holds for everything but the pinned id.
	c.ID = "t0"
	if diff := cmp.Diff(c, TeamScope.Focus(got)); diff != "" {
		t.Fatalf("focus after pinned integrate:\n%s", diff)
	}
}

func TestComposeSatisfiesLensLaws(t *testing.T) {
	p := Compose(Compose(Teams, Key("t1")), Compose(ChildrenA, Key("m2")))
	s := domain.BigState()

	if diff := cmp.Diff(s, p.Integrate(s, p.Focus(s))); diff != "" {
		t.Fatalf("put-get violated:\n%s", diff)
	}
	c := edited(p.Focus(s))
	if diff := cmp.Diff(c, p.Focus(p.Integrate(s, c))); diff != "" {
		t.Fatalf("get-put violated:\n%s", diff)
	}

	missing := Compose(Compose(Teams, Key("t1")), Compose(ChildrenA, Key("m7")))
	if diff := cmp.Diff(s, missing.Integrate(s, c)); diff != "" {
		t.Fatalf("absent member wrote:\n%s", diff)
	}
}

func TestProjectAndIntegrateHelpers(t *testing.T) {
	s := domain.SmallState()
	v := Project(VideoScope, s)
	if v.ID != "v0" {
		t.Fatalf("project = %+v", v)
	}
	v.Name = "renamed"
	s = Integrate(VideoScope, s, v)
	if Project(VideoScope, s).Name != "renamed" {
		t.Fatalf("integrate did not write")
	}
}
