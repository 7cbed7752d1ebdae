package domain

import "fmt"

// State is the global root of the tree.
//
// The Current* ids choose which child a projection focuses on. Nothing
// guarantees they reference an existing entity.
type State struct {
	CurrentTeam   string
	CurrentGame   string
	CurrentVideo  string
	CurrentMember string

	Teams Entities

	Clock   float64
	TimerOn bool
}

// EntityCount counts every entity in the tree.
func (s State) EntityCount() int {
	n := 0
	for _, t := range s.Teams.Values() {
		n += t.Size()
	}
	return n
}

// IsSmall reports whether the tree has exactly one team.
func (s State) IsSmall() bool { return s.Teams.Len() == 1 }

// SmallState builds the minimal tree: one team, member, game and video.
func SmallState() State {
	return generate(1, 1, 1, 1)
}

// BigState builds the populated tree: 2 teams with 5 members and 5 games
// each, and 15 videos per game.
func BigState() State {
	return generate(2, 5, 5, 15)
}

func generate(teams, members, games, videos int) State {
	var out Entities
	for t := 0; t < teams; t++ {
		team := seeded("t", t)
		for m := 0; m < members; m++ {
			team.ChildrenA = team.ChildrenA.Upsert(seeded("m", m))
		}
		for g := 0; g < games; g++ {
			game := seeded("g", g)
			for v := 0; v < videos; v++ {
				game.ChildrenB = game.ChildrenB.Upsert(seeded("v", v))
			}
			team.ChildrenB = team.ChildrenB.Upsert(game)
		}
		out = out.Upsert(team)
	}

	s := State{Teams: out}
	if team, ok := out.First(); ok {
		s.CurrentTeam = team.ID
		if m, ok := team.ChildrenA.First(); ok {
			s.CurrentMember = m.ID
		}
		if g, ok := team.ChildrenB.First(); ok {
			s.CurrentGame = g.ID
			if v, ok := g.ChildrenB.First(); ok {
				s.CurrentVideo = v.ID
			}
		}
	}
	return s
}

// seeded fills the payload fields deterministically from the index.
func seeded(prefix string, i int) Entity {
	id := fmt.Sprintf("%s%d", prefix, i)
	return Entity{
		ID:     id,
		Name:   id,
		Notes:  "notes " + id,
		Tag:    prefix,
		Rank:   i,
		Count:  i * 10,
		Kind:   Kind(i % 4),
		Score:  float64(i) * 1.5,
		Weight: float64(i) / 4,
	}
}
