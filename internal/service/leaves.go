package service

import (
	"github.com/jask/teamperf/internal/core"
	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/scope"
)

// OpRename sets an entity's Name to the leaf value.
const OpRename = "rename"

func renameLeaf(e domain.Entity, l core.Leaf) domain.Entity {
	if l.Op == OpRename {
		e.Name = l.Value
	}
	return e
}

// LeafReducers returns the entity-level handlers the CLI installs. Only
// renaming is implemented; every other leaf op is left untouched.
func LeafReducers() map[scope.Level]core.LeafReducer {
	return map[scope.Level]core.LeafReducer{
		scope.Team:   renameLeaf,
		scope.Game:   renameLeaf,
		scope.Video:  renameLeaf,
		scope.Member: renameLeaf,
	}
}
