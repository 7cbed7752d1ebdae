// Package scenario loads scripted action sequences and replays them
// through a Store.
package scenario

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/jask/teamperf/internal/core"
	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/scope"
)

// ErrUnknownAction is wrapped by Compile when a step names no known action.
var ErrUnknownAction = errors.New("unknown action")

// Step is one scripted action as written in a scenario file.
type Step struct {
	Action string  `toml:"action" yaml:"action"`
	Repeat int     `toml:"repeat" yaml:"repeat"`
	Wait   string  `toml:"wait" yaml:"wait"`
	Time   float64 `toml:"time" yaml:"time"`
	Path   string  `toml:"path" yaml:"path"`
	Op     string  `toml:"op" yaml:"op"`
	Value  string  `toml:"value" yaml:"value"`
}

// File is the decoded scenario document.
type File struct {
	Name  string `toml:"name" yaml:"name"`
	Start string `toml:"start" yaml:"start"`
	Steps []Step `toml:"step" yaml:"steps"`
}

// Planned is a compiled step.
type Planned struct {
	Action core.Action
	Repeat int
	Wait   time.Duration
}

// Plan is a compiled scenario ready to replay.
type Plan struct {
	Name    string
	Initial domain.State
	Steps   []Planned
}

// Actions is the vocabulary a step may name.
var Actions = []string{"toggle-timer", "toggle-state", "tick", "increment", "leaf"}

// Load reads a scenario by extension: .toml, .yaml or .yml.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read scenario: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return DecodeTOML(data)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return File{}, fmt.Errorf("unsupported scenario format %q", filepath.Ext(path))
	}
}

func DecodeTOML(data []byte) (File, error) {
	var f File
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode toml scenario: %w", err)
	}
	return f, nil
}

func DecodeYAML(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode yaml scenario: %w", err)
	}
	return f, nil
}

// Compile turns a decoded file into actions.
func Compile(f File) (Plan, error) {
	plan := Plan{Name: f.Name}
	switch strings.ToLower(strings.TrimSpace(f.Start)) {
	case "", "small":
		plan.Initial = domain.SmallState()
	case "big":
		plan.Initial = domain.BigState()
	default:
		return Plan{}, fmt.Errorf("start must be small or big, got %q", f.Start)
	}

	for i, s := range f.Steps {
		a, err := compileStep(s)
		if err != nil {
			return Plan{}, fmt.Errorf("step %d: %w", i+1, err)
		}
		p := Planned{Action: a, Repeat: s.Repeat}
		if p.Repeat <= 0 {
			p.Repeat = 1
		}
		if s.Wait != "" {
			d, err := time.ParseDuration(s.Wait)
			if err != nil {
				return Plan{}, fmt.Errorf("step %d: wait: %w", i+1, err)
			}
			p.Wait = d
		}
		plan.Steps = append(plan.Steps, p)
	}
	return plan, nil
}

func compileStep(s Step) (core.Action, error) {
	name := strings.ToLower(strings.TrimSpace(s.Action))
	switch name {
	case "toggle-timer":
		return core.ToggleTimer{}, nil
	case "toggle-state":
		return core.ToggleState{}, nil
	case "tick":
		return core.Tick{Time: s.Time}, nil
	case "increment":
		return core.Increment{}, nil
	case "leaf":
		path, err := scope.ParsePath(s.Path)
		if err != nil {
			return nil, err
		}
		if s.Op == "" {
			return nil, fmt.Errorf("leaf step needs an op")
		}
		return core.Wrap(path, core.Leaf{Op: s.Op, Value: s.Value}), nil
	}
	if hint := Suggest(name); hint != "" {
		return nil, fmt.Errorf("%w %q, did you mean %q?", ErrUnknownAction, s.Action, hint)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownAction, s.Action)
}

// Suggest returns the closest known action name within an edit distance
// of 3, or "".
func Suggest(name string) string {
	best, bestDist := "", 4
	for _, known := range Actions {
		if d := levenshtein.ComputeDistance(name, known); d < bestDist {
			best, bestDist = known, d
		}
	}
	return best
}

// Replay sends every step to store in order, then waits for the store to
// apply them.
func Replay(ctx context.Context, store *core.Store, plan Plan) error {
	for i, step := range plan.Steps {
		for n := 0; n < step.Repeat; n++ {
			if err := store.Send(step.Action); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		if step.Wait > 0 {
			if err := store.Flush(ctx); err != nil {
				return err
			}
			select {
			case <-time.After(step.Wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return store.Flush(ctx)
}
