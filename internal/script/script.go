// Package script runs YAML popup scenarios against a popup.Manager on a
// virtual clock and reports what happened at each step.
package script

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popwin/internal/layout"
)

// Script errors.
var (
	ErrUnknownOp   = errors.New("unknown op")
	ErrUnknownName = errors.New("unknown popup name")
	ErrBadStep     = errors.New("malformed step")
)

// Op names a step action.
type Op string

// Step actions.
const (
	OpCreate     Op = "create"
	OpAtCursor   Op = "atcursor"
	OpMove       Op = "move"
	OpHide       Op = "hide"
	OpShow       Op = "show"
	OpClose      Op = "close"
	OpCloseAll   Op = "closeall"
	OpCloseView  Op = "closeview"
	OpSetText    Op = "settext"
	OpGetPos     Op = "getpos"
	OpGetOptions Op = "getoptions"
	OpCursor     Op = "cursor"
	OpScreen     Op = "screen"
	OpView       Op = "view"
	OpAdvance    Op = "advance"
	OpReflow     Op = "reflow"
	OpRender     Op = "render"
	OpWindow     Op = "window"
)

// Ops returns every step action.
func Ops() []Op {
	return []Op{
		OpCreate, OpAtCursor, OpMove, OpHide, OpShow, OpClose, OpCloseAll,
		OpCloseView, OpSetText, OpGetPos, OpGetOptions, OpCursor, OpScreen,
		OpView, OpAdvance, OpReflow, OpRender, OpWindow,
	}
}

// Scenario is a scripted sequence of popup operations.
type Scenario struct {
	Name   string        `yaml:"name"`
	Screen layout.Screen `yaml:"screen"` // Zero uses the configured screen
	Cursor layout.Point  `yaml:"cursor"`
	View   int           `yaml:"view"` // Current view, default 1
	Base   []string      `yaml:"base"` // Text under the popups when rendering
	Steps  []Step        `yaml:"steps"`
}

// Step is one scenario action. Which fields matter depends on Op.
type Step struct {
	Op       Op             `yaml:"op"`
	Name     string         `yaml:"name,omitempty"`
	Content  any            `yaml:"content,omitempty"`
	Options  map[string]any `yaml:"options,omitempty"`
	Duration Duration       `yaml:"duration,omitempty"`
	Row      int            `yaml:"row,omitempty"`
	Col      int            `yaml:"col,omitempty"`
	Rows     int            `yaml:"rows,omitempty"`
	Cols     int            `yaml:"cols,omitempty"`
	View     int            `yaml:"view,omitempty"`
	Expect   *Expect        `yaml:"expect,omitempty"`
}

// Expect lists what a step should produce. Unset fields are not checked.
type Expect struct {
	Row     *int     `yaml:"row,omitempty"`
	Col     *int     `yaml:"col,omitempty"`
	Width   *int     `yaml:"width,omitempty"`
	Height  *int     `yaml:"height,omitempty"`
	Visible *bool    `yaml:"visible,omitempty"`
	Count   *int     `yaml:"count,omitempty"`
	Pos     string   `yaml:"pos,omitempty"`
	ZIndex  *int     `yaml:"zindex,omitempty"`
	Line    string   `yaml:"line,omitempty"`
	Frame   []string `yaml:"frame,omitempty"`
	// Error names the expected failure: an error kind such as
	// "InvalidContent", or "any". Empty expects success.
	Error string `yaml:"error,omitempty"`
}

// Duration is a time.Duration read from "250ms" style strings or integer
// milliseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if ms, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Parse decodes a scenario and checks every step names a known op.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if sc.View == 0 {
		sc.View = 1
	}
	known := make(map[Op]bool)
	for _, op := range Ops() {
		known[op] = true
	}
	for i, st := range sc.Steps {
		if !known[st.Op] {
			return nil, &ScriptError{Step: i + 1, Op: st.Op, Cause: ErrUnknownOp}
		}
	}
	return &sc, nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ScriptError is a scenario that cannot be run as written.
type ScriptError struct {
	Step  int
	Op    Op
	Cause error
}

func (e *ScriptError) Error() string {
	msg := fmt.Sprintf("step %d", e.Step)
	if e.Op != "" {
		msg += " (" + string(e.Op) + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}
