package script

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/popwin/internal/config"
	"github.com/jmylchreest/popwin/internal/content"
	"github.com/jmylchreest/popwin/internal/layout"
	"github.com/jmylchreest/popwin/internal/options"
	"github.com/jmylchreest/popwin/internal/popup"
	"github.com/jmylchreest/popwin/internal/render"
	"github.com/jmylchreest/popwin/internal/timer"
)

// Report is the outcome of one scenario run.
type Report struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	Scenario string        `json:"scenario" yaml:"scenario"`
	Steps    []StepResult  `json:"steps" yaml:"steps"`
	Failures int           `json:"failures" yaml:"failures"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"` // Virtual time
	Redraws  int           `json:"redraws" yaml:"redraws"`
	Open     int           `json:"open" yaml:"open"` // Popups left open
}

// Passed reports whether every expectation held.
func (r *Report) Passed() bool {
	return r.Failures == 0
}

// StepResult is what one step produced.
type StepResult struct {
	Index    int                 `json:"index" yaml:"index"`
	Op       Op                  `json:"op" yaml:"op"`
	Name     string              `json:"name,omitempty" yaml:"name,omitempty"`
	ID       int                 `json:"id,omitempty" yaml:"id,omitempty"`
	At       time.Duration       `json:"at" yaml:"at"`
	Error    string              `json:"error,omitempty" yaml:"error,omitempty"`
	Position *popup.PositionInfo `json:"position,omitempty" yaml:"position,omitempty"`
	Options  *popup.OptionsInfo  `json:"options,omitempty" yaml:"options,omitempty"`
	ClosesIn time.Duration       `json:"closes_in,omitempty" yaml:"closes_in,omitempty"`
	Fired    int                 `json:"fired,omitempty" yaml:"fired,omitempty"`
	Reflowed int                 `json:"reflowed,omitempty" yaml:"reflowed,omitempty"`
	Count    int                 `json:"count" yaml:"count"`
	Frame    []string            `json:"frame,omitempty" yaml:"frame,omitempty"`
	Failures []string            `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// errorKinds maps the names scenarios use for expected errors.
var errorKinds = map[string]error{
	"InvalidContent":    popup.ErrInvalidContent,
	"InvalidArgument":   popup.ErrInvalidArgument,
	"InvalidExpression": popup.ErrInvalidExpression,
	"NotPopupWindow":    popup.ErrNotPopupWindow,
	"NotImplemented":    popup.ErrNotImplemented,
}

// Runner executes scenarios.
type Runner struct {
	cfg    *config.Config
	theme  *render.Theme
	logger *slog.Logger
}

// NewRunner creates a runner. A nil cfg uses the defaults and a nil theme
// renders frames unstyled.
func NewRunner(cfg *config.Config, theme *render.Theme, logger *slog.Logger) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, theme: theme, logger: logger}
}

// execution is the state of one scenario run.
type execution struct {
	sc      *Scenario
	m       *popup.Manager
	clock   *timer.Manual
	screen  layout.Screen
	cursor  layout.Point
	view    int
	redraws int
	names   map[string]int
	created map[string]time.Duration
	theme   *render.Theme
	logger  *slog.Logger
}

// Run executes sc. Expectation failures are recorded in the report; the
// error is only for scenarios that cannot be run, such as a step naming a
// popup that was never created, or a cancelled context.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	runID := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	logger := r.logger.With("run_id", runID, "scenario", sc.Name)

	st := &execution{
		sc:      sc,
		clock:   timer.NewManual(),
		screen:  sc.Screen,
		cursor:  sc.Cursor,
		view:    sc.View,
		names:   make(map[string]int),
		created: make(map[string]time.Duration),
		theme:   r.theme,
		logger:  logger,
	}
	if st.screen.Rows == 0 || st.screen.Cols == 0 {
		st.screen = r.cfg.ScreenSize()
	}
	if st.view == 0 {
		st.view = 1
	}
	st.m = popup.NewManager(popup.Deps{
		Screen:    popup.ScreenFunc(func() layout.Screen { return st.screen }),
		Cursor:    popup.CursorFunc(func() layout.Point { return st.cursor }),
		Scheduler: st.clock,
		Redraw:    popup.RedrawFunc(func() { st.redraws++ }),
	}, r.cfg.OptionDefaults(), logger)

	report := &Report{RunID: runID, Scenario: sc.Name}
	logger.Info("running scenario", "steps", len(sc.Steps))

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := st.step(i+1, step)
		if err != nil {
			return report, err
		}
		res.Count = st.m.Count()
		res.At = st.clock.Now()
		res.Failures = append(res.Failures, st.check(step, res)...)
		report.Failures += len(res.Failures)
		report.Steps = append(report.Steps, res)
	}

	report.Elapsed = st.clock.Now()
	report.Redraws = st.redraws
	report.Open = st.m.Count()
	logger.Info("scenario finished", "failures", report.Failures, "open", report.Open)
	return report, nil
}

func (st *execution) id(index int, step Step) (int, error) {
	id, ok := st.names[step.Name]
	if !ok {
		return 0, &ScriptError{Step: index, Op: step.Op, Cause: fmt.Errorf("%w: %q", ErrUnknownName, step.Name)}
	}
	return id, nil
}

func (st *execution) step(index int, step Step) (StepResult, error) {
	res := StepResult{Index: index, Op: step.Op, Name: step.Name}
	var opErr error

	switch step.Op {
	case OpCreate, OpAtCursor:
		payload, cerr := content.Decode(step.Content)
		if cerr != nil {
			opErr = cerr
			break
		}
		opts, derr := options.Decode(step.Options)
		var id int
		var err error
		if step.Op == OpAtCursor {
			id, err = st.m.AtCursor(st.view, payload, opts)
		} else {
			id, err = st.m.Create(st.view, payload, opts)
		}
		opErr = errors.Join(derr, err)
		if id != 0 {
			res.ID = id
			if step.Name != "" {
				st.names[step.Name] = id
				st.created[step.Name] = st.clock.Now()
			}
		}

	case OpMove:
		id, err := st.id(index, step)
		if err != nil {
			return res, err
		}
		res.ID = id
		opts, derr := options.Decode(step.Options)
		opErr = errors.Join(derr, st.m.Move(id, opts))

	case OpHide, OpShow:
		id, err := st.id(index, step)
		if err != nil {
			return res, err
		}
		res.ID = id
		if step.Op == OpHide {
			opErr = st.m.Hide(id)
		} else {
			opErr = st.m.Show(id)
		}

	case OpClose:
		id, err := st.id(index, step)
		if err != nil {
			return res, err
		}
		res.ID = id
		st.m.Close(id)

	case OpCloseAll:
		st.m.CloseAll(st.view)

	case OpCloseView:
		view := step.View
		if view == 0 {
			view = st.view
		}
		st.m.CloseView(view)

	case OpSetText:
		id, err := st.id(index, step)
		if err != nil {
			return res, err
		}
		res.ID = id
		payload, cerr := content.Decode(step.Content)
		if cerr != nil {
			opErr = cerr
			break
		}
		opErr = st.m.SetContent(id, payload)

	case OpGetPos:
		id, err := st.id(index, step)
		if err != nil {
			return res, err
		}
		res.ID = id
		pos, perr := st.m.Position(id)
		opErr = perr
		res.Position = &pos

	case OpGetOptions:
		id, err := st.id(index, step)
		if err != nil {
			return res, err
		}
		res.ID = id
		info, oerr := st.m.Options(id)
		opErr = oerr
		res.Options = &info
		if info.Time > 0 {
			res.ClosesIn = st.created[step.Name] + info.Time - st.clock.Now()
		}

	case OpCursor:
		st.cursor = layout.Point{Row: step.Row, Col: step.Col}

	case OpScreen:
		if step.Rows < 1 || step.Cols < 1 {
			return res, &ScriptError{Step: index, Op: step.Op, Cause: fmt.Errorf("%w: screen needs rows and cols", ErrBadStep)}
		}
		st.screen = layout.Screen{Rows: step.Rows, Cols: step.Cols}

	case OpView:
		if step.View == 0 {
			return res, &ScriptError{Step: index, Op: step.Op, Cause: fmt.Errorf("%w: view needs a number", ErrBadStep)}
		}
		st.view = step.View

	case OpAdvance:
		res.Fired = st.clock.Advance(time.Duration(step.Duration))

	case OpReflow:
		res.Reflowed = st.m.Reflow(st.view)

	case OpRender:
		frame := render.Compose(strings.Join(st.sc.Base, "\n"), st.screen, st.m.Visible(st.view), st.theme)
		res.Frame = strings.Split(ansi.Strip(frame), "\n")

	case OpWindow:
		if step.Name == "" {
			return res, &ScriptError{Step: index, Op: step.Op, Cause: fmt.Errorf("%w: window needs a name", ErrBadStep)}
		}
		id := st.m.Windows().ReserveWindow()
		st.names[step.Name] = id
		res.ID = id

	default:
		return res, &ScriptError{Step: index, Op: step.Op, Cause: ErrUnknownOp}
	}

	if opErr != nil {
		res.Error = opErr.Error()
		st.logger.Debug("step reported an error", "step", index, "op", step.Op, "error", opErr)
	}
	res.Failures = st.checkError(step, opErr)
	return res, nil
}

// checkError compares an operation error with the expected one.
func (st *execution) checkError(step Step, err error) []string {
	want := ""
	if step.Expect != nil {
		want = step.Expect.Error
	}
	switch {
	case want == "" && err != nil:
		return []string{"unexpected error: " + err.Error()}
	case want == "":
		return nil
	case err == nil:
		return []string{"expected error " + want + ", got none"}
	case want == "any":
		return nil
	}
	kind, ok := errorKinds[want]
	if !ok {
		return []string{"unknown error kind " + want}
	}
	if !errors.Is(err, kind) {
		return []string{fmt.Sprintf("expected error %s, got %v", want, err)}
	}
	return nil
}

// check compares a step result with its expectations.
func (st *execution) check(step Step, res StepResult) []string {
	e := step.Expect
	if e == nil {
		return nil
	}
	var fails []string
	checkInt := func(field string, want *int, got int) {
		if want != nil && *want != got {
			fails = append(fails, fmt.Sprintf("%s: want %d, got %d", field, *want, got))
		}
	}

	pos := res.Position
	if pos == nil && res.ID != 0 && (e.Row != nil || e.Col != nil || e.Width != nil || e.Height != nil || e.Visible != nil) {
		p, _ := st.m.Position(res.ID)
		pos = &p
	}
	if pos != nil {
		checkInt("row", e.Row, pos.Row)
		checkInt("col", e.Col, pos.Col)
		checkInt("width", e.Width, pos.Width)
		checkInt("height", e.Height, pos.Height)
		if e.Visible != nil && *e.Visible != pos.Visible {
			fails = append(fails, fmt.Sprintf("visible: want %t, got %t", *e.Visible, pos.Visible))
		}
	}
	checkInt("count", e.Count, res.Count)

	if e.Pos != "" || e.ZIndex != nil || e.Line != "" {
		opts := res.Options
		if opts == nil {
			o, _ := st.m.Options(res.ID)
			opts = &o
		}
		if e.Pos != "" && e.Pos != opts.Pos.String() {
			fails = append(fails, fmt.Sprintf("pos: want %s, got %s", e.Pos, opts.Pos))
		}
		checkInt("zindex", e.ZIndex, opts.ZIndex)
		if e.Line != "" && e.Line != opts.Line.String() {
			fails = append(fails, fmt.Sprintf("line: want %s, got %s", e.Line, opts.Line))
		}
	}

	if e.Frame != nil {
		for i, want := range e.Frame {
			got := ""
			if i < len(res.Frame) {
				got = res.Frame[i]
			}
			if strings.TrimRight(got, " ") != strings.TrimRight(want, " ") {
				fails = append(fails, fmt.Sprintf("frame line %d: want %q, got %q", i, want, got))
			}
		}
	}
	return fails
}
