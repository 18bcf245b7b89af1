package popup

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jmylchreest/popwin/internal/content"
	"github.com/jmylchreest/popwin/internal/layout"
	"github.com/jmylchreest/popwin/internal/options"
	"github.com/jmylchreest/popwin/internal/registry"
	"github.com/jmylchreest/popwin/internal/timer"
)

// Deps are the collaborators a Manager works against.
type Deps struct {
	Screen    Screen
	Cursor    Cursor
	Scheduler timer.Scheduler
	Redraw    Redrawer
}

// Manager owns every live popup. It is not safe for concurrent use.
type Manager struct {
	screen    Screen
	cursor    Cursor
	scheduler timer.Scheduler
	redraw    Redrawer
	defaults  options.Defaults
	logger    *slog.Logger

	popups *registry.Registry[*PopupState]

	onClose CloseCallback
}

// NewManager creates a popup manager. A nil Screen reports 24x80, a nil
// Cursor sits at the origin. Without a Scheduler the time option is stored
// but never fires.
func NewManager(deps Deps, defaults options.Defaults, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Screen == nil {
		deps.Screen = FixedScreen{Rows: 24, Cols: 80}
	}
	if deps.Cursor == nil {
		deps.Cursor = CursorFunc(func() layout.Point { return layout.Point{} })
	}
	if deps.Redraw == nil {
		deps.Redraw = RedrawFunc(func() {})
	}
	if defaults.ZIndex == 0 {
		defaults.ZIndex = options.DefaultZIndex
	}

	return &Manager{
		screen:    deps.Screen,
		cursor:    deps.Cursor,
		scheduler: deps.Scheduler,
		redraw:    deps.Redraw,
		defaults:  defaults,
		logger:    logger,
		popups:    registry.New[*PopupState](),
	}
}

// OnClose sets the callback for popup close events.
func (m *Manager) OnClose(cb CloseCallback) {
	m.onClose = cb
}

// Windows exposes the id space shared with ordinary windows.
func (m *Manager) Windows() WindowIDs {
	return m.popups
}

// WindowIDs allocates ids for ordinary, non-popup windows.
type WindowIDs interface {
	ReserveWindow() int
	ReleaseWindow(id int)
}

// Create opens a popup in view showing payload. The returned error may
// carry option diagnostics alongside a valid id; id is 0 only when nothing
// was created.
func (m *Manager) Create(view int, payload content.Payload, opts options.Options) (int, error) {
	return m.create(view, payload, opts, false)
}

// AtCursor is Create with the popup placed just above the cursor, or below
// it when the cursor is on the first row.
func (m *Manager) AtCursor(view int, payload content.Payload, opts options.Options) (int, error) {
	return m.create(view, payload, opts, true)
}

func (m *Manager) create(view int, payload content.Payload, opts options.Options, atCursor bool) (int, error) {
	if err := payload.Validate(); err != nil {
		return 0, opError("create", 0, err)
	}
	scope, err := m.scopeFor(view, opts.Tab)
	if err != nil {
		return 0, opError("create", 0, err)
	}

	id := m.popups.NextID()
	buf := content.NewBuffer()
	if err := content.Load(buf, payload); err != nil {
		return 0, opError("create", id, err)
	}
	buf.Lock()

	var resolved options.Resolved
	var optErr error
	if atCursor {
		resolved, optErr = options.ResolveAtCursor(opts, m.defaults, m.cursor.Position())
	} else {
		resolved, optErr = options.Resolve(opts, m.defaults)
	}

	p := &PopupState{
		ID:          id,
		Constraints: resolved.Constraints,
		ZIndex:      resolved.ZIndex,
		Time:        resolved.Time,
		Highlight:   resolved.Highlight,
		Buffer:      buf,
	}
	m.arm(p)
	m.layout(p, 0)

	if err := m.popups.Insert(scope, id, p); err != nil {
		m.release(p)
		return 0, opError("create", id, err)
	}
	m.redraw.RequestFullRedraw()

	m.logger.Debug("created popup",
		"id", id,
		"scope", scope.String(),
		"row", p.Layout.Row,
		"col", p.Layout.Col,
		"width", p.Layout.Width,
		"height", p.Layout.Height,
		"zindex", p.ZIndex,
		"time", p.Time,
	)
	if optErr != nil {
		m.logger.Debug("popup options partly applied", "id", id, "error", optErr)
	}

	return id, opError("create", id, optErr)
}

// scopeFor maps the tab option to a scope: absent or 0 is the view's own
// scope, negative is global.
func (m *Manager) scopeFor(view int, tab *int) (registry.Scope, error) {
	switch {
	case tab == nil || *tab == 0:
		return registry.View(view), nil
	case *tab < 0:
		return registry.Global, nil
	default:
		return registry.Scope{}, fmt.Errorf("%w: tab %d", ErrNotImplemented, *tab)
	}
}

// arm schedules auto-close when the popup has a time.
func (m *Manager) arm(p *PopupState) {
	if p.Time <= 0 {
		return
	}
	if m.scheduler == nil {
		m.logger.Warn("no scheduler, popup will not auto-close", "id", p.ID)
		return
	}
	id := p.ID
	p.timer = m.scheduler.Schedule(p.Time, func() {
		m.logger.Debug("popup timer fired", "id", id)
		m.Close(id)
	})
}

// layout runs the layout engine against the live screen and cursor.
func (m *Manager) layout(p *PopupState, prevHeight int) {
	p.Cursor = m.cursor.Position()
	p.Layout = layout.Resolve(
		p.Constraints,
		layout.Metrics{Widths: p.Buffer.Widths(), Tick: p.Buffer.ChangeTick()},
		m.screen.Size(),
		p.Cursor,
		prevHeight,
	)
}

// lookup finds a popup for operations that ignore unknown ids. It returns
// nil and no error when id is unknown.
func (m *Manager) lookup(op string, id int) (*PopupState, error) {
	p, err := m.popups.Find(id)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, registry.ErrNotFound) {
		m.logger.Debug("ignoring unknown popup", "op", op, "id", id)
		return nil, nil
	}
	return nil, opError(op, id, err)
}

// Move re-applies the size and position keys of opts and lays the popup
// out again. Content, zindex, highlight and time are not touched.
func (m *Manager) Move(id int, opts options.Options) error {
	p, err := m.lookup("move", id)
	if p == nil {
		return err
	}

	c, optErr := options.ResolveMove(p.Constraints, opts)
	p.Constraints = c
	m.layout(p, p.Layout.Height)
	m.redraw.RequestFullRedraw()

	m.logger.Debug("moved popup", "id", id, "row", p.Layout.Row, "col", p.Layout.Col)
	return opError("move", id, optErr)
}

// Hide hides a popup. Hiding a hidden popup does nothing.
func (m *Manager) Hide(id int) error {
	return m.setHidden("hide", id, true)
}

// Show shows a hidden popup. Showing a visible popup does nothing.
func (m *Manager) Show(id int) error {
	return m.setHidden("show", id, false)
}

func (m *Manager) setHidden(op string, id int, hidden bool) error {
	p, err := m.lookup(op, id)
	if p == nil {
		return err
	}
	if p.Hidden == hidden {
		return nil
	}
	p.Hidden = hidden
	m.redraw.RequestFullRedraw()
	return nil
}

// Close closes a popup from whichever scope holds it. Unknown ids are
// ignored, so a timer firing after an explicit close is harmless.
func (m *Manager) Close(id int) {
	p, ok := m.popups.RemoveByID(id)
	if !ok {
		m.logger.Debug("ignoring close of unknown popup", "id", id)
		return
	}
	m.release(p)
	m.redraw.RequestFullRedraw()
	m.logger.Debug("closed popup", "id", id, "remaining", m.popups.Len())

	if m.onClose != nil {
		m.onClose(id)
	}
}

// release cancels the popup's timer and gives up its buffer.
func (m *Manager) release(p *PopupState) {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.Buffer.Unlock()
}

// CloseAll closes every global popup and then every popup of view.
func (m *Manager) CloseAll(view int) {
	for _, s := range []registry.Scope{registry.Global, registry.View(view)} {
		for {
			id, _, ok := m.popups.Front(s)
			if !ok {
				break
			}
			m.Close(id)
		}
	}
}

// CloseView closes every popup local to view, as when the view goes away.
func (m *Manager) CloseView(view int) {
	closed := m.popups.DropView(view)
	for _, p := range closed {
		m.release(p)
	}
	if len(closed) == 0 {
		return
	}
	m.redraw.RequestFullRedraw()
	m.logger.Debug("closed view popups", "view", view, "count", len(closed))
	if m.onClose != nil {
		for _, p := range closed {
			m.onClose(p.ID)
		}
	}
}

// Position returns where a popup is. Unknown ids give the zero value.
func (m *Manager) Position(id int) (PositionInfo, error) {
	p, err := m.lookup("getpos", id)
	if p == nil {
		return PositionInfo{}, err
	}
	return p.position(), nil
}

// Options returns the options stored for a popup. Unknown ids give the zero
// value.
func (m *Manager) Options(id int) (OptionsInfo, error) {
	p, err := m.lookup("getoptions", id)
	if p == nil {
		return OptionsInfo{}, err
	}
	return p.options(), nil
}

// SetContent replaces a popup's text and lays it out again.
func (m *Manager) SetContent(id int, payload content.Payload) error {
	p, err := m.lookup("settext", id)
	if p == nil {
		return err
	}
	if err := p.Buffer.Replace(payload); err != nil {
		return opError("settext", id, err)
	}
	m.layout(p, 0)
	m.redraw.RequestFullRedraw()
	return nil
}

// Reflow lays out again every popup visible from view whose content changed,
// whose screen changed size, or whose cursor-relative position moved since
// its last layout. It returns how many popups were laid out.
func (m *Manager) Reflow(view int) int {
	screen := m.screen.Size()
	screen = layout.Screen{Rows: max(screen.Rows, 1), Cols: max(screen.Cols, 1)}
	cursor := m.cursor.Position()

	n := 0
	m.each(view, func(p *PopupState) {
		stale := p.Layout.Tick != p.Buffer.ChangeTick() ||
			p.Layout.Screen != screen ||
			(p.cursorRelative() && p.Cursor != cursor)
		if !stale {
			return
		}
		m.layout(p, 0)
		n++
	})
	if n > 0 {
		m.redraw.RequestFullRedraw()
	}
	return n
}

// AnyVisible reports whether view shows at least one popup.
func (m *Manager) AnyVisible(view int) bool {
	found := false
	for _, s := range []registry.Scope{registry.Global, registry.View(view)} {
		m.popups.Each(s, func(_ int, p *PopupState) bool {
			found = !p.Hidden
			return !found
		})
		if found {
			return true
		}
	}
	return false
}

// Visible returns the popups view shows, back to front: ordered by zindex
// and then by id.
func (m *Manager) Visible(view int) []Snapshot {
	var out []Snapshot
	m.each(view, func(p *PopupState) {
		if !p.Hidden {
			out = append(out, p.snapshot())
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of live popups in every scope.
func (m *Manager) Count() int {
	return m.popups.Len()
}

// IDs returns the ids of the popups view can see, global ones first.
func (m *Manager) IDs(view int) []int {
	return append(m.popups.IDs(registry.Global), m.popups.IDs(registry.View(view))...)
}

// each visits the global popups and then those of view.
func (m *Manager) each(view int, fn func(p *PopupState)) {
	for _, s := range []registry.Scope{registry.Global, registry.View(view)} {
		m.popups.Each(s, func(_ int, p *PopupState) bool {
			fn(p)
			return true
		})
	}
}
