// Package tui provides the BubbleTea demo that draws popups over a text view.
package tui

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popwin/internal/config"
	"github.com/jmylchreest/popwin/internal/content"
	"github.com/jmylchreest/popwin/internal/layout"
	"github.com/jmylchreest/popwin/internal/options"
	"github.com/jmylchreest/popwin/internal/popup"
	"github.com/jmylchreest/popwin/internal/render"
	"github.com/jmylchreest/popwin/internal/timer"
)

// Views is how many views the demo cycles through.
const Views = 3

// state is shared between the model copies bubbletea passes around and the
// popup manager callbacks.
type state struct {
	screen layout.Screen
	cursor layout.Point
	opened []int // Popup ids, newest last
}

// Model is the demo TUI model.
type Model struct {
	cfg    *config.Config
	theme  *render.Theme
	mgr    *popup.Manager
	queue  *timer.Queue
	logger *slog.Logger
	st     *state

	keys KeyMap
	help help.Model

	base     []string
	view     int
	width    int
	height   int
	ready    bool
	showHelp bool

	statusMsg string
	statusErr bool

	configCh <-chan *config.Config
}

// Options configures the demo.
type Options struct {
	Config   *config.Config
	Theme    *render.Theme
	Base     []string              // Text under the popups, default sample text
	ConfigCh <-chan *config.Config // Reloaded configs, nil = no reloading
	Logger   *slog.Logger
}

// New creates a demo model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = render.ThemeFromConfig(cfg, nil)
	}
	base := opts.Base
	if len(base) == 0 {
		base = sampleText()
	}

	st := &state{screen: cfg.ScreenSize()}
	queue := timer.NewQueue(16, logger)
	mgr := popup.NewManager(popup.Deps{
		Screen:    popup.ScreenFunc(func() layout.Screen { return st.screen }),
		Cursor:    popup.CursorFunc(func() layout.Point { return st.cursor }),
		Scheduler: queue,
	}, cfg.OptionDefaults(), logger)
	mgr.OnClose(func(id int) {
		st.opened = slices.DeleteFunc(st.opened, func(v int) bool { return v == id })
	})

	return Model{
		cfg:      cfg,
		theme:    theme,
		mgr:      mgr,
		queue:    queue,
		logger:   logger,
		st:       st,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		base:     base,
		view:     1,
		showHelp: cfg.Demo.ShowHelp,
		configCh: opts.ConfigCh,
	}
}

// Manager returns the popup manager behind the demo.
func (m Model) Manager() *popup.Manager {
	return m.mgr
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitTimer(m.queue),
		m.watchConfig,
	)
}

type timerMsg struct {
	fired timer.Fired
}

// waitTimer waits for the next expired popup timer.
func waitTimer(q *timer.Queue) tea.Cmd {
	return func() tea.Msg {
		return timerMsg{fired: <-q.C()}
	}
}

type configMsg struct {
	cfg *config.Config
}

// watchConfig waits for a reloaded config.
func (m Model) watchConfig() tea.Msg {
	if m.configCh == nil {
		return nil
	}
	cfg, ok := <-m.configCh
	if !ok {
		return nil
	}
	return configMsg{cfg: cfg}
}

type statusMsg struct {
	text  string
	isErr bool
}

type copyResultMsg struct {
	err error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case timerMsg:
		if msg.fired.Run() {
			m.logger.Debug("popup timer ran", "open", m.mgr.Count())
		}
		return m, waitTimer(m.queue)

	case configMsg:
		m.cfg.Highlights = msg.cfg.Highlights
		m.cfg.Popup.Highlight = msg.cfg.Popup.Highlight
		m.cfg.Demo = msg.cfg.Demo
		m.theme = render.ThemeFromConfig(m.cfg, m.theme.Renderer())
		m.showHelp = m.cfg.Demo.ShowHelp
		m.statusMsg = "config reloaded"
		m.statusErr = false
		return m, m.watchConfig

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Copy failed: " + msg.err.Error(), isErr: true}
			}
		}
		return m, func() tea.Msg {
			return statusMsg{text: "Copied to clipboard", isErr: false}
		}
	}

	return m, nil
}

// resize recomputes the popup screen from the window and lays popups out
// again.
func (m *Model) resize() {
	rows := m.height
	if m.showHelp {
		rows--
	}
	m.st.screen = layout.Screen{Rows: max(rows, 1), Cols: max(m.width, 1)}
	m.st.cursor.Row = min(m.st.cursor.Row, m.st.screen.Rows-1)
	m.st.cursor.Col = min(m.st.cursor.Col, m.st.screen.Cols-1)
	m.mgr.Reflow(m.view)
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur := &m.st.cursor
	scr := m.st.screen

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.queue.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		cur.Row = max(cur.Row-1, 0)
	case key.Matches(msg, m.keys.Down):
		cur.Row = min(cur.Row+1, scr.Rows-1)
	case key.Matches(msg, m.keys.Left):
		cur.Col = max(cur.Col-1, 0)
	case key.Matches(msg, m.keys.Right):
		cur.Col = min(cur.Col+1, scr.Cols-1)

	case key.Matches(msg, m.keys.Hint):
		text := fmt.Sprintf("row %d, col %d", cur.Row+1, cur.Col+1)
		return m.open(m.mgr.AtCursor(m.view, content.Text(text), m.timed(options.Options{})))

	case key.Matches(msg, m.keys.Menu):
		return m.open(m.mgr.Create(m.view, menuContent(), options.Options{
			Pos:       options.String("center"),
			MinWidth:  options.Int(16),
			Highlight: options.String("Pmenu"),
		}))

	case key.Matches(msg, m.keys.Global):
		return m.open(m.mgr.Create(m.view, content.Lines("notice", fmt.Sprintf("visible from every view (%d open)", m.mgr.Count()+1)), m.timed(options.Options{
			Line:      options.Coord(layout.At(1)),
			Col:       options.Coord(layout.At(scr.Cols)),
			Pos:       options.String("topright"),
			ZIndex:    options.Int(200),
			Highlight: options.String("WarningMsg"),
			Tab:       options.Int(-1),
		})))

	case key.Matches(msg, m.keys.Toggle):
		id, ok := m.last()
		if !ok {
			return m, nil
		}
		pos, err := m.mgr.Position(id)
		if err == nil {
			if pos.Visible {
				err = m.mgr.Hide(id)
			} else {
				err = m.mgr.Show(id)
			}
		}
		return m.status(err)

	case key.Matches(msg, m.keys.Close):
		if id, ok := m.last(); ok {
			m.mgr.Close(id)
		}
		return m, nil

	case key.Matches(msg, m.keys.CloseAll):
		m.mgr.CloseAll(m.view)
		return m, nil

	case key.Matches(msg, m.keys.NextView):
		m.view = m.view%Views + 1
		m.mgr.Reflow(m.view)
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		data, err := yaml.Marshal(m.mgr.Visible(m.view))
		if err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Failed to marshal YAML: " + err.Error(), isErr: true}
			}
		}
		return m, m.copyToClipboard(string(data))

	default:
		return m, nil
	}

	// Cursor moved
	m.mgr.Reflow(m.view)
	return m, nil
}

// open records a created popup and reports diagnostics.
func (m Model) open(id int, err error) (tea.Model, tea.Cmd) {
	if id != 0 {
		m.st.opened = append(m.st.opened, id)
	}
	return m.status(err)
}

// status shows err in the status bar, or clears it.
func (m Model) status(err error) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	m.statusErr = false
	if err != nil {
		m.logger.Warn("popup operation failed", "error", err)
		m.statusMsg = err.Error()
		m.statusErr = true
	}
	return m, nil
}

// timed adds the demo auto-close time.
func (m Model) timed(o options.Options) options.Options {
	if d := m.cfg.Demo.Time.Duration(); d > 0 {
		o.Time = options.Duration(d)
	}
	return o
}

// last returns the newest popup the current view can see.
func (m Model) last() (int, bool) {
	ids := m.mgr.IDs(m.view)
	for i := len(m.st.opened) - 1; i >= 0; i-- {
		if slices.Contains(ids, m.st.opened[i]) {
			return m.st.opened[i], true
		}
	}
	return 0, false
}

func (m Model) copyToClipboard(text string) tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text, cfg)}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	scr := m.st.screen
	lines := render.Fit(strings.Join(m.base, "\n"), scr.Rows, scr.Cols)
	lines[m.st.cursor.Row] = markCursor(lines[m.st.cursor.Row], m.st.cursor.Col)

	frame := render.Compose(strings.Join(lines, "\n"), scr, m.mgr.Visible(m.view), m.theme)
	if !m.showHelp {
		return frame
	}
	return frame + "\n" + m.statusBar()
}

// markCursor draws the cursor cell in reverse video.
func markCursor(line string, col int) string {
	w := ansi.StringWidth(line)
	if col >= w {
		return line
	}
	cell := lipgloss.NewStyle().Reverse(true).Render(ansi.Cut(line, col, col+1))
	return ansi.Cut(line, 0, col) + cell + ansi.Cut(line, col+1, w)
}

func (m Model) statusBar() string {
	left := fmt.Sprintf(" view %d  %d open ", m.view, len(m.mgr.IDs(m.view)))
	if m.statusMsg != "" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		if m.statusErr {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		}
		left += style.Render(m.statusMsg) + " "
	}
	bar := left + m.help.View(m.keys)
	return ansi.Truncate(bar, max(m.width, 1), "…")
}

// menuContent is the centered menu, with the first item selected.
func menuContent() content.Payload {
	items := []string{"Open", "Save", "Save as", "Close"}
	records := make([]content.Record, len(items))
	for i, it := range items {
		records[i] = content.Record{Text: " " + it}
	}
	records[0].Props = []content.Prop{{Col: 1, Length: len(items[0]) + 1, Type: "PmenuSel"}}
	return content.Records(records...)
}

func sampleText() []string {
	return []string{
		"popwin demo",
		"",
		"Move the cursor with the arrow keys or hjkl. Press p to open a",
		"popup at the cursor, m for a centered menu and n for a notice that",
		"every view shows. t hides and shows the newest popup, x closes it",
		"and X closes everything the view can see. tab switches view.",
		"",
		"Popups opened at the cursor follow it, and every popup is laid out",
		"again when the terminal is resized.",
	}
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config     *config.Config
	ConfigPath string // Path to watch for changes (empty = no watching)
	Base       []string
	Profile    string // Color profile override for the renderer
	Logger     *slog.Logger
}

// Run starts the demo with the given options.
func Run(opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Start config watcher if a path was provided
	var watcher *config.Watcher
	var configCh chan *config.Config
	if opts.ConfigPath != "" && cfg.Demo.Watch {
		watcher, configCh = startWatcher(opts.ConfigPath, logger)
	}

	m := New(Options{
		Config:   cfg,
		Theme:    render.ThemeFromConfig(cfg, render.NewRenderer(opts.Profile)),
		Base:     opts.Base,
		ConfigCh: configCh,
		Logger:   logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err := p.Run()

	m.queue.Close()
	if watcher != nil {
		_ = watcher.Stop()
	}

	return err
}

// startWatcher watches the config file at path and posts reloads on the
// returned channel. Failures are logged and leave the demo without reload.
func startWatcher(path string, logger *slog.Logger) (*config.Watcher, chan *config.Config) {
	configCh := make(chan *config.Config, 1)
	watcher, err := config.NewWatcher(path, func(c *config.Config) {
		select {
		case configCh <- c:
		default:
		}
	}, logger)
	if err != nil {
		logger.Warn("failed to create config watcher", "error", err)
		return nil, nil
	}
	if err := watcher.Start(); err != nil {
		logger.Warn("failed to start config watcher", "file", path, "error", err)
		_ = watcher.Stop()
		return nil, nil
	}
	return watcher, configCh
}
