package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popwin/internal/content"
	"github.com/jmylchreest/popwin/internal/layout"
	"github.com/jmylchreest/popwin/internal/options"
	"github.com/jmylchreest/popwin/internal/popup"
	"github.com/jmylchreest/popwin/internal/render"
)

var layoutOpts struct {
	rows      int
	cols      int
	text      []string
	line      string
	col       string
	pos       string
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int
	zindex    int
	wrap      bool
	cursorRow int
	cursorCol int
	atCursor  bool
	format    string
	render    bool
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Resolve where a popup would be placed",
	Long: `Lay out one popup and print its rectangle.

Coordinates given with --line and --col are 1-based and may be relative to
the cursor, such as "cursor" or "cursor+2". The cursor given with
--cursor-row and --cursor-col is 0-based.

The printed row and column are 0-based.`,
	Example: `  popwin layout --text hello --line 1 --col 1 --pos topleft
  popwin layout --text one --text two --pos center --render
  popwin layout --text hint --at-cursor --cursor-row 5 --cursor-col 10`,
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	f := layoutCmd.Flags()
	f.IntVar(&layoutOpts.rows, "rows", 0, "Screen rows (default from config)")
	f.IntVar(&layoutOpts.cols, "cols", 0, "Screen columns (default from config)")
	f.StringArrayVarP(&layoutOpts.text, "text", "t", nil, "Content line, repeat for more lines")
	f.StringVar(&layoutOpts.line, "line", "", "Anchor line, 1-based or cursor-relative")
	f.StringVar(&layoutOpts.col, "col", "", "Anchor column, 1-based or cursor-relative")
	f.StringVar(&layoutOpts.pos, "pos", "", "Anchor corner: topleft, topright, botleft, botright, center")
	f.IntVar(&layoutOpts.minWidth, "minwidth", 0, "Minimum width")
	f.IntVar(&layoutOpts.minHeight, "minheight", 0, "Minimum height")
	f.IntVar(&layoutOpts.maxWidth, "maxwidth", 0, "Maximum width")
	f.IntVar(&layoutOpts.maxHeight, "maxheight", 0, "Maximum height")
	f.IntVar(&layoutOpts.zindex, "zindex", 0, "Stacking order")
	f.BoolVar(&layoutOpts.wrap, "wrap", true, "Wrap long lines")
	f.IntVar(&layoutOpts.cursorRow, "cursor-row", 0, "Cursor row, 0-based")
	f.IntVar(&layoutOpts.cursorCol, "cursor-col", 0, "Cursor column, 0-based")
	f.BoolVar(&layoutOpts.atCursor, "at-cursor", false, "Place the popup just above the cursor")
	f.StringVarP(&layoutOpts.format, "format", "f", "plain", "Output format: plain, json, yaml")
	f.BoolVar(&layoutOpts.render, "render", false, "Also draw the popup over a blank screen")

	_ = layoutCmd.MarkFlagRequired("text")
}

// layoutResult is what the layout command prints.
type layoutResult struct {
	ID       int                `json:"id" yaml:"id"`
	Position popup.PositionInfo `json:"position" yaml:"position"`
	Options  popup.OptionsInfo  `json:"options" yaml:"options"`
	Warning  string             `json:"warning,omitempty" yaml:"warning,omitempty"`
}

func runLayout(cmd *cobra.Command, args []string) error {
	screen := cfg.ScreenSize()
	if layoutOpts.rows > 0 {
		screen.Rows = layoutOpts.rows
	}
	if layoutOpts.cols > 0 {
		screen.Cols = layoutOpts.cols
	}

	opts, decodeErr := options.Decode(layoutOptionMap(cmd))

	cursor := layout.Point{Row: layoutOpts.cursorRow, Col: layoutOpts.cursorCol}
	mgr := popup.NewManager(popup.Deps{
		Screen: popup.FixedScreen(screen),
		Cursor: popup.CursorFunc(func() layout.Point { return cursor }),
	}, cfg.OptionDefaults(), logger)

	payload := content.Lines(layoutOpts.text...)
	var (
		id  int
		err error
	)
	if layoutOpts.atCursor {
		id, err = mgr.AtCursor(1, payload, opts)
	} else {
		id, err = mgr.Create(1, payload, opts)
	}
	if id == 0 {
		return errors.Join(decodeErr, err)
	}

	res := layoutResult{ID: id}
	if err = errors.Join(decodeErr, err); err != nil {
		res.Warning = err.Error()
		logger.Warn("options partly applied", "error", err)
	}
	if res.Position, err = mgr.Position(id); err != nil {
		return err
	}
	if res.Options, err = mgr.Options(id); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if err := writeLayout(w, layoutOpts.format, res); err != nil {
		return err
	}
	if layoutOpts.render {
		frame := render.Compose("", screen, mgr.Visible(1), theme())
		_, err := fmt.Fprintln(w, frame)
		return err
	}
	return nil
}

// layoutOptionMap collects the option flags that were given.
func layoutOptionMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)
	set := func(flag, key string, v any) {
		if cmd.Flags().Changed(flag) {
			m[key] = v
		}
	}
	set("line", "line", layoutOpts.line)
	set("col", "col", layoutOpts.col)
	set("pos", "pos", layoutOpts.pos)
	set("minwidth", "minwidth", layoutOpts.minWidth)
	set("minheight", "minheight", layoutOpts.minHeight)
	set("maxwidth", "maxwidth", layoutOpts.maxWidth)
	set("maxheight", "maxheight", layoutOpts.maxHeight)
	set("zindex", "zindex", layoutOpts.zindex)
	set("wrap", "wrap", layoutOpts.wrap)
	return m
}

func writeLayout(w io.Writer, format string, res layoutResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case "plain":
		p := res.Position
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("row=%d col=%d width=%d height=%d\n", p.Row, p.Col, p.Width, p.Height))
		o := res.Options
		sb.WriteString(fmt.Sprintf("pos=%s line=%s col=%s zindex=%d wrap=%t\n", o.Pos, o.Line, o.Col, o.ZIndex, o.Wrap))
		if res.Warning != "" {
			sb.WriteString("warning: " + res.Warning + "\n")
		}
		_, err := io.WriteString(w, sb.String())
		return err
	default:
		return fmt.Errorf("invalid format %q, must be one of: plain, json, yaml", format)
	}
}
