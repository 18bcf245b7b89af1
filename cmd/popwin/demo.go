package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popwin/internal/tui"
)

var demoCmd = &cobra.Command{
	Use:   "demo [file]",
	Short: "Launch the interactive popup demo",
	Long: `Launch a terminal demo that draws popups over a text view.

The view shows file when one is given, otherwise sample text.

Key bindings:
  h/j/k/l, arrows  Move the cursor
  p, enter         Popup at the cursor
  m                Centered menu
  n                Notice visible from every view
  t                Hide or show the newest popup
  x, esc           Close the newest popup
  X                Close every popup the view can see
  tab              Switch view
  y                Copy visible popups as YAML
  ?                Toggle help
  q                Quit

The config file is watched and highlight changes apply immediately.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	var base []string
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		base = strings.Split(strings.ReplaceAll(string(data), "\t", "    "), "\n")
	}

	return tui.Run(tui.RunOptions{
		Config:     cfg,
		ConfigPath: configPath(),
		Base:       base,
		Profile:    globalOpts.color,
		Logger:     logger,
	})
}
