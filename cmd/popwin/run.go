package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popwin/internal/config"
	"github.com/jmylchreest/popwin/internal/output"
	"github.com/jmylchreest/popwin/internal/script"
)

var runOpts struct {
	format     string
	template   string
	onlyFailed bool
	noFrames   bool
	builtin    []string
	list       bool
}

var runCmd = &cobra.Command{
	Use:   "run [scenario.yaml...]",
	Short: "Run popup scenarios",
	Long: `Run YAML popup scenarios on a virtual clock and report each step.

A scenario lists steps such as create, move, hide, close, advance and
render, each with optional expectations. Use - to read a scenario from
stdin.

Example:

  name: hello
  screen: {rows: 24, cols: 80}
  steps:
    - op: create
      name: greeting
      content: hello
      options: {line: 1, col: 1, pos: topleft}
      expect: {row: 0, col: 0, width: 5, height: 1}

Bundled scenarios are listed with --list and run with --builtin.

The command fails when any expectation does not hold.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runOpts.format, "format", "f", "",
		"Output format: plain, json, yaml (default from config)")
	runCmd.Flags().StringVar(&runOpts.template, "template", "",
		"Go template for each step in plain format")
	runCmd.Flags().BoolVar(&runOpts.onlyFailed, "only-failed", false,
		"Only report steps whose expectations failed")
	runCmd.Flags().BoolVar(&runOpts.noFrames, "no-frames", false,
		"Omit rendered frames")
	runCmd.Flags().StringArrayVar(&runOpts.builtin, "builtin", nil,
		"Run a bundled scenario, repeat for more")
	runCmd.Flags().BoolVar(&runOpts.list, "list", false,
		"List bundled scenarios and exit")
}

func runRun(cmd *cobra.Command, args []string) error {
	if runOpts.list {
		for _, name := range script.ListBuiltin() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}
	if len(args) == 0 && len(runOpts.builtin) == 0 {
		return fmt.Errorf("no scenarios given, pass files or --builtin")
	}

	var scenarios []*script.Scenario
	var sources []string
	for _, name := range runOpts.builtin {
		sc, err := script.Builtin(name)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, sc)
		sources = append(sources, "builtin:"+name)
	}
	for _, path := range args {
		sc, err := loadScenario(cmd, path)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, sc)
		sources = append(sources, path)
	}

	format := runOpts.format
	if format == "" {
		format = cfg.Output.Format
	}
	if !slices.Contains(config.ValidFormats(), format) {
		return fmt.Errorf("invalid format %q, must be one of: %v", format, config.ValidFormats())
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = runOpts.template
	opts.OnlyFailed = runOpts.onlyFailed
	opts.ShowFrames = !runOpts.noFrames
	formatter := output.NewFormatter(output.FormatType(format), opts)

	runner := script.NewRunner(cfg, theme(), logger)
	failed := 0
	for i, sc := range scenarios {
		report, err := runner.Run(cmd.Context(), sc)
		if err != nil {
			return fmt.Errorf("%s: %w", sources[i], err)
		}
		if err := formatter.Format(cmd.OutOrStdout(), report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if !report.Passed() {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(scenarios))
	}
	return nil
}

func loadScenario(cmd *cobra.Command, path string) (*script.Scenario, error) {
	if path != "-" {
		return script.Load(path)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return script.Parse(data)
}
