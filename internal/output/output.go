// Package output provides output formatters for scenario reports.
package output

import (
	"io"

	"github.com/jmylchreest/popwin/internal/script"
)

// Formatter formats scenario reports for output.
type Formatter interface {
	// Format writes a formatted report to the writer.
	Format(w io.Writer, report *script.Report) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string // Custom per-step template for plain format
	ShowFrames bool   // Print rendered frames
	OnlyFailed bool   // Skip steps that passed
}

// DefaultFormatterOptions returns sensible defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowFrames: true,
	}
}

// filterSteps applies OnlyFailed.
func filterSteps(r *script.Report, opts FormatterOptions) []script.StepResult {
	if !opts.OnlyFailed {
		return r.Steps
	}
	var out []script.StepResult
	for _, st := range r.Steps {
		if len(st.Failures) > 0 {
			out = append(out, st)
		}
	}
	return out
}
