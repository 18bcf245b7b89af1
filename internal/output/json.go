package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popwin/internal/script"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes the report as a JSON object.
func (f *JSONFormatter) Format(w io.Writer, report *script.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(view(report, f.opts))
}

// YAMLFormatter formats reports as YAML.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes the report as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, report *script.Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(view(report, f.opts)); err != nil {
		return err
	}
	return encoder.Close()
}

// view returns a copy of report with the formatter options applied.
func view(r *script.Report, opts FormatterOptions) *script.Report {
	out := *r
	out.Steps = filterSteps(r, opts)
	if !opts.ShowFrames {
		steps := make([]script.StepResult, len(out.Steps))
		for i, st := range out.Steps {
			st.Frame = nil
			steps[i] = st
		}
		out.Steps = steps
	}
	return &out
}
