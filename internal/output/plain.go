package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/popwin/internal/script"
)

// PlainFormatter formats reports as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes the report as plain text followed by a summary line.
func (f *PlainFormatter) Format(w io.Writer, report *script.Report) error {
	name := report.Scenario
	if name == "" {
		name = "(unnamed)"
	}
	if _, err := fmt.Fprintf(w, "scenario %s [%s]\n", name, report.RunID); err != nil {
		return err
	}

	for _, st := range filterSteps(report, f.opts) {
		if err := f.formatStep(w, &st); err != nil {
			return err
		}
	}

	status := "PASS"
	if !report.Passed() {
		status = "FAIL"
	}
	_, err := fmt.Fprintf(w, "%s: %s steps, %s failures, %d open, %s redraws, %s virtual\n",
		status,
		humanize.Comma(int64(len(report.Steps))),
		humanize.Comma(int64(report.Failures)),
		report.Open,
		humanize.Comma(int64(report.Redraws)),
		report.Elapsed,
	)
	return err
}

// formatStep formats a single step.
func (f *PlainFormatter) formatStep(w io.Writer, st *script.StepResult) error {
	// Use custom template if available
	if f.template != nil {
		data := templateData{Step: st, Passed: len(st.Failures) == 0}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder

	mark := "ok"
	if len(st.Failures) > 0 {
		mark = "FAIL"
	}
	sb.WriteString(fmt.Sprintf("%4s %-10s", mark, st.Op))
	if st.Name != "" {
		sb.WriteString(" " + st.Name)
	}
	if st.ID != 0 {
		sb.WriteString(fmt.Sprintf(" #%d", st.ID))
	}
	sb.WriteString(fmt.Sprintf(" @%s", st.At))

	if p := st.Position; p != nil {
		sb.WriteString(fmt.Sprintf(" row=%d col=%d %dx%d", p.Row, p.Col, p.Width, p.Height))
		if !p.Visible {
			sb.WriteString(" hidden")
		}
	}
	if o := st.Options; o != nil {
		sb.WriteString(fmt.Sprintf(" pos=%s line=%s col=%s zindex=%d", o.Pos, o.Line, o.Col, o.ZIndex))
	}
	if st.ClosesIn > 0 {
		sb.WriteString(" closes " + closesIn(st.ClosesIn))
	}
	if st.Fired > 0 {
		sb.WriteString(fmt.Sprintf(" fired=%d", st.Fired))
	}
	if st.Reflowed > 0 {
		sb.WriteString(fmt.Sprintf(" reflowed=%d", st.Reflowed))
	}
	if st.Error != "" {
		sb.WriteString(" error=" + st.Error)
	}
	sb.WriteString("\n")

	for _, fail := range st.Failures {
		sb.WriteString(fmt.Sprintf("     %s step: %s\n", humanize.Ordinal(st.Index), fail))
	}

	if f.opts.ShowFrames && len(st.Frame) > 0 {
		for _, l := range st.Frame {
			sb.WriteString("     |" + l + "|\n")
		}
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}

// templateData provides data for custom templates.
type templateData struct {
	Step   *script.StepResult
	Passed bool
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"ordinal":  humanize.Ordinal,
		"closesIn": closesIn,
		"join":     strings.Join,
	}
}

// closesIn describes a remaining auto-close delay. Sub-second delays are
// printed exactly.
func closesIn(d time.Duration) string {
	if d < time.Second {
		return "in " + d.String()
	}
	now := time.Now()
	return humanize.RelTime(now.Add(d), now, "ago", "from now")
}
