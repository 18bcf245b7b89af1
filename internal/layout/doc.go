// Package layout resolves where a popup lands on the terminal grid.
// It is a pure computation over constraints, content metrics, screen bounds
// and the cursor position, with no knowledge of popup lifetime.
package layout
