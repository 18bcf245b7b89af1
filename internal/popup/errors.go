package popup

import (
	"errors"
	"strconv"

	"github.com/jmylchreest/popwin/internal/content"
	"github.com/jmylchreest/popwin/internal/layout"
	"github.com/jmylchreest/popwin/internal/options"
	"github.com/jmylchreest/popwin/internal/registry"
)

// Errors reported by Manager operations. Test with errors.Is.
var (
	ErrInvalidContent    = content.ErrInvalidContent
	ErrInvalidArgument   = options.ErrInvalidArgument
	ErrInvalidExpression = layout.ErrInvalidExpression
	ErrNotFound          = registry.ErrNotFound
	ErrNotPopupWindow    = registry.ErrNotPopupWindow
	ErrNotImplemented    = errors.New("not implemented")
)

// Error is an error from a popup operation.
type Error struct {
	Op    string
	ID    int
	Cause error
}

func (e *Error) Error() string {
	msg := "popup " + e.Op
	if e.ID != 0 {
		msg += " " + strconv.Itoa(e.ID)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func opError(op string, id int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, ID: id, Cause: err}
}
