package options

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmylchreest/popwin/internal/content"
	"github.com/jmylchreest/popwin/internal/layout"
)

// Decode reads an untyped option map, as produced by a YAML or JSON decoder.
// Unknown keys are ignored. Each key is checked independently: the returned
// Options carries every key that decoded and the error joins the rest.
func Decode(m map[string]any) (Options, error) {
	var o Options
	var errs []error

	for _, key := range []string{"line", "col"} {
		v, ok := m[key]
		if !ok {
			continue
		}
		c, err := decodeCoord(key, v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if key == "line" {
			o.Line = &c
		} else {
			o.Col = &c
		}
	}

	ints := []struct {
		key string
		dst **int
	}{
		{"minwidth", &o.MinWidth},
		{"minheight", &o.MinHeight},
		{"maxwidth", &o.MaxWidth},
		{"maxheight", &o.MaxHeight},
		{"zindex", &o.ZIndex},
		{"tab", &o.Tab},
	}
	for _, f := range ints {
		v, ok := m[f.key]
		if !ok {
			continue
		}
		n, ok := content.ToInt(v)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s must be a number, got %v", ErrInvalidArgument, f.key, v))
			continue
		}
		*f.dst = &n
	}

	strs := []struct {
		key string
		dst **string
	}{
		{"pos", &o.Pos},
		{"highlight", &o.Highlight},
	}
	for _, f := range strs {
		v, ok := m[f.key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s must be a string, got %v", ErrInvalidArgument, f.key, v))
			continue
		}
		*f.dst = &s
	}

	if v, ok := m["time"]; ok {
		d, err := decodeTime(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			o.Time = &d
		}
	}

	if v, ok := m["wrap"]; ok {
		switch w := v.(type) {
		case bool:
			o.Wrap = &w
		default:
			if n, ok := content.ToInt(v); ok {
				b := n != 0
				o.Wrap = &b
			} else {
				errs = append(errs, fmt.Errorf("%w: wrap must be a boolean, got %v", ErrInvalidArgument, v))
			}
		}
	}

	return o, errors.Join(errs...)
}

// decodeCoord accepts a number, a numeric string or a cursor-relative string.
func decodeCoord(key string, v any) (layout.Coord, error) {
	if n, ok := content.ToInt(v); ok {
		return layout.At(n), nil
	}
	s, ok := v.(string)
	if !ok {
		return layout.Coord{}, fmt.Errorf("%w: %s must be a number or string, got %v", ErrInvalidArgument, key, v)
	}
	c, err := layout.ParseCoord(s)
	if err != nil {
		if errors.Is(err, layout.ErrInvalidExpression) {
			return layout.Coord{}, fmt.Errorf("%s: %w", key, err)
		}
		return layout.Coord{}, fmt.Errorf("%w: %s %q", ErrInvalidArgument, key, s)
	}
	return c, nil
}

// decodeTime accepts integer milliseconds or a duration string such as "3s".
func decodeTime(v any) (time.Duration, error) {
	if n, ok := content.ToInt(v); ok {
		return time.Duration(n) * time.Millisecond, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("%w: time must be milliseconds or a duration, got %v", ErrInvalidArgument, v)
	}
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q", ErrInvalidArgument, s)
	}
	return d, nil
}
