package content

import (
	"fmt"
	"math"
)

// Decode converts an untyped value, as produced by a YAML or JSON decoder,
// into a Payload. A string becomes a single line, a list of strings becomes
// plain lines and a list of maps becomes records. Mixing element kinds in one
// list is invalid.
func Decode(v any) (Payload, error) {
	switch val := v.(type) {
	case string:
		p := Text(val)
		return p, p.Validate()
	case []string:
		p := Lines(val...)
		return p, p.Validate()
	case []Record:
		p := Records(val...)
		return p, p.Validate()
	case []any:
		return decodeList(val)
	case nil:
		return Payload{}, fmt.Errorf("%w: no content", ErrInvalidContent)
	default:
		return Payload{}, fmt.Errorf("%w: string or list required, got %T", ErrInvalidContent, v)
	}
}

func decodeList(items []any) (Payload, error) {
	if len(items) == 0 {
		return Payload{}, fmt.Errorf("%w: empty list", ErrInvalidContent)
	}

	switch items[0].(type) {
	case string:
		lines := make([]string, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return Payload{}, fmt.Errorf("%w: item %d: string required, got %T", ErrInvalidContent, i+1, item)
			}
			lines[i] = s
		}
		return Lines(lines...), nil

	case map[string]any:
		records := make([]Record, len(items))
		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return Payload{}, fmt.Errorf("%w: item %d: dict required, got %T", ErrInvalidContent, i+1, item)
			}
			r, err := decodeRecord(m)
			if err != nil {
				return Payload{}, fmt.Errorf("item %d: %w", i+1, err)
			}
			records[i] = r
		}
		p := Records(records...)
		return p, p.Validate()

	default:
		return Payload{}, fmt.Errorf("%w: list of strings or dicts required, got %T", ErrInvalidContent, items[0])
	}
}

func decodeRecord(m map[string]any) (Record, error) {
	var r Record
	if text, ok := m["text"]; ok && text != nil {
		s, ok := text.(string)
		if !ok {
			return r, fmt.Errorf("%w: text must be a string, got %T", ErrInvalidContent, text)
		}
		r.Text = s
	}

	raw, ok := m["props"]
	if !ok || raw == nil {
		return r, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return r, fmt.Errorf("%w: props must be a list, got %T", ErrInvalidContent, raw)
	}
	for _, item := range list {
		pm, ok := item.(map[string]any)
		if !ok {
			return r, fmt.Errorf("%w: prop must be a dict, got %T", ErrInvalidContent, item)
		}
		prop, err := decodeProp(pm)
		if err != nil {
			return r, err
		}
		r.Props = append(r.Props, prop)
	}
	return r, nil
}

func decodeProp(m map[string]any) (Prop, error) {
	var p Prop
	ints := map[string]*int{
		"col":      &p.Col,
		"length":   &p.Length,
		"end_lnum": &p.EndLine,
		"end_col":  &p.EndCol,
		"id":       &p.ID,
	}
	for key, dst := range ints {
		v, ok := m[key]
		if !ok {
			continue
		}
		n, ok := ToInt(v)
		if !ok {
			return p, fmt.Errorf("%w: prop %s must be a number, got %T", ErrInvalidContent, key, v)
		}
		*dst = n
	}
	if v, ok := m["type"]; ok && v != nil {
		t, ok := v.(string)
		if !ok {
			return p, fmt.Errorf("%w: prop type must be a string, got %T", ErrInvalidContent, v)
		}
		p.Type = t
	}
	return p, nil
}

// ToInt converts a number decoded from YAML or JSON to an int. Fractional
// floats and values outside the int range are rejected.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt || n >= math.MaxInt {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
