package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/rotisserie/eris"
)

// Field names one entry of a Record.
type Field string

// Record is the per-company unit of work. Fields only accumulate: With
// returns a copy with one more field and refuses to change an existing one.
// The zero value is an empty record.
type Record struct {
	values map[Field]any
}

// NewRecord builds a record from a column/value map.
func NewRecord(values map[Field]any) Record {
	r := Record{values: make(map[Field]any, len(values))}
	for k, v := range values {
		r.values[k] = v
	}
	return r
}

// Has reports whether f is set.
func (r Record) Has(f Field) bool {
	_, ok := r.values[f]
	return ok
}

// String returns f rendered as a string. Missing fields render as "".
func (r Record) String(f Field) string {
	v, ok := r.values[f]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case []string:
		return strings.Join(t, ", ")
	default:
		return ""
	}
}

// Float returns f as a float64. Strings are parsed; anything else is 0.
func (r Record) Float(f Field) float64 {
	v, ok := r.values[f]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Fields returns the set field names in sorted order.
func (r Record) Fields() []Field {
	out := make([]Field, 0, len(r.values))
	for k := range r.values {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// With returns a copy of r with f set to v. Setting a field that already
// holds a different value is an error; setting the same value is a no-op.
func (r Record) With(f Field, v any) (Record, error) {
	if prev, ok := r.values[f]; ok {
		if !cmp.Equal(prev, v) {
			return r, eris.Errorf("record: field %q already set to a different value", f)
		}
		return r, nil
	}
	out := Record{values: make(map[Field]any, len(r.values)+1)}
	for k, val := range r.values {
		out.values[k] = val
	}
	out.values[f] = v
	return out, nil
}

// Merge unifies r with the fields of other. Keys present on both sides must
// agree.
func (r Record) Merge(other Record) (Record, error) {
	out := r
	for _, f := range other.Fields() {
		var err error
		out, err = out.With(f, other.values[f])
		if err != nil {
			return r, err
		}
	}
	return out, nil
}

// Get returns f as T when it is set and has that type.
func Get[T any](r Record, f Field) (T, bool) {
	var zero T
	v, ok := r.values[f]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// checkGrowth verifies out kept every field of in unchanged and carries every
// field in provides.
func checkGrowth(in, out Record, provides []Field) error {
	for f, v := range in.values {
		got, ok := out.values[f]
		if !ok {
			return eris.Errorf("record: field %q was dropped", f)
		}
		if !cmp.Equal(v, got) {
			return eris.Errorf("record: field %q was changed", f)
		}
	}
	var missing []string
	for _, f := range provides {
		if !out.Has(f) {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("record: declared fields not set: %s", strings.Join(missing, ", "))
	}
	return nil
}
