// Package records reads input rows into pipeline records and writes enriched
// records back out.
package records

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
)

// Kind is the value type of a column.
type Kind int

// Column kinds.
const (
	Text Kind = iota
	Number
)

// Column describes one input column.
type Column struct {
	Name     pipeline.Field
	Kind     Kind
	Nullable bool
}

// Schema is the set of input columns a workflow accepts.
type Schema struct {
	Name    string
	Columns []Column
}

// Fields returns the column names in declaration order.
func (s Schema) Fields() []pipeline.Field {
	out := make([]pipeline.Field, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Coerce validates one raw row and converts it to a record. Text values are
// kept as-is, numbers become float64 (an empty cell is 0). A required column
// absent from the row, or a number that does not parse, is an error.
func (s Schema) Coerce(row map[string]string) (pipeline.Record, error) {
	values := make(map[pipeline.Field]any, len(s.Columns))
	for _, c := range s.Columns {
		raw, ok := row[string(c.Name)]
		if !ok && !c.Nullable {
			return pipeline.Record{}, eris.Errorf("records: missing column %q", c.Name)
		}

		switch c.Kind {
		case Number:
			v, err := parseNumber(raw)
			if err != nil {
				return pipeline.Record{}, eris.Wrapf(err, "records: column %q", c.Name)
			}
			values[c.Name] = v
		default:
			values[c.Name] = raw
		}
	}
	return pipeline.NewRecord(values), nil
}

func parseNumber(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Errorf("not a number: %q", raw)
	}
	return v, nil
}
