package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWith(t *testing.T) {
	base := NewRecord(map[Field]any{"name": "Acme"})

	next, err := base.With("domain", "acme.io")
	require.NoError(t, err)
	assert.True(t, next.Has("domain"))
	assert.False(t, base.Has("domain"), "With must not mutate the receiver")

	same, err := next.With("domain", "acme.io")
	require.NoError(t, err)
	assert.Equal(t, next, same)

	_, err = next.With("domain", "other.io")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain")
}

func TestRecordMerge(t *testing.T) {
	a := NewRecord(map[Field]any{"name": "Acme", "website": "https://acme.io"})
	b := NewRecord(map[Field]any{"name": "Acme", "organization_id": "org_1"})

	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, []Field{"name", "organization_id", "website"}, merged.Fields())

	conflict := NewRecord(map[Field]any{"name": "Other"})
	_, err = a.Merge(conflict)
	require.Error(t, err)
}

func TestRecordAccessors(t *testing.T) {
	r := NewRecord(map[Field]any{
		"s":     "text",
		"f":     2500000.0,
		"i":     7,
		"b":     true,
		"list":  []string{"a", "b"},
		"num":   " 42.5 ",
		"bad":   "n/a",
		"other": struct{ X int }{1},
	})

	tests := []struct {
		field   Field
		wantStr string
		wantF   float64
	}{
		{"s", "text", 0},
		{"f", "2500000", 2500000},
		{"i", "7", 7},
		{"b", "true", 0},
		{"list", "a, b", 0},
		{"num", " 42.5 ", 42.5},
		{"bad", "n/a", 0},
		{"other", "", 0},
		{"missing", "", 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			assert.Equal(t, tt.wantStr, r.String(tt.field))
			assert.InDelta(t, tt.wantF, r.Float(tt.field), 0.0001)
		})
	}

	list, ok := Get[[]string](r, "list")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, list)

	_, ok = Get[int](r, "s")
	assert.False(t, ok)
	_, ok = Get[string](r, "missing")
	assert.False(t, ok)
}

func TestNewRecordCopiesValues(t *testing.T) {
	values := map[Field]any{"name": "Acme"}
	r := NewRecord(values)
	values["name"] = "changed"
	values["extra"] = "x"
	assert.Equal(t, "Acme", r.String("name"))
	assert.False(t, r.Has("extra"))
}

func TestCheckGrowth(t *testing.T) {
	in := NewRecord(map[Field]any{"name": "Acme"})

	out, err := in.With("organization_id", "org_1")
	require.NoError(t, err)
	require.NoError(t, checkGrowth(in, out, []Field{"organization_id"}))

	changed := NewRecord(map[Field]any{"name": "Other", "organization_id": "org_1"})
	err = checkGrowth(in, changed, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "changed")

	err = checkGrowth(in, out, []Field{"organization_id", "people"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "people")
}
