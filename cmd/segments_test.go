package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/crunchy-cli/internal/config"
)

func TestFormatSegments(t *testing.T) {
	segs, err := config.DefaultSegments()
	require.NoError(t, err)

	var buf bytes.Buffer
	formatSegments(&buf, segs)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 11)
	assert.Contains(t, lines[0], "SEGMENT")
	assert.Contains(t, lines[0], "TITLES")
	assert.True(t, strings.HasPrefix(lines[2], "ALarge"))

	var lendbae string
	for _, l := range lines {
		if strings.HasPrefix(l, "LendBae") {
			lendbae = l
		}
	}
	require.NotEmpty(t, lendbae)
	assert.Contains(t, lendbae, "lendbae")
	assert.Contains(t, lendbae, "VP Operations, Vice President Operations")
	assert.Equal(t, []string{"LendBae", "lendbae", "no", "no"}, strings.Fields(lendbae)[:4])
}

func TestSegmentList(t *testing.T) {
	segs, err := config.DefaultSegments()
	require.NoError(t, err)

	list := segmentList(segs)
	require.Len(t, list, len(segs))
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Name, list[i].Name)
	}
	for _, s := range list {
		assert.NotEmpty(t, s.Workflow, s.Name)
		assert.NotEmpty(t, s.Titles, s.Name)
	}
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}
