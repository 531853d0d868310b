package diff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedIdenticalContent(t *testing.T) {
	content := []byte("a\nb\nc\n")
	require.Empty(t, Unified(content, content, "from", "to"))
}

func TestUnifiedSingleLineChange(t *testing.T) {
	result := Unified(
		[]byte("desired: 0\nscope: SUB_USB\n"),
		[]byte("desired: 1\nscope: SUB_USB\n"),
		"embedded", "custom.yaml",
	)

	assert.True(t, strings.HasPrefix(result, "--- embedded\n+++ custom.yaml\n"))
	assert.Contains(t, result, "@@ -1,2 +1,2 @@")
	assert.Contains(t, result, "-desired: 0\n")
	assert.Contains(t, result, "+desired: 1\n")
	assert.Contains(t, result, " scope: SUB_USB\n")

	added, removed := Stat(result)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
}

func TestUnifiedWholeLinesOnly(t *testing.T) {
	result := Unified([]byte("description: USB selective suspend\n"), []byte("description: USB selective resume\n"), "a", "b")

	assert.Contains(t, result, "-description: USB selective suspend")
	assert.Contains(t, result, "+description: USB selective resume")
}

func TestUnifiedTruncatesLargeDiffs(t *testing.T) {
	var from, to strings.Builder
	for i := 0; i < MaxLines+500; i++ {
		fmt.Fprintf(&from, "line %d\n", i)
		fmt.Fprintf(&to, "changed %d\n", i)
	}

	result := Unified([]byte(from.String()), []byte(to.String()), "a", "b")
	assert.Contains(t, result, truncateMessage)
	assert.LessOrEqual(t, strings.Count(result, "\n"), MaxLines+4)
}
