package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressView(t *testing.T) {
	t.Parallel()

	t.Run("unknown total renders only the counter", func(t *testing.T) {
		t.Parallel()
		view := NewProgress().View(0, 0)
		require.Contains(t, view, "0/0 pairs")
	})

	t.Run("partial completion includes a bar", func(t *testing.T) {
		t.Parallel()
		view := NewProgress().View(5, 10)
		require.Contains(t, view, "5/10 pairs")
		require.Greater(t, len(strings.TrimSpace(view)), len("5/10 pairs"))
	})

	t.Run("completion beyond total shows the real count", func(t *testing.T) {
		t.Parallel()
		view := NewProgress().View(12, 10)
		require.Contains(t, view, "12/10 pairs")
	})
}
