package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermark_AbsentFileIsZeroTime(t *testing.T) {
	store := NewWatermarkStore(filepath.Join(t.TempDir(), "last_run.json"))

	last, err := store.Last()

	require.NoError(t, err)
	assert.True(t, last.IsZero())
}

func TestWatermark_AdvanceAndReadBack(t *testing.T) {
	store := NewWatermarkStore(filepath.Join(t.TempDir(), "state", "last_run.json"))
	mark := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)

	require.NoError(t, store.Advance(mark))

	last, err := store.Last()
	require.NoError(t, err)
	assert.True(t, mark.Equal(last))
}

func TestWatermark_CorruptFileTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	last, err := NewWatermarkStore(path).Last()

	require.NoError(t, err)
	assert.True(t, last.IsZero())
}
