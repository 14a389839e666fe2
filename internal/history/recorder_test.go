package history

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/perfdiff/internal/models"
)

func TestFileRecorderAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.jsonl")
	r := NewFileRecorder(path)
	ctx := context.Background()

	for _, id := range []string{"first", "second"} {
		require.NoError(t, r.Record(ctx, &models.ComparisonResult{
			ID:      id,
			Summary: models.Summary{Total: 1, Worse: 1},
		}))
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var got models.ComparisonResult
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &got))
		ids = append(ids, got.ID)
		assert.Equal(t, 1, got.Summary.Worse)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"first", "second"}, ids)
}

func TestFileRecorderUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	r := NewFileRecorder(dir)

	err := r.Record(context.Background(), &models.ComparisonResult{ID: "x"})
	assert.ErrorContains(t, err, "failed to open history file")
}

type recorderFunc func(ctx context.Context, result *models.ComparisonResult) error

func (f recorderFunc) Record(ctx context.Context, result *models.ComparisonResult) error {
	return f(ctx, result)
}

func TestMultiJoinsErrors(t *testing.T) {
	var calls int
	ok := recorderFunc(func(context.Context, *models.ComparisonResult) error {
		calls++
		return nil
	})
	boom := errors.New("boom")
	failing := recorderFunc(func(context.Context, *models.ComparisonResult) error {
		calls++
		return boom
	})

	err := Multi{failing, ok, failing}.Record(context.Background(), &models.ComparisonResult{})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
	assert.NoError(t, Multi{ok}.Record(context.Background(), &models.ComparisonResult{}))
	assert.NoError(t, Multi(nil).Record(context.Background(), &models.ComparisonResult{}))
}
