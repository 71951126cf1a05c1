package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pfda_functional/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStore_EmptyHistory(t *testing.T) {
	store, err := NewReportStore(filepath.Join(t.TempDir(), "nested", "reports.json"))
	require.NoError(t, err)

	history, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestReportStore_AppendKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.json")
	store, err := NewReportStore(path)
	require.NoError(t, err)

	started := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	first := entities.CheckResult{ID: "a", Page: "apps featured", Activated: true, StartedAt: started, Duration: time.Second}
	second := entities.CheckResult{ID: "b", Page: "apps featured", Error: "not ready", StartedAt: started.Add(time.Minute)}

	require.NoError(t, store.Append(first))
	require.NoError(t, store.Append(second))

	reopened, err := NewReportStore(path)
	require.NoError(t, err)
	history, err := reopened.Load()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "a", history[0].ID)
	assert.True(t, history[0].StartedAt.Equal(started))
	assert.Equal(t, time.Second, history[0].Duration)
	assert.Equal(t, "not ready", history[1].Error)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestReportStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store, err := NewReportStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
	assert.Error(t, store.Append(entities.CheckResult{ID: "x"}))
}
