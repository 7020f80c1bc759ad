package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afelipfo/informes-med/internal/insight"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(id string, generatedAt time.Time) *insight.Report {
	return &insight.Report{
		ID:          id,
		GeneratedAt: generatedAt,
		RecordCount: 42,
		ColumnCount: 9,
		Insights: []insight.Insight{
			{
				Kind:     insight.KindPattern,
				Category: "context",
				Priority: insight.PriorityLow,
				Strength: 42,
				Text:     "Los 42 registros procesados representan un volumen operativo controlado.",
				Fact:     "registros: 42",
			},
		},
	}
}

func TestSaveAndGetReport(t *testing.T) {
	s := openStore(t)
	report := sampleReport("run-1", time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveReport(report))

	got, err := s.GetReport("run-1")
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, report.RecordCount, got.RecordCount)
	assert.Equal(t, report.Insights, got.Insights)
	assert.True(t, report.GeneratedAt.Equal(got.GeneratedAt))
}

func TestGetReportUnknownID(t *testing.T) {
	s := openStore(t)
	_, err := s.GetReport("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSaveReportIsIdempotentPerID(t *testing.T) {
	s := openStore(t)
	report := sampleReport("run-1", time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))

	require.NoError(t, s.SaveReport(report))
	report.RecordCount = 50
	require.NoError(t, s.SaveReport(report))

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 50, runs[0].RecordCount)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openStore(t)
	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveReport(sampleReport("run-old", base)))
	require.NoError(t, s.SaveReport(sampleReport("run-new", base.Add(time.Hour))))

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].ID)
	assert.Equal(t, "run-old", runs[1].ID)
	assert.Equal(t, 1, runs[0].Insights)
}

func TestDeleteRun(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.SaveReport(sampleReport("run-1", time.Now().UTC())))
	require.NoError(t, s.DeleteRun("run-1"))

	runs, err := s.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestPathUnderArchiveDir(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, filepath.Join(dir, "informes.db"), s.Path())
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveReport(sampleReport("run-1", time.Now().UTC())))
	require.NoError(t, s.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetReport("run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
}
