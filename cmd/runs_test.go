package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/estate-leads/internal/model"
	"github.com/sells-group/estate-leads/internal/report"
)

func TestFormatRunsList(t *testing.T) {
	created := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:             "0f8b7c1e-1111-2222-3333-444455556666",
			Status:         model.RunStatusComplete,
			NamesExtracted: 42,
			Counters:       model.Counters{HomesFound: 7, TextsSent: 9, ContactsCreated: 4, DealsCreated: 5},
			CreatedAt:      created,
			UpdatedAt:      created.Add(95 * time.Second),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "DEALS")
	fields := strings.Fields(lines[2])
	assert.Equal(t, []string{"0f8b7c1e", "complete", "42", "7", "9", "4", "5", "2026-10-18", "09:00", "1m35s"}, fields)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abcdefgh", truncateID("abcdefghijkl"))
	assert.Equal(t, "short", truncateID("short"))
}

func exportSample() []model.EnrichedLead {
	return []model.EnrichedLead{
		{OwnershipMatch: model.OwnershipMatch{DeceasedRecord: model.DeceasedRecord{Person: "SMITH JOHN"}}},
	}
}

func TestExportLeadsFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.CSV")
	require.NoError(t, exportLeadsFile(path, exportSample()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, report.Headers(), records[0])
	assert.Equal(t, "SMITH JOHN", records[1][0])
}

func TestExportLeadsFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, exportLeadsFile(path, exportSample()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet := f.Sheet[report.SheetName]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "SMITH JOHN", sheet.Rows[1].Cells[0].String())
}

func TestExportLeadsFile_BadPath(t *testing.T) {
	err := exportLeadsFile(filepath.Join(t.TempDir(), "missing", "leads.xlsx"), nil)
	require.Error(t, err)
}

func TestComputeRunStats(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	runs := []model.Run{
		{Status: model.RunStatusComplete, NamesExtracted: 10, Counters: model.Counters{HomesFound: 3, DealsCreated: 2},
			CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now.Add(-2*time.Hour + 60*time.Second)},
		{Status: model.RunStatusComplete, NamesExtracted: 5, Counters: model.Counters{HomesFound: 1, DealsCreated: 1},
			CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour + 120*time.Second)},
		{Status: model.RunStatusFailed, CreatedAt: now.Add(-30 * time.Minute)},
		{Status: model.RunStatusEnriching, CreatedAt: now.Add(-5 * time.Minute)},
		{Status: model.RunStatusComplete, NamesExtracted: 99, CreatedAt: now.Add(-72 * time.Hour)},
	}

	s := computeRunStats(runs, now.Add(-24*time.Hour))
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Complete)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.InProgress)
	assert.Equal(t, 15, s.Names)
	assert.Equal(t, model.Counters{HomesFound: 4, DealsCreated: 3}, s.Counters)
	assert.InDelta(t, 90.0, s.AvgDurSecs, 0.001)

	var buf bytes.Buffer
	formatRunStats(&buf, s)
	assert.Contains(t, buf.String(), "Deals created:")
	assert.Contains(t, buf.String(), "90.0s")
}
