package deathindex

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/estate-leads/internal/model"
)

func TestParseRow(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  model.DeceasedRecord
	}{
		{
			name:  "full row",
			cells: []string{" 1 ", "SMITH JOHN ROBERT", "03/14/2026", "M", "DC"},
			want:  model.DeceasedRecord{Person: "SMITH JOHN ROBERT", DeathDate: "03/14/2026", Sex: "M"},
		},
		{
			name:  "order does not matter",
			cells: []string{"F", "07/01/2026", "DOE MARY"},
			want:  model.DeceasedRecord{Person: "DOE MARY", DeathDate: "07/01/2026", Sex: "F"},
		},
		{
			name:  "header row",
			cells: []string{"Name", "Date", "Sex"},
			want:  model.DeceasedRecord{},
		},
		{
			name:  "single token name is not a name",
			cells: []string{"CHER", "01/01/2026"},
			want:  model.DeceasedRecord{DeathDate: "01/01/2026"},
		},
		{
			name:  "lowercase sex ignored",
			cells: []string{"DOE JANE", "f"},
			want:  model.DeceasedRecord{Person: "DOE JANE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRow(tt.cells))
		})
	}
}

const resultsPage = `<html><body>
<table><tbody mkr="rows">
  <tr><td>Name</td><td>Date of Death</td><td>Sex</td></tr>
  <tr><td> SMITH JOHN ROBERT </td><td>03/14/2026</td><td>M</td></tr>
  <tr><td>DOE MARY</td><td>03/14/2026</td><td>F</td></tr>
</tbody></table>
<input type="image" id="OptionsBar2_imgNext" %s/>
</body></html>`

func TestParseResults(t *testing.T) {
	t.Run("more pages", func(t *testing.T) {
		rows, last, err := ParseResults(sprintfPage(""))
		require.NoError(t, err)
		assert.False(t, last)
		require.Len(t, rows, 3)
		assert.Empty(t, rows[0].Person)
		assert.Equal(t, "SMITH JOHN ROBERT", rows[1].Person)
		assert.Equal(t, "F", rows[2].Sex)
	})

	t.Run("next disabled", func(t *testing.T) {
		_, last, err := ParseResults(sprintfPage(`disabled="disabled"`))
		require.NoError(t, err)
		assert.True(t, last)
	})

	t.Run("no results", func(t *testing.T) {
		rows, last, err := ParseResults(`<html><body>No records</body></html>`)
		require.NoError(t, err)
		assert.True(t, last)
		assert.Empty(t, rows)
	})
}

func sprintfPage(attr string) string {
	return fmt.Sprintf(resultsPage, attr)
}

// fakeBrowser serves scripted pages and records interactions.
type fakeBrowser struct {
	pages   []string
	renders int
	clicks  []string
	fills   map[string]string
	waits   []time.Duration
	failAt  int
}

func (f *fakeBrowser) Goto(context.Context, string) error { return nil }

func (f *fakeBrowser) Click(_ context.Context, sel string) error {
	f.clicks = append(f.clicks, sel)
	return nil
}

func (f *fakeBrowser) Fill(_ context.Context, sel, text string) error {
	if f.fills == nil {
		f.fills = map[string]string{}
	}
	f.fills[sel] = text
	return nil
}

func (f *fakeBrowser) Wait(_ context.Context, d time.Duration) error {
	f.waits = append(f.waits, d)
	return nil
}

func (f *fakeBrowser) HTML(context.Context) (string, error) {
	f.renders++
	if f.failAt > 0 && f.renders == f.failAt {
		return "", errors.New("render failed")
	}
	return f.pages[f.renders-1], nil
}

func TestRegistry_ScanPagesUntilDisabled(t *testing.T) {
	fb := &fakeBrowser{pages: []string{sprintfPage(""), sprintfPage(`disabled`)}}
	scanner := NewScanner(NewRegistry(fb, RegistryConfig{}))

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	batch, err := scanner.Scan(context.Background(), Window{From: day, To: day})
	require.NoError(t, err)

	assert.Len(t, batch.DeadPeopleList, 2)
	assert.Equal(t, 4, batch.NumberOfNamesExtracted)
	assert.Equal(t, "03/14/2026", fb.fills[selectorFromDate])
	assert.Equal(t, "03/14/2026", fb.fills[selectorToDate])
	assert.Equal(t, []time.Duration{5 * time.Second, 3 * time.Second}, fb.waits)
	assert.Equal(t, selectorNext, fb.clicks[len(fb.clicks)-1])
	assert.Equal(t, 2, fb.renders)
}

func TestScanner_KeepsPagesOnLaterFailure(t *testing.T) {
	fb := &fakeBrowser{pages: []string{sprintfPage(""), ""}, failAt: 2}
	batch, err := NewScanner(NewRegistry(fb, RegistryConfig{})).Scan(context.Background(), DefaultWindow(time.Now()))
	require.NoError(t, err)
	assert.Len(t, batch.DeadPeopleList, 1)
	assert.Equal(t, 2, batch.NumberOfNamesExtracted)
}

func TestScanner_FirstPageFailure(t *testing.T) {
	fb := &fakeBrowser{failAt: 1}
	_, err := NewScanner(NewRegistry(fb, RegistryConfig{})).Scan(context.Background(), DefaultWindow(time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first page")
}

func TestScanner_MaxPages(t *testing.T) {
	fb := &fakeBrowser{pages: []string{sprintfPage(""), sprintfPage(""), sprintfPage("")}}
	batch, err := NewScanner(NewRegistry(fb, RegistryConfig{}), WithMaxPages(2)).Scan(context.Background(), DefaultWindow(time.Now()))
	require.NoError(t, err)
	assert.Len(t, batch.DeadPeopleList, 2)
}

type failingSource struct{}

func (failingSource) Search(context.Context, string, string) (Session, error) {
	return nil, errors.New("site down")
}

func TestScanner_SearchFailure(t *testing.T) {
	_, err := NewScanner(failingSource{}).Scan(context.Background(), DefaultWindow(time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deathindex: search")
}

func TestWindow(t *testing.T) {
	now := time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC)

	w := DefaultWindow(now)
	assert.Equal(t, "03/03/2026", FormatDate(w.From))
	assert.Equal(t, w.From, w.To)

	assert.Equal(t, "07/18/2026", FormatDate(SubtractMonths(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), 3)))

	w, err := ParseWindow("01/01/2026", "01/31/2026", now)
	require.NoError(t, err)
	assert.Equal(t, "01/01/2026", FormatDate(w.From))
	assert.Equal(t, "01/31/2026", FormatDate(w.To))

	_, err = ParseWindow("02/01/2026", "01/01/2026", now)
	assert.Error(t, err)

	_, err = ParseWindow("2026-01-01", "", now)
	assert.Error(t, err)
}
