// Package report exports a run's enriched leads as a spreadsheet.
package report

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/estate-leads/internal/model"
)

// SheetName is the worksheet leads are written to.
const SheetName = "Leads"

type column struct {
	header string
	value  func(model.EnrichedLead) string
}

var columns = []column{
	{"Person", func(l model.EnrichedLead) string { return l.Person }},
	{"Death Date", func(l model.EnrichedLead) string { return l.DeathDate }},
	{"Sex", func(l model.EnrichedLead) string { return l.Sex }},
	{"Owners", func(l model.EnrichedLead) string { return l.HomeOwnersName }},
	{"Spouse", func(l model.EnrichedLead) string { return l.Spouse }},
	{"Property Address", func(l model.EnrichedLead) string { return l.Address }},
	{"Google Address", func(l model.EnrichedLead) string { return l.GoogleAddress }},
	{"Mailing Address", func(l model.EnrichedLead) string { return l.MailingAddress }},
	{"Appraised Value", func(l model.EnrichedLead) string { return l.AppraisedValue }},
	{"Estimated Value", func(l model.EnrichedLead) string { return l.EstimatedValue }},
	{"Age", func(l model.EnrichedLead) string { return l.Age }},
	{"Phones", func(l model.EnrichedLead) string { return strings.Join(l.CleanedNumbers, ";") }},
	{"Phone Confidence", func(l model.EnrichedLead) string { return string(l.PhoneNumberConfidence) }},
	{"Mortgage Amount", func(l model.EnrichedLead) string { return l.DeedDetails.MortgageAmount }},
	{"Equity", func(l model.EnrichedLead) string { return l.DeedDetails.Equity }},
	{"Year Built", func(l model.EnrichedLead) string { return l.YearBuilt }},
	{"Tax Delinquent Year", func(l model.EnrichedLead) string { return l.TaxDelinquentYear }},
	{"Degradation", func(l model.EnrichedLead) string { return string(l.Degradation) }},
}

// Headers returns the column headers in order.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

// Rows flattens leads to one row per lead, headers excluded.
func Rows(leads []model.EnrichedLead) [][]string {
	out := make([][]string, 0, len(leads))
	for _, l := range leads {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = c.value(l)
		}
		out = append(out, row)
	}
	return out
}

// WriteXLSX writes leads as a single-sheet workbook.
func WriteXLSX(w io.Writer, leads []model.EnrichedLead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	addRow(sheet, Headers())
	for _, r := range Rows(leads) {
		addRow(sheet, r)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write xlsx")
	}
	return nil
}

// WriteCSV writes leads as CSV with a header row.
func WriteCSV(w io.Writer, leads []model.EnrichedLead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}
	if err := cw.WriteAll(Rows(leads)); err != nil {
		return eris.Wrap(err, "report: write csv")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, v := range cells {
		row.AddCell().SetString(v)
	}
}
