// Package csvtemplates generates the downloadable bookkeeping spreadsheets.
package csvtemplates

import (
	"encoding/csv"
	"io"
	"sort"
)

// BlankRows is the number of empty rows appended after the samples.
const BlankRows = 20

// Template describes one downloadable spreadsheet.
type Template struct {
	Slug       string
	Filename   string
	Title      string
	Headers    []string
	SampleRows [][]string
}

var registry = map[string]Template{
	"expense-tracker": {
		Slug:     "expense-tracker",
		Filename: "expense-tracker.csv",
		Title:    "Expense tracker",
		Headers:  []string{"Date", "Category", "Description", "Amount", "Payment Method"},
		SampleRows: [][]string{
			{"2024-01-15", "Supplies", "Styling products from supplier", "85.00", "Business Card"},
			{"2024-01-18", "Tools", "New clipper blades", "45.00", "Cash"},
			{"2024-02-01", "Booth Rent", "February booth rental", "400.00", "Check"},
		},
	},
	"income-log": {
		Slug:     "income-log",
		Filename: "income-log.csv",
		Title:    "Income log",
		Headers:  []string{"Date", "Client", "Service", "Amount", "Collection Method"},
		SampleRows: [][]string{
			{"2024-01-15", "", "Haircut + beard trim", "45.00", "Direct - Cash"},
			{"2024-01-15", "", "Fade", "35.00", "Direct - Card"},
			{"2024-01-16", "", "Haircut", "30.00", "Shop collected"},
		},
	},
}

// Lookup returns the template registered under slug.
func Lookup(slug string) (Template, bool) {
	t, ok := registry[slug]
	return t, ok
}

// List returns every template ordered by slug.
func List() []Template {
	out := make([]Template, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// Write serialises t as CSV: headers, sample rows, then BlankRows empty rows.
func Write(w io.Writer, t Template) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.SampleRows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	blank := make([]string, len(t.Headers))
	for i := 0; i < BlankRows; i++ {
		if err := writer.Write(blank); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
