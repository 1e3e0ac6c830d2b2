package taxonomy

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Domain is the marts table family a category feeds.
type Domain string

const (
	DomainSpending Domain = "spending"
	DomainIncome   Domain = "income"
	DomainSavings  Domain = "savings"
	DomainExcluded Domain = "excluded"
)

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	switch d {
	case DomainSpending, DomainIncome, DomainSavings, DomainExcluded:
		return true
	}
	return false
}

// Entry rolls one fine category up to a meta-category and domain.
type Entry struct {
	Category     string
	MetaCategory string
	Domain       Domain
	Description  string
}

// Header is the CSV header for category-taxonomy.csv.
var Header = []string{"category", "meta_category", "domain", "description"}

const (
	numFields   = 4
	colCategory = 0
	colMeta     = 1
	colDomain   = 2
	colDesc     = 3
)

// ReadEntries reads category-taxonomy.csv.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes category-taxonomy.csv.
func WriteEntries(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colCategory] = e.Category
	row[colMeta] = e.MetaCategory
	row[colDomain] = string(e.Domain)
	row[colDesc] = e.Description
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colCategory] == "" {
		return Entry{}, fmt.Errorf("empty category")
	}
	if record[colMeta] == "" {
		return Entry{}, fmt.Errorf("category %s: empty meta_category", record[colCategory])
	}

	d := Domain(record[colDomain])
	if !d.Valid() {
		return Entry{}, fmt.Errorf("category %s: invalid domain %q", record[colCategory], record[colDomain])
	}

	return Entry{
		Category:     record[colCategory],
		MetaCategory: record[colMeta],
		Domain:       d,
		Description:  record[colDesc],
	}, nil
}
