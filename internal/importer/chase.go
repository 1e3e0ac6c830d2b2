package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// noDescription replaces an empty description so every row stays categorizable.
const noDescription = "No description"

// dateFormats are the posting-date layouts seen in CSV and XLSX exports.
var dateFormats = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"1/2/06",
}

// layout names the header columns a parser reads. Optional columns may be empty.
type layout struct {
	date        string
	description string
	amount      string
	balance     string
	category    string
	marker      string // header only this layout has
}

// ChaseParser parses Chase checking and savings exports.
type ChaseParser struct{}

var chaseBankLayout = layout{
	date:        "Posting Date",
	description: "Description",
	amount:      "Amount",
	balance:     "Balance",
	marker:      "Posting Date",
}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase_bank" }

// Source returns the source type this layout belongs to.
func (p *ChaseParser) Source() model.SourceType { return model.SourceBank }

// Matches reports whether header is a Chase bank export header.
func (p *ChaseParser) Matches(header []string) bool { return chaseBankLayout.matches(header) }

// ParseRecords converts records (header first) into raw transactions.
func (p *ChaseParser) ParseRecords(records [][]string) ([]model.RawTransaction, []*RowError) {
	return chaseBankLayout.parse(records)
}

// ChaseCardParser parses Chase credit card exports.
type ChaseCardParser struct{}

var chaseCardLayout = layout{
	date:        "Transaction Date",
	description: "Description",
	amount:      "Amount",
	category:    "Category",
	marker:      "Transaction Date",
}

// Format returns the parser name.
func (p *ChaseCardParser) Format() string { return "chase_card" }

// Source returns the source type this layout belongs to.
func (p *ChaseCardParser) Source() model.SourceType { return model.SourceCreditCard }

// Matches reports whether header is a Chase card export header.
func (p *ChaseCardParser) Matches(header []string) bool { return chaseCardLayout.matches(header) }

// ParseRecords converts records (header first) into raw transactions.
func (p *ChaseCardParser) ParseRecords(records [][]string) ([]model.RawTransaction, []*RowError) {
	return chaseCardLayout.parse(records)
}

func (l layout) matches(header []string) bool {
	idx := headerIndex(header)
	for _, col := range []string{l.marker, l.date, l.description, l.amount} {
		if _, ok := idx[strings.ToLower(col)]; !ok {
			return false
		}
	}
	return true
}

func (l layout) parse(records [][]string) ([]model.RawTransaction, []*RowError) {
	if len(records) <= 1 {
		return nil, nil
	}
	idx := headerIndex(records[0])
	col := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := idx[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}
	dateCol, descCol, amountCol := col(l.date), col(l.description), col(l.amount)
	balanceCol, categoryCol := col(l.balance), col(l.category)

	var txns []model.RawTransaction
	var rowErrs []*RowError
	for i, rec := range records[1:] {
		row := i + 2
		if blank(rec) {
			continue
		}

		date, err := parseDate(field(rec, dateCol))
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Row: row, Reason: "invalid date", Err: err})
			continue
		}

		amount, err := parseAmount(field(rec, amountCol))
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Row: row, Reason: "invalid amount", Err: err})
			continue
		}

		desc := strings.TrimSpace(field(rec, descCol))
		if desc == "" {
			desc = noDescription
		}

		txn := model.RawTransaction{
			PostedDate:          date,
			Amount:              amount,
			RawDescription:      desc,
			InstitutionCategory: strings.TrimSpace(field(rec, categoryCol)),
		}
		if b := field(rec, balanceCol); strings.TrimSpace(b) != "" {
			if bal, err := parseAmount(b); err == nil {
				txn.Balance = decimal.NewNullDecimal(bal)
			}
		}
		txns = append(txns, txn)
	}
	return txns, rowErrs
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: unrecognized format", s)
}

// parseAmount accepts "$1,234.56", "-4.00" and accounting-style "(4.00)".
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Decimal{}, errors.New("empty amount")
	}
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
