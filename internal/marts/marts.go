// Package marts builds the analytics tables from staging rows.
//
// Bank and credit card staging rows are unioned into one shape, every fine
// category is rolled up to a meta-category through a total mapping, and each
// row is placed in exactly one domain: excluded (internal transfers), savings,
// income or spending. Membership is tested in that order. marts_transactions
// holds income and spending rows; savings rows appear only in marts_savings.
package marts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Config is the category configuration the aggregator runs against.
type Config struct {
	MetaCategories map[string]string // category -> meta_category
	Income         map[string]bool
	Savings        map[string]bool
	Excluded       map[string]bool // internal transfers kept out of every domain table
}

// NewConfig builds a Config from category lists.
func NewConfig(meta map[string]string, income, savings, excluded []string) Config {
	return Config{
		MetaCategories: meta,
		Income:         toSet(income),
		Savings:        toSet(savings),
		Excluded:       toSet(excluded),
	}
}

func toSet(items []string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, it := range items {
		s[it] = true
	}
	return s
}

// Validate reports a category claimed by more than one domain set.
func (c Config) Validate() error {
	owner := make(map[string]string)
	var conflicts []string
	for _, set := range []struct {
		name string
		cats map[string]bool
	}{{"excluded", c.Excluded}, {"savings", c.Savings}, {"income", c.Income}} {
		for cat := range set.cats {
			if prev, ok := owner[cat]; ok {
				conflicts = append(conflicts, fmt.Sprintf("%s (%s, %s)", cat, prev, set.name))
				continue
			}
			owner[cat] = set.name
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return fmt.Errorf("categories in more than one domain: %s", strings.Join(conflicts, ", "))
	}
	return nil
}

// MappingError lists fine categories with no meta-category.
type MappingError struct {
	Categories []string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("no meta-category mapping for categories: %s", strings.Join(e.Categories, ", "))
}

// Result holds the four marts tables.
type Result struct {
	Transactions []model.MartsTransaction
	Spending     []model.MartsTransaction
	Income       []model.MartsTransaction
	Savings      []model.MartsTransaction
	Excluded     int
}

// Union concatenates bank and card staging rows into the marts shape.
// MetaCategory is left empty.
func Union(bank, card []model.StagingTransaction) []model.MartsTransaction {
	rows := make([]model.MartsTransaction, 0, len(bank)+len(card))
	for _, src := range [][]model.StagingTransaction{bank, card} {
		for _, s := range src {
			rows = append(rows, model.MartsTransaction{
				TransactionID:         s.TransactionID,
				Source:                s.SourceType,
				AccountOrCardNumber:   s.SourceAccount,
				PostedDate:            s.PostedDate,
				Amount:                s.Amount,
				NormalizedDescription: s.NormalizedDescription,
				Year:                  s.Year,
				Month:                 s.Month,
				DayOfWeek:             s.DayOfWeek,
				YearMonth:             s.YearMonth,
				Category:              s.Category,
			})
		}
	}
	return rows
}

// CheckMapping returns a *MappingError naming every category in rows that
// has no meta-category, or nil.
func CheckMapping(rows []model.MartsTransaction, meta map[string]string) error {
	missing := make(map[string]bool)
	for _, r := range rows {
		if _, ok := meta[r.Category]; !ok {
			missing[r.Category] = true
		}
	}
	if len(missing) == 0 {
		return nil
	}
	cats := make([]string, 0, len(missing))
	for c := range missing {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return &MappingError{Categories: cats}
}

// Aggregate builds the marts tables. A category without a meta-category
// aborts with *MappingError before any row is partitioned.
func Aggregate(bank, card []model.StagingTransaction, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rows := Union(bank, card)
	if err := CheckMapping(rows, cfg.MetaCategories); err != nil {
		return nil, err
	}

	res := &Result{}
	for _, r := range rows {
		r.MetaCategory = cfg.MetaCategories[r.Category]
		switch {
		case cfg.Excluded[r.Category]:
			res.Excluded++
		case cfg.Savings[r.Category]:
			// A transfer out of the bank is money into savings.
			r.Amount = r.Amount.Neg()
			res.Savings = append(res.Savings, r)
		case cfg.Income[r.Category]:
			res.Transactions = append(res.Transactions, r)
			res.Income = append(res.Income, r)
		default:
			res.Transactions = append(res.Transactions, r)
			r.Amount = r.Amount.Neg()
			res.Spending = append(res.Spending, r)
		}
	}
	return res, nil
}
