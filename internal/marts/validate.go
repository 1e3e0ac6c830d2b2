package marts

import (
	"fmt"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// PartitionError describes a single partition invariant violation.
type PartitionError struct {
	Invariant     int
	TransactionID string
	Description   string
}

func (e PartitionError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.TransactionID, e.Description)
}

type rowKey struct {
	source model.SourceType
	id     string
}

func keyOf(r model.MartsTransaction) rowKey {
	return rowKey{source: r.Source, id: r.TransactionID}
}

// Validate enforces 4 invariants on an aggregation result.
func Validate(res *Result) []PartitionError {
	var errs []PartitionError

	// Invariant 1: every row carries a meta-category.
	for _, table := range [][]model.MartsTransaction{res.Transactions, res.Spending, res.Income, res.Savings} {
		for _, r := range table {
			if r.MetaCategory == "" {
				errs = append(errs, PartitionError{
					Invariant:     1,
					TransactionID: r.TransactionID,
					Description:   fmt.Sprintf("category %s has no meta_category", r.Category),
				})
			}
		}
	}

	// Invariant 2: each row is in exactly one of spending, income, savings.
	domain := make(map[rowKey]string)
	for _, t := range []struct {
		name string
		rows []model.MartsTransaction
	}{{"spending", res.Spending}, {"income", res.Income}, {"savings", res.Savings}} {
		for _, r := range t.rows {
			k := keyOf(r)
			if prev, ok := domain[k]; ok {
				errs = append(errs, PartitionError{
					Invariant:     2,
					TransactionID: r.TransactionID,
					Description:   fmt.Sprintf("row in both %s and %s", prev, t.name),
				})
				continue
			}
			domain[k] = t.name
		}
	}

	// Invariant 3: transactions is exactly spending plus income.
	inTxns := make(map[rowKey]bool, len(res.Transactions))
	for _, r := range res.Transactions {
		k := keyOf(r)
		inTxns[k] = true
		switch domain[k] {
		case "spending", "income":
		case "savings":
			// Reported by invariant 4.
		default:
			errs = append(errs, PartitionError{
				Invariant:     3,
				TransactionID: r.TransactionID,
				Description:   "row in transactions but not in spending or income",
			})
		}
	}
	for _, table := range [][]model.MartsTransaction{res.Spending, res.Income} {
		for _, r := range table {
			if !inTxns[keyOf(r)] {
				errs = append(errs, PartitionError{
					Invariant:     3,
					TransactionID: r.TransactionID,
					Description:   "domain row missing from transactions",
				})
			}
		}
	}

	// Invariant 4: savings rows never appear in transactions.
	for _, r := range res.Savings {
		if inTxns[keyOf(r)] {
			errs = append(errs, PartitionError{
				Invariant:     4,
				TransactionID: r.TransactionID,
				Description:   "savings row present in transactions",
			})
		}
	}

	return errs
}
