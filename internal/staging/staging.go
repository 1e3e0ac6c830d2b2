package staging

import (
	"time"

	"github.com/cleared-dev/ledgerflow/internal/categorize"
	"github.com/cleared-dev/ledgerflow/internal/id"
	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Fallback records a row that no categorization rule matched.
type Fallback struct {
	TransactionID string
	Source        model.SourceType
	Description   string
}

// Result is the output of one staging transform.
type Result struct {
	Transactions []model.StagingTransaction
	Fallbacks    []Fallback
}

// DayOfWeek returns the ISO weekday of t: Monday = 1 .. Sunday = 7.
func DayOfWeek(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Normalize derives the cleaned text and calendar fields for raw.
// Category is left empty.
func Normalize(raw model.RawTransaction) model.StagingTransaction {
	d := raw.PostedDate
	return model.StagingTransaction{
		RawTransaction:        raw,
		NormalizedDescription: id.NormalizeText(raw.RawDescription),
		Year:                  d.Year(),
		Month:                 int(d.Month()),
		DayOfWeek:             DayOfWeek(d),
		YearMonth:             id.YearMonth(d),
	}
}

// Transform produces exactly one staging row per raw row, in input order.
// It has no state beyond its arguments.
func Transform(raws []model.RawTransaction, c *categorize.Categorizer) Result {
	res := Result{Transactions: make([]model.StagingTransaction, 0, len(raws))}
	for _, raw := range raws {
		txn := Normalize(raw)
		cat, fallback := c.Categorize(txn)
		txn.Category = cat
		if fallback {
			res.Fallbacks = append(res.Fallbacks, Fallback{
				TransactionID: txn.TransactionID,
				Source:        txn.SourceType,
				Description:   txn.NormalizedDescription,
			})
		}
		res.Transactions = append(res.Transactions, txn)
	}
	return res
}
