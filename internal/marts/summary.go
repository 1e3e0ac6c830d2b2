package marts

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// MonthlyTotal is the sum of one meta-category within one year_month.
type MonthlyTotal struct {
	YearMonth    string
	MetaCategory string
	Total        decimal.Decimal
	Count        int
}

// MonthlySummary groups rows by the year_month string and meta_category.
// Output is ordered by year_month then meta_category, both as strings.
func MonthlySummary(rows []model.MartsTransaction) []MonthlyTotal {
	type key struct{ ym, meta string }
	totals := make(map[key]*MonthlyTotal)
	for _, r := range rows {
		k := key{r.YearMonth, r.MetaCategory}
		t, ok := totals[k]
		if !ok {
			t = &MonthlyTotal{YearMonth: r.YearMonth, MetaCategory: r.MetaCategory, Total: decimal.Zero}
			totals[k] = t
		}
		t.Total = t.Total.Add(r.Amount)
		t.Count++
	}

	out := make([]MonthlyTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].YearMonth != out[j].YearMonth {
			return out[i].YearMonth < out[j].YearMonth
		}
		return out[i].MetaCategory < out[j].MetaCategory
	})
	return out
}
