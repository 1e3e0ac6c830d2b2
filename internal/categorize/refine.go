package categorize

import (
	"sort"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Refinement rewrites a category after first-match categorization, using
// fields the description alone does not carry.
type Refinement struct {
	Name string
	From string // category the refinement applies to
	To   string
	When func(txn model.StagingTransaction) bool
}

// Apply returns the refined category for txn, or txn.Category unchanged.
// The first applicable refinement wins.
func Apply(refinements []Refinement, txn model.StagingTransaction) string {
	for _, r := range refinements {
		if txn.Category == r.From && r.When(txn) {
			return r.To
		}
	}
	return txn.Category
}

func isWeekend(txn model.StagingTransaction) bool {
	return txn.DayOfWeek == 6 || txn.DayOfWeek == 7
}

// DefaultCardRefinements splits the coffee-shop habit by weekday and moves
// uncategorized restaurant charges into EATING_OUT.
func DefaultCardRefinements() []Refinement {
	return []Refinement{
		{Name: "ovation-weekend", From: "OVATION", To: "OVATION_WEEKEND", When: isWeekend},
		{
			Name: "ovation-weekday", From: "OVATION", To: "OVATION_WEEKDAY",
			When: func(txn model.StagingTransaction) bool { return !isWeekend(txn) },
		},
		{
			Name: "food-and-drink", From: DefaultFallback, To: "EATING_OUT",
			When: func(txn model.StagingTransaction) bool { return txn.InstitutionCategory == "Food & Drink" },
		},
	}
}

// Categorizer holds the rule sets for each source type.
type Categorizer struct {
	Bank            *RuleSet
	Card            *RuleSet
	CardRefinements []Refinement
}

// NewDefault returns a Categorizer with the built-in tables.
func NewDefault() *Categorizer {
	return &Categorizer{
		Bank:            DefaultBankRules(),
		Card:            DefaultCardRules(),
		CardRefinements: DefaultCardRefinements(),
	}
}

// RuleSet returns the rule set for source.
func (c *Categorizer) RuleSet(source model.SourceType) *RuleSet {
	if source == model.SourceCreditCard {
		return c.Card
	}
	return c.Bank
}

// Categorize resolves the category of a staging row whose normalized
// description and calendar fields are already set. fallback reports that
// no rule matched.
func (c *Categorizer) Categorize(txn model.StagingTransaction) (category string, fallback bool) {
	rs := c.RuleSet(txn.SourceType)
	txn.Category, fallback = rs.Categorize(txn.NormalizedDescription)
	if txn.SourceType == model.SourceCreditCard {
		refined := Apply(c.CardRefinements, txn)
		if refined != txn.Category {
			return refined, false
		}
	}
	return txn.Category, fallback
}

// Categories returns every category the categorizer can emit for source,
// including refinement targets.
func (c *Categorizer) Categories(source model.SourceType) []string {
	cats := c.RuleSet(source).Categories()
	if source != model.SourceCreditCard || len(c.CardRefinements) == 0 {
		return cats
	}
	seen := make(map[string]bool, len(cats))
	for _, cat := range cats {
		seen[cat] = true
	}
	for _, r := range c.CardRefinements {
		if !seen[r.To] {
			seen[r.To] = true
			cats = append(cats, r.To)
		}
	}
	sort.Strings(cats)
	return cats
}
