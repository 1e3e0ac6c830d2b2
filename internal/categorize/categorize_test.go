package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

func TestRuleSet_FirstMatchWins(t *testing.T) {
	rs := NewRuleSet("",
		rule("COFFEE", Contains("STARBUCKS")),
		rule("MISC", Contains("BUCKS")),
	)

	cat, fallback := rs.Categorize("STARBUCKS #4021")
	assert.Equal(t, "COFFEE", cat)
	assert.False(t, fallback)

	cat, _ = rs.Categorize("BIG BUCKS DINER")
	assert.Equal(t, "MISC", cat)
}

func TestRuleSet_OrderNotSpecificity(t *testing.T) {
	// The broad rule is declared first, so it wins even over an exact match.
	rs := NewRuleSet("",
		rule("CASH_WITHDRAWL", Contains("WITHDRAWAL")),
		rule("CASH_WITHDRAWL_FOR_WEDDING", Equals("WITHDRAWAL 07/14")),
	)
	cat, _ := rs.Categorize("WITHDRAWAL 07/14")
	assert.Equal(t, "CASH_WITHDRAWL", cat)
}

func TestRuleSet_Fallback(t *testing.T) {
	rs := NewRuleSet("", rule("COFFEE", Contains("STARBUCKS")))
	cat, fallback := rs.Categorize("ZELLE TO SOMEONE")
	assert.Equal(t, "OTHER", cat)
	assert.True(t, fallback)

	custom := NewRuleSet("UNCATEGORIZED")
	cat, _ = custom.Categorize("ANYTHING")
	assert.Equal(t, "UNCATEGORIZED", cat)
}

func TestMatcher(t *testing.T) {
	re, err := Regex(`^SHELL \d+`)
	require.NoError(t, err)

	tests := []struct {
		name string
		m    Matcher
		desc string
		want bool
	}{
		{"contains any", Contains("LYFT", "UBER"), "UBER *TRIP", true},
		{"contains lowercase pattern", Contains("hale pele"), "HALE PELE PORTLAND", true},
		{"contains miss", Contains("LYFT"), "UBER *TRIP", false},
		{"equals", Equals("INTEREST PAYMENT"), "INTEREST PAYMENT", true},
		{"equals is exact", Equals("INTEREST PAYMENT"), "INTEREST PAYMENT REVERSAL", false},
		{"prefix", Prefix("TST*"), "TST* QDS", true},
		{"prefix miss", Prefix("TST*"), "SQ *TST*", false},
		{"regex", re, "SHELL 5732", true},
		{"regex miss", re, "ROYAL SHELL 5732", false},
		{"trailing space kept", Contains("UNITED "), "UNITED 0162345", true},
		{"trailing space not at end", Contains("UNITED "), "MOVE UNITED", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.m.Match(tt.desc), tt.name)
	}
}

func TestRegex_Invalid(t *testing.T) {
	_, err := Regex("(")
	assert.Error(t, err)
}

func TestDefaultBankRules(t *testing.T) {
	rs := DefaultBankRules()
	tests := []struct {
		desc string
		want string
	}{
		{"CLEARCOVER INC PAYROLL PPD ID: 1234", "SALARY"},
		{"INTEREST PAYMENT", "ACCOUNT_INTEREST"},
		{"VANGUARD BUY INVESTMENT PPD ID: 9900", "TRANSFER_TO_BROKERAGE"},
		{"VANGUARD SELL INVESTMENT PPD ID: 9900", "TRANSFER_FROM_BROKERAGE"},
		{"PAYMENT TO CHASE CARD ENDING IN 5678 03/06", "CREDIT_CARD_PAYMENT"},
		{"ONLINE TRANSFER TO SAV ...4321", "TRANSFER_BETWEEN_CHASE_ACCOUNTS"},
		{"WITHDRAWAL 07/14", "CASH_WITHDRAWL_FOR_WEDDING"},
		{"WITHDRAWAL 08/02", "CASH_WITHDRAWL"},
		{"IRS TREAS 310 TAX REF PPD ID: 1", "TAX_REFUND"},
		{"ZELLE TO SOMEONE", "OTHER"},
	}
	for _, tt := range tests {
		got, _ := rs.Categorize(tt.desc)
		assert.Equal(t, tt.want, got, tt.desc)
	}
}

func TestDefaultCardRules(t *testing.T) {
	rs := DefaultCardRules()
	tests := []struct {
		desc string
		want string
	}{
		{"PAYMENT THANK YOU-MOBILE", "CREDIT_CARD_PAYMENT"},
		{"SQ *OVATION COFFEE", "OVATION"},
		{"SAFEWAY #2790", "GROCERIES"},
		{"UBER *TRIP", "RIDESHARE"},
		{"PORTLAND GENERAL ELECTRIC", "PGE"},
		{"SPOTIFY USA", "SPOTIFY_MEMBERSHIP"},
		{"AMAZON PRIME*AB12C", "AMAZON_PRIME"},
		{"AMZN MKTP US*1A2B3", "AMAZON_PURCHASE"},
		{"CHEVRON 0091234", "GAS"},
		{"UNKNOWN SHOP", "OTHER"},
	}
	for _, tt := range tests {
		got, _ := rs.Categorize(tt.desc)
		assert.Equal(t, tt.want, got, tt.desc)
	}
}

func TestCategorizer_CardRefinements(t *testing.T) {
	c := NewDefault()
	card := func(desc string, dow int, instCat string) model.StagingTransaction {
		return model.StagingTransaction{
			RawTransaction:        model.RawTransaction{SourceType: model.SourceCreditCard, InstitutionCategory: instCat},
			NormalizedDescription: desc,
			DayOfWeek:             dow,
		}
	}

	tests := []struct {
		name         string
		txn          model.StagingTransaction
		want         string
		wantFallback bool
	}{
		{"saturday coffee", card("SQ *OVATION COFFEE", 6, "Food & Drink"), "OVATION_WEEKEND", false},
		{"sunday coffee", card("SQ *OVATION COFFEE", 7, "Food & Drink"), "OVATION_WEEKEND", false},
		{"monday coffee", card("SQ *OVATION COFFEE", 1, "Food & Drink"), "OVATION_WEEKDAY", false},
		{"unknown restaurant", card("TINY TACO TRUCK", 2, "Food & Drink"), "EATING_OUT", false},
		{"unknown shop", card("UNKNOWN SHOP", 2, "Shopping"), "OTHER", true},
	}
	for _, tt := range tests {
		got, fallback := c.Categorize(tt.txn)
		assert.Equal(t, tt.want, got, tt.name)
		assert.Equal(t, tt.wantFallback, fallback, tt.name)
	}
}

func TestCategorizer_BankIgnoresCardRefinements(t *testing.T) {
	c := NewDefault()
	txn := model.StagingTransaction{
		RawTransaction:        model.RawTransaction{SourceType: model.SourceBank, InstitutionCategory: "Food & Drink"},
		NormalizedDescription: "TINY TACO TRUCK",
	}
	got, fallback := c.Categorize(txn)
	assert.Equal(t, "OTHER", got)
	assert.True(t, fallback)
}

func TestCategorizer_Categories(t *testing.T) {
	c := NewDefault()
	cats := c.Categories(model.SourceCreditCard)
	assert.Contains(t, cats, "OVATION_WEEKEND")
	assert.Contains(t, cats, "OVATION_WEEKDAY")
	assert.Contains(t, cats, "OTHER")
	assert.IsNonDecreasing(t, cats)

	bank := c.Categories(model.SourceBank)
	assert.Contains(t, bank, "SALARY")
	assert.NotContains(t, bank, "OVATION_WEEKEND")
}

func TestLoadRuleSet(t *testing.T) {
	rs, err := LoadRuleSet("../../testdata/rules/card_rules.yaml")
	require.NoError(t, err)
	require.Len(t, rs.Rules, 5)
	assert.Equal(t, "OTHER", rs.Fallback)
	assert.Equal(t, "coffee", rs.Rules[0].Name)

	tests := []struct {
		desc string
		want string
	}{
		{"STARBUCKS #4021", "COFFEE"},
		{"BIG BUCKS", "MISC"},
		{"PORTLAND GENERAL ELECTRIC", "PGE"},
		{"UBER *TRIP", "RIDESHARE"},
		{"SHELL 5732", "GAS"},
		{"ROYAL SHELL 5732", "OTHER"},
	}
	for _, tt := range tests {
		got, _ := rs.Categorize(tt.desc)
		assert.Equal(t, tt.want, got, tt.desc)
	}
}

func TestParseRuleSet_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing category", "rules:\n  - contains: [X]\n"},
		{"no matcher", "rules:\n  - category: X\n"},
		{"two matchers", "rules:\n  - category: X\n    contains: [A]\n    equals: B\n"},
		{"bad regex", "rules:\n  - category: X\n    regex: '('\n"},
		{"bad yaml", "rules: [\n"},
	}
	for _, tt := range tests {
		_, err := ParseRuleSet([]byte(tt.yaml))
		assert.Error(t, err, tt.name)
	}
}

func TestMarshalRuleSet_DefaultTablesReload(t *testing.T) {
	for _, rs := range []*RuleSet{DefaultBankRules(), DefaultCardRules()} {
		data, err := MarshalRuleSet(rs)
		require.NoError(t, err)

		got, err := ParseRuleSet(data)
		require.NoError(t, err)
		require.Len(t, got.Rules, len(rs.Rules))
		for i := range rs.Rules {
			assert.Equal(t, rs.Rules[i].Category, got.Rules[i].Category)
			assert.Equal(t, rs.Rules[i].Matcher.Kind, got.Rules[i].Matcher.Kind)
			assert.Equal(t, rs.Rules[i].Matcher.Patterns, got.Rules[i].Matcher.Patterns)
		}
	}
}
