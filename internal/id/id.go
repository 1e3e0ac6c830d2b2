package id

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// descriptionPrefix is how many runes of the description feed the identity hash.
const descriptionPrefix = 50

// transactionIDLen is the number of hex characters kept from the digest.
const transactionIDLen = 16

// TransactionID returns the content-derived identity of a transaction.
// The same inputs always yield the same ID, so re-importing a file is a no-op.
func TransactionID(date time.Time, amount decimal.Decimal, description, account string) string {
	desc := []rune(NormalizeText(description))
	if len(desc) > descriptionPrefix {
		desc = desc[:descriptionPrefix]
	}
	content := strings.Join([]string{
		date.Format(time.DateOnly),
		amount.StringFixed(2),
		string(desc),
		account,
	}, "|")
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:transactionIDLen]
}

// NormalizeText uppercases s and collapses runs of whitespace to one space.
// "  safeway   #102 " -> "SAFEWAY #102"
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

// FormatYearMonth returns the canonical "YYYY-MM" grouping key.
func FormatYearMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// YearMonth returns the "YYYY-MM" key for t.
func YearMonth(t time.Time) string {
	return FormatYearMonth(t.Year(), int(t.Month()))
}

// ParseYearMonth parses "2024-03" into year and month.
func ParseYearMonth(key string) (year, month int, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid year_month format: %q", key)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in year_month %q: %w", key, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in year_month %q: %w", key, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month out of range in year_month %q", key)
	}

	return year, month, nil
}
