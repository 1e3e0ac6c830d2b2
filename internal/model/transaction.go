package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceType identifies the kind of account a transaction came from.
type SourceType string

const (
	SourceBank       SourceType = "bank"
	SourceCreditCard SourceType = "credit_card"
)

// SourceTypes lists every source type in processing order.
var SourceTypes = []SourceType{SourceBank, SourceCreditCard}

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	return s == SourceBank || s == SourceCreditCard
}

// UnionSource is the value written to the marts "source" column.
func (s SourceType) UnionSource() string {
	if s == SourceBank {
		return "bank_account"
	}
	return string(s)
}

// RawTransaction is one parsed source-file row.
type RawTransaction struct {
	TransactionID       string
	SourceAccount       string
	SourceType          SourceType
	PostedDate          time.Time
	Amount              decimal.Decimal // negative = outflow
	RawDescription      string
	Balance             decimal.NullDecimal
	InstitutionCategory string // card exports only
	SourceFile          string
}

// StagingTransaction is a RawTransaction after normalization and categorization.
type StagingTransaction struct {
	RawTransaction
	NormalizedDescription string
	Year                  int
	Month                 int
	DayOfWeek             int // Monday = 1 .. Sunday = 7
	YearMonth             string
	Category              string
}

// MartsTransaction is a staging row with its meta-category attached.
type MartsTransaction struct {
	TransactionID         string
	Source                SourceType
	AccountOrCardNumber   string
	PostedDate            time.Time
	Amount                decimal.Decimal
	NormalizedDescription string
	Year                  int
	Month                 int
	DayOfWeek             int
	YearMonth             string
	Category              string
	MetaCategory          string
}
