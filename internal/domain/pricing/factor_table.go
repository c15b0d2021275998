package pricing

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// FactorKey names one multiplier in the factor table
type FactorKey string

const (
	FactorInstaller         FactorKey = "Installer"
	FactorWholesale         FactorKey = "Wholesale"
	FactorGeneral           FactorKey = "General"
	FactorUSD               FactorKey = "USD"
	FactorRegulatedCurrency FactorKey = "RegulatedCurrency"
)

// AllFactorKeys returns the complete, closed key set of a factor table
func AllFactorKeys() []FactorKey {
	return []FactorKey{
		FactorInstaller,
		FactorWholesale,
		FactorGeneral,
		FactorUSD,
		FactorRegulatedCurrency,
	}
}

// IsValid reports whether the key belongs to the factor table
func (k FactorKey) IsValid() bool {
	for _, known := range AllFactorKeys() {
		if k == known {
			return true
		}
	}
	return false
}

// FactorTable maps every pricing class and currency mode to a multiplier.
// Tables are replaced wholesale; there is no partial update.
type FactorTable map[FactorKey]decimal.Decimal

// DefaultFactorTable returns a fresh copy of the built-in table used when
// no configured table is available.
func DefaultFactorTable() FactorTable {
	return FactorTable{
		FactorInstaller:         decimal.NewFromInt(1),
		FactorWholesale:         decimal.RequireFromString("0.9"),
		FactorGeneral:           decimal.RequireFromString("1.1"),
		FactorUSD:               decimal.NewFromInt(1),
		FactorRegulatedCurrency: decimal.RequireFromString("1.5"),
	}
}

// Validate checks that the table is complete and every multiplier is positive
func (t FactorTable) Validate() error {
	if len(t) == 0 {
		return invalidFactorTable("factor table is empty")
	}
	var unknown []string
	for k := range t {
		if !k.IsValid() {
			unknown = append(unknown, string(k))
		}
	}
	if len(unknown) > 0 {
		return invalidFactorTable("unknown factor keys: %s", strings.Join(unknown, ", "))
	}
	for _, k := range AllFactorKeys() {
		v, ok := t[k]
		if !ok {
			return invalidFactorTable("missing factor %s", k)
		}
		if !v.IsPositive() {
			return invalidFactorTable("factor %s must be positive, got %s", k, v.String())
		}
	}
	return nil
}

// Factor returns the multiplier for key. Callers pass validated tables;
// a missing key yields zero.
func (t FactorTable) Factor(key FactorKey) decimal.Decimal {
	return t[key]
}

// ForClass returns the multiplier for a pricing class
func (t FactorTable) ForClass(c PricingClass) decimal.Decimal {
	return t.Factor(c.FactorKey())
}

// ForCurrency returns the multiplier for a currency mode
func (t FactorTable) ForCurrency(m CurrencyMode) decimal.Decimal {
	return t.Factor(m.FactorKey())
}

// Clone returns a copy that can be mutated independently
func (t FactorTable) Clone() FactorTable {
	out := make(FactorTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Equal reports whether both tables hold the same keys and values
func (t FactorTable) Equal(other FactorTable) bool {
	if len(t) != len(other) {
		return false
	}
	for k, v := range t {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// FactorStore holds the current factor table.
//
// Get never fails: an empty or unreachable store yields DefaultFactorTable.
// Set validates the table before writing it and reports store failures as
// ErrFactorStoreUnavailable.
type FactorStore interface {
	Get(ctx context.Context) FactorTable
	Set(ctx context.Context, table FactorTable) error
}
