// Package pricing holds the price resolution rules: the factor table,
// the offer window evaluation and the resolver that turns a product's
// tier prices into the unit price of one order line.
package pricing

import (
	"fmt"
)

// PricingClass is the customer segment that selects a base price tier.
// The literal set is closed; adding a class requires a schema migration.
type PricingClass string

const (
	PricingClassInstaller  PricingClass = "Installer"
	PricingClassWholesaler PricingClass = "Wholesaler"
	PricingClassGeneral    PricingClass = "General"
)

// AllPricingClasses returns every pricing class in display order
func AllPricingClasses() []PricingClass {
	return []PricingClass{PricingClassInstaller, PricingClassWholesaler, PricingClassGeneral}
}

// IsValid reports whether the class is one of the known literals
func (c PricingClass) IsValid() bool {
	switch c {
	case PricingClassInstaller, PricingClassWholesaler, PricingClassGeneral:
		return true
	}
	return false
}

// FactorKey returns the factor table key applied to this class
func (c PricingClass) FactorKey() FactorKey {
	switch c {
	case PricingClassInstaller:
		return FactorInstaller
	case PricingClassWholesaler:
		return FactorWholesale
	default:
		return FactorGeneral
	}
}

// TierName is the catalog tier name used in error messages
func (c PricingClass) TierName() string {
	if c == PricingClassWholesaler {
		return "Wholesale"
	}
	return string(c)
}

// ParsePricingClass converts a stored literal into a PricingClass
func ParsePricingClass(s string) (PricingClass, error) {
	c := PricingClass(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown pricing class %q", s)
	}
	return c, nil
}

// CurrencyMode selects which currency multiplier applies to an order
type CurrencyMode string

const (
	CurrencyUSD       CurrencyMode = "USD"
	CurrencyRegulated CurrencyMode = "RegulatedCurrency"
)

// AllCurrencyModes returns every currency mode
func AllCurrencyModes() []CurrencyMode {
	return []CurrencyMode{CurrencyUSD, CurrencyRegulated}
}

// IsValid reports whether the mode is one of the known literals
func (m CurrencyMode) IsValid() bool {
	return m == CurrencyUSD || m == CurrencyRegulated
}

// FactorKey returns the factor table key for this currency mode
func (m CurrencyMode) FactorKey() FactorKey {
	if m == CurrencyRegulated {
		return FactorRegulatedCurrency
	}
	return FactorUSD
}

// ParseCurrencyMode converts a stored literal into a CurrencyMode
func ParseCurrencyMode(s string) (CurrencyMode, error) {
	m := CurrencyMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown currency mode %q", s)
	}
	return m, nil
}

// DiscountMode selects how an order-level discount is applied to a line
type DiscountMode string

const (
	DiscountAbsolute   DiscountMode = "Absolute"
	DiscountPercentage DiscountMode = "Percentage"
)

// IsValid reports whether the mode is one of the known literals
func (m DiscountMode) IsValid() bool {
	return m == DiscountAbsolute || m == DiscountPercentage
}

// ParseDiscountMode converts a stored literal into a DiscountMode
func ParseDiscountMode(s string) (DiscountMode, error) {
	m := DiscountMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown discount mode %q", s)
	}
	return m, nil
}

// Rule identifies which resolution rule produced a price
type Rule string

const (
	RuleManual Rule = "manual"
	RuleOffer  Rule = "offer"
	RuleTier   Rule = "tier"
)
