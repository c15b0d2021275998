package pricing

import (
	"fmt"

	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
)

// Pricing error codes
const (
	CodeInvalidFactorTable     = "INVALID_FACTOR_TABLE"
	CodeFactorStoreUnavailable = "FACTOR_STORE_UNAVAILABLE"
	CodeMissingTierPrice       = "MISSING_TIER_PRICE"
	CodeMissingOverridePrice   = "MISSING_OVERRIDE_PRICE"
	CodeInvalidOffer           = "INVALID_OFFER"
	CodeInvalidOrderTerms      = "INVALID_ORDER_TERMS"
)

var (
	ErrInvalidFactorTable     = shared.NewDomainError(CodeInvalidFactorTable, "Factor table is invalid")
	ErrFactorStoreUnavailable = shared.NewDomainError(CodeFactorStoreUnavailable, "Factor store is unavailable")
	ErrMissingTierPrice       = shared.NewDomainError(CodeMissingTierPrice, "No tier price for pricing class")
	ErrMissingOverridePrice   = shared.NewDomainError(CodeMissingOverridePrice, "Manual override requires a price")
	ErrInvalidOffer           = shared.NewDomainError(CodeInvalidOffer, "Offer is malformed")
	ErrInvalidOrderTerms      = shared.NewDomainError(CodeInvalidOrderTerms, "Order pricing terms are invalid")
)

func invalidFactorTable(format string, args ...any) error {
	return shared.NewDomainError(CodeInvalidFactorTable, fmt.Sprintf(format, args...))
}

func missingTierPrice(class PricingClass) error {
	return shared.NewDomainError(CodeMissingTierPrice, "no tier price for "+class.TierName())
}

func invalidOffer(format string, args ...any) error {
	return shared.NewDomainError(CodeInvalidOffer, fmt.Sprintf(format, args...))
}

func invalidOrderTerms(format string, args ...any) error {
	return shared.NewDomainError(CodeInvalidOrderTerms, fmt.Sprintf(format, args...))
}
