package pricing

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OfferDateLayout is the only accepted format for offer boundaries
const OfferDateLayout = "2006-01-02"

// OfferTerms is a product's promotional price as stored in the catalog.
// Start and End keep the raw stored text; they are parsed on evaluation.
type OfferTerms struct {
	Active bool
	Price  *decimal.Decimal
	Start  string
	End    string
}

// OfferWindow is a parsed offer window. End is exclusive: it is the first
// instant of the day after the last offer day.
type OfferWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the window
func (w OfferWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ParseOfferDate parses a YYYY-MM-DD boundary at midnight in loc
func ParseOfferDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(OfferDateLayout, s, loc)
	if err != nil {
		return time.Time{}, invalidOffer("offer boundary %q is not a YYYY-MM-DD date", s)
	}
	return t, nil
}

// ParseOfferWindow parses both boundaries; both ends are inclusive days
func ParseOfferWindow(start, end string, loc *time.Location) (OfferWindow, error) {
	s, err := ParseOfferDate(start, loc)
	if err != nil {
		return OfferWindow{}, err
	}
	e, err := ParseOfferDate(end, loc)
	if err != nil {
		return OfferWindow{}, err
	}
	if e.Before(s) {
		return OfferWindow{}, invalidOffer("offer ends %s before it starts %s", end, start)
	}
	return OfferWindow{Start: s, End: e.AddDate(0, 0, 1)}, nil
}

// ValidateOffer checks offer terms that are flagged active
func ValidateOffer(o OfferTerms, loc *time.Location) error {
	if !o.Active {
		return nil
	}
	if o.Price == nil {
		return invalidOffer("active offer has no offer price")
	}
	if o.Price.IsNegative() {
		return invalidOffer("offer price must not be negative")
	}
	_, err := ParseOfferWindow(o.Start, o.End, loc)
	return err
}

// OfferEvaluator decides whether a product's promotional price applies
type OfferEvaluator struct {
	location *time.Location
	logger   *zap.Logger
}

// OfferEvaluatorOption configures an OfferEvaluator
type OfferEvaluatorOption func(*OfferEvaluator)

// WithOfferLocation sets the time zone offer dates are interpreted in
func WithOfferLocation(loc *time.Location) OfferEvaluatorOption {
	return func(e *OfferEvaluator) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithOfferLogger sets the logger used for data-quality warnings
func WithOfferLogger(logger *zap.Logger) OfferEvaluatorOption {
	return func(e *OfferEvaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewOfferEvaluator creates an evaluator interpreting dates in UTC by default
func NewOfferEvaluator(opts ...OfferEvaluatorOption) *OfferEvaluator {
	e := &OfferEvaluator{
		location: time.UTC,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the time zone offer dates are interpreted in
func (e *OfferEvaluator) Location() *time.Location {
	return e.location
}

// Check reports whether the offer is active at asOf. A malformed offer is
// inactive and returned with the reason.
func (e *OfferEvaluator) Check(offer OfferTerms, asOf time.Time) (bool, error) {
	if !offer.Active {
		return false, nil
	}
	if offer.Price == nil {
		return false, invalidOffer("active offer has no offer price")
	}
	window, err := ParseOfferWindow(offer.Start, offer.End, e.location)
	if err != nil {
		return false, err
	}
	return window.Contains(asOf), nil
}

// IsActive reports whether the offer applies at asOf. Malformed offers are
// treated as inactive and logged as a warning.
func (e *OfferEvaluator) IsActive(product ProductPrices, asOf time.Time) bool {
	active, err := e.Check(product.Offer, asOf)
	if err != nil {
		e.logger.Warn("Offer boundary malformed, treating offer as inactive",
			zap.String("product_id", product.ProductID.String()),
			zap.String("offer_start", product.Offer.Start),
			zap.String("offer_end", product.Offer.End),
			zap.Error(err),
		)
		return false
	}
	return active
}
