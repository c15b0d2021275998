package pricing

import (
	"context"

	"go.uber.org/zap"

	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/logger"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/telemetry"
)

// FactorConfigService reads and replaces the factor table
type FactorConfigService struct {
	store   pricing.FactorStore
	metrics *telemetry.PricingMetrics
	logger  *zap.Logger
}

// NewFactorConfigService creates a new FactorConfigService
func NewFactorConfigService(store pricing.FactorStore, log *zap.Logger) *FactorConfigService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FactorConfigService{store: store, logger: log}
}

// SetMetrics sets the pricing metrics recorder
func (s *FactorConfigService) SetMetrics(metrics *telemetry.PricingMetrics) {
	s.metrics = metrics
}

// Get returns the current factor table, or the defaults when none is stored
func (s *FactorConfigService) Get(ctx context.Context) FactorTableDTO {
	return ToFactorTableDTO(s.store.Get(ctx))
}

// Update validates and stores a complete factor table, replacing the
// previous one. The stored table is echoed back.
func (s *FactorConfigService) Update(ctx context.Context, req FactorTableDTO) (*FactorTableDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "factor_config", "update")
	defer span.End()

	table := req.ToDomain()
	err := s.store.Set(ctx, table)
	s.metrics.RecordFactorUpdate(ctx, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	fields := make([]zap.Field, 0, len(table))
	for _, k := range pricing.AllFactorKeys() {
		fields = append(fields, zap.String(string(k), table[k].String()))
	}
	logger.FromContextOr(ctx, s.logger).Info("Factor table updated", fields...)
	telemetry.SetOK(span)

	resp := ToFactorTableDTO(table)
	return &resp, nil
}
