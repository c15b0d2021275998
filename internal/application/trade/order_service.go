package trade

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nvictorme/nikola-sub002/internal/domain/catalog"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/domain/shared"
	"github.com/nvictorme/nikola-sub002/internal/domain/trade"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/logger"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/telemetry"
)

// OrderService prices, places and cancels orders
type OrderService struct {
	scope    TransactionScope
	orders   trade.OrderRepository
	factors  pricing.FactorStore
	resolver *pricing.PriceResolver
	metrics  *telemetry.PricingMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	scope TransactionScope,
	orders trade.OrderRepository,
	factors pricing.FactorStore,
	resolver *pricing.PriceResolver,
	log *zap.Logger,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		scope:    scope,
		orders:   orders,
		factors:  factors,
		resolver: resolver,
		logger:   log,
		now:      time.Now,
	}
}

// SetMetrics sets the pricing metrics recorder
func (s *OrderService) SetMetrics(metrics *telemetry.PricingMetrics) {
	s.metrics = metrics
}

// PlaceOrder prices every line and, in one transaction, creates the order
// and authorizes credit for credit orders. A credit decline rolls the
// whole order back and is returned as a CREDIT_DECLINED DomainError.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	started := s.now()
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "place",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, req.CustomerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrLineCount, len(req.Lines)),
	)
	defer span.End()
	ctx, _ = logger.WithCustomerID(ctx, logger.FromContextOr(ctx, s.logger), req.CustomerID.String())

	// one factor read per order: the snapshot and every line use the same table
	factors := s.factors.Get(ctx)
	order, err := s.newOrder(req, factors)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	ctx, _ = logger.WithOrderID(ctx, logger.FromContextOr(ctx, s.logger), order.ID.String())

	traces := make(map[uuid.UUID][]string, len(req.Lines))
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		customer, err := repos.Customers().FindByID(ctx, req.CustomerID)
		if err != nil {
			return err
		}

		products, err := s.loadProducts(ctx, repos.Products(), req.Lines)
		if err != nil {
			return err
		}

		for _, lineReq := range req.Lines {
			line, err := trade.NewOrderLine(lineReq.ProductID, lineReq.Quantity, lineReq.OverridePrice, lineReq.SerialNumber)
			if err != nil {
				return err
			}

			resolved, err := s.resolve(ctx, pricing.PricingContext{
				Product: products[lineReq.ProductID].Prices(),
				Line:    line.Terms(),
				Class:   customer.PricingClass,
				Order:   order.Terms(),
			}, factors)
			if err != nil {
				return err
			}

			line.ApplyResolution(resolved)
			traces[line.ID] = resolved.Trace
			if err := order.AddLine(*line); err != nil {
				return err
			}
		}

		if err := repos.Orders().Create(ctx, order); err != nil {
			return err
		}

		if !order.IsCredit() || !order.TotalAmount.IsPositive() {
			return nil
		}
		decision, err := repos.Credit().Authorize(ctx, customer.ID, order.ID, order.TotalAmount)
		if err != nil {
			return err
		}
		s.metrics.RecordCreditDecision(ctx, decision.Authorized, order.TotalAmount)
		if !decision.Authorized {
			logger.L(ctx).Info("Credit declined",
				zap.String("order_number", order.OrderNumber),
				zap.String("reason", decision.Reason),
			)
			return decision.DeclineError()
		}
		telemetry.AddEvent(span, "credit_authorized", telemetry.SpanAttrAmount, pricing.FormatMoney(order.TotalAmount))
		return nil
	})
	s.metrics.RecordOrderDuration(ctx, s.now().Sub(started))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("total", pricing.FormatMoney(order.TotalAmount)),
		zap.String("payment_method", string(order.PaymentMethod)),
	)
	telemetry.SetOK(span)

	response := ToOrderResponse(order, traces)
	return &response, nil
}

// newOrder validates the order-level terms and captures the exchange rate snapshot
func (s *OrderService) newOrder(req PlaceOrderRequest, factors pricing.FactorTable) (*trade.Order, error) {
	mode, err := pricing.ParseCurrencyMode(req.CurrencyMode)
	if err != nil {
		return nil, shared.NewDomainError(pricing.CodeInvalidOrderTerms, err.Error())
	}
	var discountMode pricing.DiscountMode
	if req.DiscountMode != "" {
		if discountMode, err = pricing.ParseDiscountMode(req.DiscountMode); err != nil {
			return nil, shared.NewDomainError(pricing.CodeInvalidOrderTerms, err.Error())
		}
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Order must have at least one line")
	}

	orderNumber := req.OrderNumber
	if orderNumber == "" {
		orderNumber = s.generateOrderNumber()
	}

	return trade.NewOrder(orderNumber, req.CustomerID, trade.OrderTerms{
		CurrencyMode:  mode,
		DiscountMode:  discountMode,
		DiscountValue: req.DiscountValue,
		SupplierID:    req.SupplierID,
		PaymentMethod: trade.PaymentMethod(req.PaymentMethod),
	}, factors.ForCurrency(mode))
}

func (s *OrderService) generateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%s", s.now().Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}

func (s *OrderService) loadProducts(ctx context.Context, repo catalog.ProductRepository, lines []PlaceOrderLineRequest) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}

	found, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Product %s not found", id))
		}
	}
	return products, nil
}

func (s *OrderService) resolve(ctx context.Context, pc pricing.PricingContext, factors pricing.FactorTable) (pricing.ResolvedPrice, error) {
	var (
		resolved pricing.ResolvedPrice
		err      error
	)
	telemetry.WithProfilingLabels(ctx, map[string]string{telemetry.ProfilingLabelOperation: "price.resolve"}, func(context.Context) {
		resolved, err = s.resolver.Resolve(pc, factors)
	})
	if err != nil {
		if de, ok := shared.AsDomainError(err); ok {
			s.metrics.RecordResolutionError(ctx, de.Code)
		}
		return resolved, err
	}
	s.metrics.RecordResolution(ctx, string(resolved.Rule), string(pc.Class))
	return resolved, nil
}

// CancelOrder cancels an order and releases its credit in one transaction.
// Cancelling an already cancelled order changes nothing.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, req CancelOrderRequest) (*CancelOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "cancel",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()),
	)
	defer span.End()
	ctx, _ = logger.WithOrderID(ctx, logger.FromContextOr(ctx, s.logger), orderID.String())

	var (
		order    *trade.Order
		released bool
		replay   bool
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.IsCancelled() {
			replay = true
			return nil
		}

		if err := order.Cancel(req.Reason); err != nil {
			return err
		}
		if err := repos.Orders().SaveWithLock(ctx, order); err != nil {
			return err
		}

		if !order.IsCredit() || !order.TotalAmount.IsPositive() {
			return nil
		}
		released, err = repos.Credit().Release(ctx, order.CustomerID, order.ID, order.TotalAmount)
		if err != nil {
			return fmt.Errorf("release credit for order %s: %w", order.OrderNumber, err)
		}
		s.metrics.RecordCreditRelease(ctx, released)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if replay {
		logger.L(ctx).Debug("Order already cancelled", zap.String("order_number", order.OrderNumber))
	} else {
		logger.L(ctx).Info("Order cancelled",
			zap.String("order_number", order.OrderNumber),
			zap.Bool("credit_released", released),
		)
	}

	return &CancelOrderResponse{
		Order:            ToOrderResponse(order, nil),
		CreditReleased:   released,
		AlreadyCancelled: replay,
	}, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order, nil)
	return &response, nil
}
