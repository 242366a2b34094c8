package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/modules/payment"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/modules/product"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/modules/production"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/logging"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/metrics"
)

// ProductLookup resolves a product identifier to its current description and
// price. product.Service satisfies it.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*product.Product, error)
}

// Service is the order workflow: checkout plus the payment and fulfillment
// transitions.
type Service interface {
	// CreateOrder prices every product, takes the next order number, starts the
	// payment and persists the order as PENDENTE/RECEBIDO.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)

	// AlterPaymentStatusByNumber and AlterPaymentStatusByCode apply a payment
	// decision. NEGADO cancels the order; APROVADO moves it to PREPARACAO and
	// notifies production before anything is persisted.
	AlterPaymentStatusByNumber(ctx context.Context, orderNumber int, status string) (*Order, error)
	AlterPaymentStatusByCode(ctx context.Context, paymentCode, status string) (*Order, error)

	AlterOrderStatus(ctx context.Context, id, status string) (*Order, error)

	GetOrder(ctx context.Context, id string) (*Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber int) (*Order, error)
	ListCustomerOrders(ctx context.Context, customer string) ([]*Order, error)
}

type service struct {
	repo       Repository
	products   ProductLookup
	payments   payment.Gateway
	production production.Notifier
	metrics    *metrics.WorkflowMetrics
	tracer     trace.Tracer
}

func NewService(
	repo Repository,
	products ProductLookup,
	payments payment.Gateway,
	notifier production.Notifier,
	m *metrics.WorkflowMetrics,
) Service {
	if m == nil {
		m = metrics.Discard()
	}
	return &service{
		repo:       repo,
		products:   products,
		payments:   payments,
		production: notifier,
		metrics:    m,
		tracer:     otel.Tracer("order-service"),
	}
}

func traceError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *service) resolve(ctx context.Context, id string) (*product.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if errors.Is(err, apperr.NotFound) {
		return nil, apperr.New(apperr.NotFound, "product %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve product %s: %w", id, err)
	}
	return p, nil
}

func (s *service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.create")
	defer span.End()
	start := time.Now()

	customer := strings.TrimSpace(req.Customer)
	if customer == "" {
		return nil, traceError(span, apperr.New(apperr.InvalidArgument, "customer is required"))
	}
	if len(req.Products) == 0 {
		return nil, traceError(span, apperr.New(apperr.InvalidArgument, "order must contain at least one product"))
	}

	total := decimal.Zero
	for _, id := range req.Products {
		p, err := s.resolve(ctx, id)
		if err != nil {
			return nil, traceError(span, err)
		}
		total = total.Add(p.Value)
	}

	number, err := s.repo.NextOrderNumber(ctx)
	if err != nil {
		return nil, traceError(span, err)
	}
	span.SetAttributes(attribute.Int("order.number", number))

	o := &Order{
		OrderNumber:   number,
		Customer:      customer,
		Products:      append([]string(nil), req.Products...),
		TotalValue:    total,
		PaymentStatus: PaymentPending,
		Status:        StatusReceived,
	}

	code, err := s.payments.InitiatePayment(ctx, payment.Request{
		Customer:    o.Customer,
		TotalValue:  o.TotalValue,
		OrderNumber: o.OrderNumber,
	})
	if err != nil {
		return nil, traceError(span, err)
	}
	o.PaymentCode = code

	created, err := s.repo.CreateOrder(ctx, o)
	if err != nil {
		return nil, traceError(span, err)
	}

	s.metrics.OrdersCreated.Inc()
	logging.Log(logging.Fields{
		OrderID:     created.ID,
		OrderNumber: created.OrderNumber,
		Step:        "create",
		Status:      string(created.Status),
		DurationMS:  time.Since(start).Milliseconds(),
	})
	return created, nil
}

func (s *service) AlterPaymentStatusByNumber(ctx context.Context, orderNumber int, status string) (*Order, error) {
	return s.alterPaymentStatus(ctx, status, attribute.Int("order.number", orderNumber), func(ctx context.Context) (*Order, error) {
		if orderNumber <= 0 {
			return nil, apperr.New(apperr.InvalidArgument, "invalid order number %d", orderNumber)
		}
		return s.repo.GetOrderByNumber(ctx, orderNumber)
	})
}

func (s *service) AlterPaymentStatusByCode(ctx context.Context, paymentCode, status string) (*Order, error) {
	return s.alterPaymentStatus(ctx, status, attribute.String("order.payment_code", paymentCode), func(ctx context.Context) (*Order, error) {
		if strings.TrimSpace(paymentCode) == "" {
			return nil, apperr.New(apperr.InvalidArgument, "payment code is required")
		}
		return s.repo.GetOrderByPaymentCode(ctx, paymentCode)
	})
}

func (s *service) alterPaymentStatus(
	ctx context.Context,
	status string,
	locator attribute.KeyValue,
	locate func(context.Context) (*Order, error),
) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.alter_payment_status", trace.WithAttributes(locator))
	defer span.End()
	start := time.Now()

	target, ok := ParsePaymentStatus(status)
	if !ok {
		return nil, traceError(span, apperr.New(apperr.InvalidArgument, "invalid payment status %q", status))
	}

	o, err := locate(ctx)
	if err != nil {
		return nil, traceError(span, err)
	}

	o.PaymentStatus = target
	switch target {
	case PaymentDenied:
		o.Status = StatusCanceled
	case PaymentApproved:
		o.Status = StatusInPreparation
		if err := s.notifyProduction(ctx, o); err != nil {
			return nil, traceError(span, err)
		}
	}

	updated, err := s.repo.UpdateOrder(ctx, o)
	if err != nil {
		return nil, traceError(span, err)
	}

	s.metrics.Transitions.WithLabelValues("payment", string(target)).Inc()
	logging.Log(logging.Fields{
		OrderID:     updated.ID,
		OrderNumber: updated.OrderNumber,
		Step:        "payment_status",
		Status:      string(target),
		DurationMS:  time.Since(start).Milliseconds(),
	})
	return updated, nil
}

func (s *service) notifyProduction(ctx context.Context, o *Order) error {
	items := make([]production.Item, 0, len(o.Products))
	for _, id := range o.Products {
		p, err := s.resolve(ctx, id)
		if err != nil {
			return err
		}
		items = append(items, production.Item{Description: p.Description, Value: p.Value})
	}
	return s.production.Notify(ctx, production.Notification{
		OrderID:     o.ID,
		Customer:    o.Customer,
		Products:    items,
		OrderNumber: o.OrderNumber,
	})
}

func (s *service) AlterOrderStatus(ctx context.Context, id, status string) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.alter_order_status", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	target, ok := ParseOrderStatus(status)
	if !ok {
		return nil, traceError(span, apperr.New(apperr.InvalidArgument, "invalid order status %q", status))
	}
	if strings.TrimSpace(id) == "" {
		return nil, traceError(span, apperr.New(apperr.InvalidArgument, "order id is required"))
	}

	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, traceError(span, err)
	}
	o.Status = target

	updated, err := s.repo.UpdateOrder(ctx, o)
	if err != nil {
		return nil, traceError(span, err)
	}
	s.metrics.Transitions.WithLabelValues("order", string(target)).Inc()
	logging.Log(logging.Fields{OrderID: updated.ID, OrderNumber: updated.OrderNumber, Step: "order_status", Status: string(target)})
	return updated, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *service) GetOrderByNumber(ctx context.Context, orderNumber int) (*Order, error) {
	return s.repo.GetOrderByNumber(ctx, orderNumber)
}

func (s *service) ListCustomerOrders(ctx context.Context, customer string) ([]*Order, error) {
	return s.repo.ListOrdersByCustomer(ctx, customer)
}
