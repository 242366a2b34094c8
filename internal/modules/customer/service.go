package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/modules/order"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/modules/payment"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/logging"
)

// OrderFinder lists the orders placed under a customer reference. order.Service
// satisfies it.
type OrderFinder interface {
	ListCustomerOrders(ctx context.Context, customer string) ([]*order.Order, error)
}

// Service defines the interface for customer-related business logic.
type Service interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	FindByCPF(ctx context.Context, cpf string) (*Customer, error)

	// DeleteByCPF cancels the payment of every order the customer placed, best
	// effort, and then removes the customer.
	DeleteByCPF(ctx context.Context, cpf string) error
}

type service struct {
	repo      Repository
	orders    OrderFinder
	canceller payment.Canceller
}

// NewService creates a new customer service.
func NewService(repo Repository, orders OrderFinder, canceller payment.Canceller) Service {
	return &service{repo: repo, orders: orders, canceller: canceller}
}

func (s *service) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	c := &Customer{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		CPF:   NormalizeCPF(req.CPF),
	}
	if c.Name == "" {
		return nil, apperr.New(apperr.InvalidArgument, "customer name is required")
	}
	if !strings.Contains(c.Email, "@") {
		return nil, apperr.New(apperr.InvalidArgument, "invalid email %q", req.Email)
	}
	if len(c.CPF) != 11 {
		return nil, apperr.New(apperr.InvalidArgument, "invalid cpf %q", req.CPF)
	}

	existing, err := s.repo.GetByCPF(ctx, c.CPF)
	if err != nil && !errors.Is(err, apperr.NotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, "customer already registered with cpf %s", c.CPF)
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) ListCustomers(ctx context.Context) ([]*Customer, error) {
	return s.repo.List(ctx)
}

func (s *service) FindByCPF(ctx context.Context, cpf string) (*Customer, error) {
	return s.repo.GetByCPF(ctx, NormalizeCPF(cpf))
}

func (s *service) DeleteByCPF(ctx context.Context, cpf string) error {
	c, err := s.repo.GetByCPF(ctx, NormalizeCPF(cpf))
	if err != nil {
		return err
	}

	for _, o := range s.customerOrders(ctx, c) {
		if err := s.canceller.CancelPayment(ctx, o.OrderNumber); err != nil {
			logging.Log(logging.Fields{
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				Step:        "cancel_payment",
				Status:      "failed",
				Error:       err.Error(),
			})
		}
	}

	return s.repo.DeleteByCPF(ctx, c.CPF)
}

// customerOrders collects orders referenced by the customer's id or CPF.
func (s *service) customerOrders(ctx context.Context, c *Customer) []*order.Order {
	seen := map[string]bool{}
	var orders []*order.Order
	for _, ref := range []string{c.ID, c.CPF} {
		found, err := s.orders.ListCustomerOrders(ctx, ref)
		if err != nil {
			logging.Log(logging.Fields{Step: "list_customer_orders", Status: "failed", Error: err.Error()})
			continue
		}
		for _, o := range found {
			if !seen[o.ID] {
				seen[o.ID] = true
				orders = append(orders, o)
			}
		}
	}
	return orders
}
