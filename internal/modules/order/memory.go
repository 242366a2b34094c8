package order

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
)

type memoryRepo struct {
	mu     sync.RWMutex
	orders map[string]Order
	ids    []string
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepo{orders: make(map[string]Order)}
}

func clone(o Order) *Order {
	o.Products = append([]string(nil), o.Products...)
	return &o
}

func (r *memoryRepo) CreateOrder(_ context.Context, o *Order) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *clone(*o)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	stored.CreatedAt, stored.UpdatedAt = now, now
	if _, exists := r.orders[stored.ID]; !exists {
		r.ids = append(r.ids, stored.ID)
	}
	r.orders[stored.ID] = stored
	return clone(stored), nil
}

func (r *memoryRepo) NextOrderNumber(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders) + 1, nil
}

func (r *memoryRepo) GetOrderByID(_ context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "order %s not found", id)
	}
	return clone(o), nil
}

func (r *memoryRepo) find(match func(Order) bool) (*Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.ids {
		if o := r.orders[id]; match(o) {
			return clone(o), true
		}
	}
	return nil, false
}

func (r *memoryRepo) GetOrderByNumber(_ context.Context, orderNumber int) (*Order, error) {
	o, ok := r.find(func(o Order) bool { return o.OrderNumber == orderNumber })
	if !ok {
		return nil, apperr.New(apperr.NotFound, "order number %d not found", orderNumber)
	}
	return o, nil
}

func (r *memoryRepo) GetOrderByPaymentCode(_ context.Context, paymentCode string) (*Order, error) {
	o, ok := r.find(func(o Order) bool { return paymentCode != "" && o.PaymentCode == paymentCode })
	if !ok {
		return nil, apperr.New(apperr.NotFound, "order with payment code %s not found", paymentCode)
	}
	return o, nil
}

func (r *memoryRepo) ListOrdersByCustomer(_ context.Context, customer string) ([]*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := []*Order{}
	for _, id := range r.ids {
		if o := r.orders[id]; o.Customer == customer {
			orders = append(orders, clone(o))
		}
	}
	return orders, nil
}

func (r *memoryRepo) UpdateOrder(_ context.Context, o *Order) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.orders[o.ID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "order %s not found", o.ID)
	}
	current.PaymentCode = o.PaymentCode
	current.PaymentStatus = o.PaymentStatus
	current.Status = o.Status
	current.UpdatedAt = time.Now().UTC()
	r.orders[o.ID] = current
	return clone(current), nil
}
