package order

import "context"

// Repository defines data access for orders. Lookups of a missing order return
// an error matching apperr.NotFound.
type Repository interface {
	// CreateOrder persists a new order, assigning its ID.
	CreateOrder(ctx context.Context, o *Order) (*Order, error)

	// NextOrderNumber returns the number for the next order: current count + 1.
	// It is a plain read; two concurrent checkouts can receive the same number.
	NextOrderNumber(ctx context.Context) (int, error)

	GetOrderByID(ctx context.Context, id string) (*Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber int) (*Order, error)
	GetOrderByPaymentCode(ctx context.Context, paymentCode string) (*Order, error)
	ListOrdersByCustomer(ctx context.Context, customer string) ([]*Order, error)

	// UpdateOrder writes the mutable fields of o and returns the stored state.
	UpdateOrder(ctx context.Context, o *Order) (*Order, error)
}
