package customer

import "context"

// Repository defines data access for customers. CPFs are stored normalized.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByCPF(ctx context.Context, cpf string) (*Customer, error)
	List(ctx context.Context) ([]*Customer, error)
	DeleteByCPF(ctx context.Context, cpf string) error
}
