package product

import "context"

// Repository defines data access for products. Lookups of a missing product
// return an error matching apperr.NotFound.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByDescription(ctx context.Context, description string) (*Product, error)
	ListByCategory(ctx context.Context, category Category) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
