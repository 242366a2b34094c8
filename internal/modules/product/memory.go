package product

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
)

type memoryRepo struct {
	mu       sync.RWMutex
	products map[string]Product
	order    []string
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepo{products: make(map[string]Product)}
}

func (r *memoryRepo) Create(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := r.products[p.ID]; exists {
		return apperr.New(apperr.Conflict, "product %s already exists", p.ID)
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.order = append(r.order, p.ID)
	r.products[p.ID] = *p
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "product %s not found", id)
	}
	return &p, nil
}

func (r *memoryRepo) GetByDescription(_ context.Context, description string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if p := r.products[id]; p.Description == description {
			return &p, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "product %q not found", description)
}

func (r *memoryRepo) ListByCategory(_ context.Context, category Category) ([]*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	products := []*Product{}
	for _, id := range r.order {
		if p := r.products[id]; p.Category == category {
			products = append(products, &p)
		}
	}
	return products, nil
}

func (r *memoryRepo) Update(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.products[p.ID]
	if !ok {
		return apperr.New(apperr.NotFound, "product %s not found", p.ID)
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.products[p.ID] = *p
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return apperr.New(apperr.NotFound, "product %s not found", id)
	}
	delete(r.products, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
