package customer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
)

type memoryRepository struct {
	mu        sync.RWMutex
	customers []Customer
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, c *Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	r.customers = append(r.customers, *c)
	return nil
}

func (r *memoryRepository) GetByCPF(_ context.Context, cpf string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.customers {
		if c.CPF == cpf {
			return &c, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "customer with cpf %s not found", cpf)
}

func (r *memoryRepository) List(_ context.Context) ([]*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customers := make([]*Customer, 0, len(r.customers))
	for i := range r.customers {
		c := r.customers[i]
		customers = append(customers, &c)
	}
	return customers, nil
}

func (r *memoryRepository) DeleteByCPF(_ context.Context, cpf string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.customers {
		if c.CPF == cpf {
			r.customers = append(r.customers[:i], r.customers[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "customer with cpf %s not found", cpf)
}
