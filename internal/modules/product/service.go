package product

import (
	"context"
	"errors"
	"strings"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
)

// Service defines product business logic.
type Service interface {
	// CreateProduct rejects a description that is already registered.
	CreateProduct(ctx context.Context, req ProductRequest) (*Product, error)

	// GetProduct resolves a product by id; orders use it to price their items.
	GetProduct(ctx context.Context, id string) (*Product, error)

	FindByDescription(ctx context.Context, description string) (*Product, error)
	ListByCategory(ctx context.Context, category string) ([]*Product, error)

	// EditProduct replaces description, value and category of req.ID.
	EditProduct(ctx context.Context, req ProductRequest) (*Product, error)

	DeleteProduct(ctx context.Context, id string) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	p, err := validate(req)
	if err != nil {
		return nil, err
	}

	if p.ID != "" {
		_, err := s.repo.GetByID(ctx, p.ID)
		if err == nil {
			return nil, apperr.New(apperr.Conflict, "product %s already exists", p.ID)
		}
		if !errors.Is(err, apperr.NotFound) {
			return nil, err
		}
	}

	existing, err := s.repo.GetByDescription(ctx, p.Description)
	if err != nil && !errors.Is(err, apperr.NotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, "product already registered with description %q", p.Description)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindByDescription(ctx context.Context, description string) (*Product, error) {
	return s.repo.GetByDescription(ctx, description)
}

func (s *service) ListByCategory(ctx context.Context, category string) ([]*Product, error) {
	c, ok := ParseCategory(category)
	if !ok {
		return nil, apperr.New(apperr.InvalidArgument, "invalid category %q", category)
	}
	return s.repo.ListByCategory(ctx, c)
}

func (s *service) EditProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, apperr.New(apperr.InvalidArgument, "product id is required")
	}
	p, err := validate(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, req.ID); err != nil {
		return nil, err
	}

	other, err := s.repo.GetByDescription(ctx, p.Description)
	if err != nil && !errors.Is(err, apperr.NotFound) {
		return nil, err
	}
	if other != nil && other.ID != req.ID {
		return nil, apperr.New(apperr.Conflict, "product already registered with description %q", p.Description)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.New(apperr.InvalidArgument, "product id is required")
	}
	return s.repo.Delete(ctx, id)
}

func validate(req ProductRequest) (*Product, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperr.New(apperr.InvalidArgument, "product description is required")
	}
	if !req.Value.IsPositive() {
		return nil, apperr.New(apperr.InvalidArgument, "product value must be greater than 0")
	}
	category, ok := ParseCategory(req.Category)
	if !ok {
		return nil, apperr.New(apperr.InvalidArgument, "invalid category %q", req.Category)
	}
	return &Product{
		ID:          strings.TrimSpace(req.ID),
		Description: description,
		Value:       req.Value,
		Category:    category,
	}, nil
}
