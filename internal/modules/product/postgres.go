package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, err := uuid.Parse(p.ID); err != nil {
		return apperr.New(apperr.InvalidArgument, "invalid product id %q", p.ID)
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, description, value, category)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		p.ID, p.Description, p.Value, p.Category).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	if err := scan(&p.ID, &p.Description, &p.Value, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.New(apperr.NotFound, "product %s not found", id)
	}
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT id,description,value,category,created_at,updated_at
		FROM products WHERE id=$1`, uid).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "product %s not found", id)
	}
	return p, err
}

func (r *postgresRepo) GetByDescription(ctx context.Context, description string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT id,description,value,category,created_at,updated_at
		FROM products WHERE description=$1`, description).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "product %q not found", description)
	}
	return p, err
}

func (r *postgresRepo) ListByCategory(ctx context.Context, category Category) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,description,value,category,created_at,updated_at
		FROM products WHERE category=$1 ORDER BY created_at ASC`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET description=$1, value=$2, category=$3, updated_at=NOW()
		WHERE id=$4
		RETURNING created_at, updated_at`,
		p.Description, p.Value, p.Category, p.ID).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.NotFound, "product %s not found", p.ID)
	}
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperr.New(apperr.NotFound, "product %s not found", id)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, uid)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "product %s not found", id)
	}
	return nil
}
