package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL customer repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, c *Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO customers (id, name, email, cpf)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, c.Email, c.CPF).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByCPF(ctx context.Context, cpf string) (*Customer, error) {
	c := &Customer{}
	query := `
		SELECT id, name, email, cpf, created_at, updated_at
		FROM customers
		WHERE cpf = $1
	`
	err := r.db.QueryRowContext(ctx, query, cpf).Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.CPF,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "customer with cpf %s not found", cpf)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]*Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, cpf, created_at, updated_at
		FROM customers
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []*Customer{}
	for rows.Next() {
		c := &Customer{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.CPF, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *postgresRepository) DeleteByCPF(ctx context.Context, cpf string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE cpf = $1`, cpf)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "customer with cpf %s not found", cpf)
	}
	return nil
}
