package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fanticheli/lanchonete-creusa-ms-pedido/internal/platform/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, order_number, customer, products, total_value,
	payment_code, payment_status, status, created_at, updated_at`

func scanOrder(scan func(...interface{}) error) (*Order, error) {
	o := &Order{}
	var code sql.NullString
	if err := scan(&o.ID, &o.OrderNumber, &o.Customer, pq.Array(&o.Products), &o.TotalValue,
		&code, &o.PaymentStatus, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.PaymentCode = code.String
	return o, nil
}

func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) (*Order, error) {
	id := o.ID
	if id == "" {
		id = uuid.NewString()
	}
	created, err := scanOrder(r.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, order_number, customer, products, total_value,
			payment_code, payment_status, status)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8)
		RETURNING `+orderColumns,
		id, o.OrderNumber, o.Customer, pq.Array(o.Products), o.TotalValue,
		o.PaymentCode, o.PaymentStatus, o.Status).Scan)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return created, nil
}

func (r *postgresRepo) NextOrderNumber(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) + 1 FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.New(apperr.NotFound, "order %s not found", id)
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1`, uid).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "order %s not found", id)
	}
	return o, err
}

func (r *postgresRepo) GetOrderByNumber(ctx context.Context, orderNumber int) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number=$1
		 ORDER BY created_at ASC LIMIT 1`, orderNumber).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "order number %d not found", orderNumber)
	}
	return o, err
}

func (r *postgresRepo) GetOrderByPaymentCode(ctx context.Context, paymentCode string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_code=$1`, paymentCode).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "order with payment code %s not found", paymentCode)
	}
	return o, err
}

func (r *postgresRepo) ListOrdersByCustomer(ctx context.Context, customer string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer=$1 ORDER BY order_number ASC`, customer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) UpdateOrder(ctx context.Context, o *Order) (*Order, error) {
	updated, err := scanOrder(r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET payment_code=NULLIF($1,''), payment_status=$2, status=$3, updated_at=NOW()
		WHERE id=$4
		RETURNING `+orderColumns,
		o.PaymentCode, o.PaymentStatus, o.Status, o.ID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "order %s not found", o.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return updated, nil
}
