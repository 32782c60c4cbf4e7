package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/storefront/internal/domain"
)

type CartRepo struct {
	pool *pgxpool.Pool
}

func NewCartRepo(pool *pgxpool.Pool) *CartRepo {
	return &CartRepo{pool: pool}
}

const cartItemColumns = `c.id, c.user_id, c.product_id, c.quantity,
	p.id, p.name, p.description, p.price::float8, p.stock, p.image, p.created_at, p.updated_at`

const foreignKeyViolation = "23503"

func (r *CartRepo) Add(ctx context.Context, userID, productID int64, quantity int) (*domain.CartItem, error) {
	row := r.pool.QueryRow(ctx,
		`WITH c AS (
			INSERT INTO cart_items (user_id, product_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, product_id)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			RETURNING id, user_id, product_id, quantity
		)
		SELECT `+cartItemColumns+`
		FROM c JOIN products p ON p.id = c.product_id`,
		userID, productID, quantity,
	)

	item, err := scanCartItem(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return nil, fmt.Errorf("cartRepo.Add: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cartRepo.Add: %w", err)
	}

	return item, nil
}

func (r *CartRepo) GetByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+cartItemColumns+`
		 FROM cart_items c JOIN products p ON p.id = c.product_id
		 WHERE c.id = $1`,
		id,
	)

	item, err := scanCartItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cartRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cartRepo.GetByID: %w", err)
	}

	return item, nil
}

func (r *CartRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.CartItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cartItemColumns+`
		 FROM cart_items c JOIN products p ON p.id = c.product_id
		 WHERE c.user_id = $1
		 ORDER BY c.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("cartRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var items []*domain.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("cartRepo.ListByUser: scan: %w", err)
		}
		items = append(items, item)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("cartRepo.ListByUser: rows: %w", err)
	}

	return items, nil
}

func (r *CartRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("cartRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cartRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanCartItem(row pgx.Row) (*domain.CartItem, error) {
	var it domain.CartItem
	var p domain.Product

	err := row.Scan(
		&it.ID, &it.UserID, &it.ProductID, &it.Quantity,
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.Product = &p
	return &it, nil
}
