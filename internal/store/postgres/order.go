package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/storefront/internal/domain"
)

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

type cartLine struct {
	product  domain.Product
	quantity int
}

func (r *OrderRepo) PlaceFromCart(ctx context.Context, userID int64) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("orderRepo.PlaceFromCart: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines, err := lockCart(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("orderRepo.PlaceFromCart: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("orderRepo.PlaceFromCart: %w", domain.ErrEmptyCart)
	}
	for _, l := range lines {
		if l.product.Stock < l.quantity {
			return nil, fmt.Errorf("orderRepo.PlaceFromCart: product %d: %w", l.product.ID, domain.ErrOutOfStock)
		}
	}

	order := &domain.Order{UserID: userID}
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (user_id) VALUES ($1) RETURNING id, date_ordered`,
		userID,
	).Scan(&order.ID, &order.DateOrdered)
	if err != nil {
		return nil, fmt.Errorf("orderRepo.PlaceFromCart: insert order: %w", err)
	}

	for _, l := range lines {
		product := l.product
		item := &domain.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  l.quantity,
			Price:     product.Price,
			Product:   &product,
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			item.OrderID, item.ProductID, item.Quantity, item.Price,
		).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("orderRepo.PlaceFromCart: insert item: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE products SET stock = stock - $1, updated_at = now() WHERE id = $2`,
			l.quantity, product.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("orderRepo.PlaceFromCart: decrement stock: %w", err)
		}
		product.Stock -= l.quantity

		order.Items = append(order.Items, item)
	}

	_, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("orderRepo.PlaceFromCart: empty cart: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE orders SET complete = TRUE WHERE id = $1`, order.ID)
	if err != nil {
		return nil, fmt.Errorf("orderRepo.PlaceFromCart: complete: %w", err)
	}
	order.Complete = true

	err = tx.Commit(ctx)
	if err != nil {
		return nil, fmt.Errorf("orderRepo.PlaceFromCart: commit: %w", err)
	}

	return order, nil
}

// lockCart reads the user's cart lines and locks the referenced product rows
// until the transaction ends.
func lockCart(ctx context.Context, tx pgx.Tx, userID int64) ([]cartLine, error) {
	rows, err := tx.Query(ctx,
		`SELECT c.quantity,
		        p.id, p.name, p.description, p.price::float8, p.stock, p.image, p.created_at, p.updated_at
		 FROM cart_items c JOIN products p ON p.id = c.product_id
		 WHERE c.user_id = $1
		 ORDER BY c.id
		 FOR UPDATE OF p`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	defer rows.Close()

	var lines []cartLine
	for rows.Next() {
		var l cartLine
		p := &l.product

		err = rows.Scan(&l.quantity,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Image, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("lock cart: scan: %w", err)
		}
		lines = append(lines, l)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("lock cart: rows: %w", err)
	}

	return lines, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, date_ordered, complete FROM orders
		 WHERE user_id = $1
		 ORDER BY date_ordered DESC, id DESC
		 LIMIT 500`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("orderRepo.ListByUser: %w", err)
	}

	return r.collect(ctx, rows, "orderRepo.ListByUser")
}

func (r *OrderRepo) List(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, date_ordered, complete FROM orders
		 ORDER BY date_ordered DESC, id DESC
		 LIMIT 500`,
	)
	if err != nil {
		return nil, fmt.Errorf("orderRepo.List: %w", err)
	}

	return r.collect(ctx, rows, "orderRepo.List")
}

// collect scans order rows, closes them, then attaches each order's items.
func (r *OrderRepo) collect(ctx context.Context, rows pgx.Rows, caller string) ([]*domain.Order, error) {
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", caller, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*domain.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
		o.Items = []*domain.OrderItem{}
	}

	itemRows, err := r.pool.Query(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price::float8,
		        p.id, p.name, p.description, p.price::float8, p.stock, p.image, p.created_at, p.updated_at
		 FROM order_items oi LEFT JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = ANY($1)
		 ORDER BY oi.id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: items: %w", caller, err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanOrderItem(itemRows)
		if err != nil {
			return nil, fmt.Errorf("%s: items: scan: %w", caller, err)
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	err = itemRows.Err()
	if err != nil {
		return nil, fmt.Errorf("%s: items: rows: %w", caller, err)
	}

	return orders, nil
}

func scanOrders(rows pgx.Rows) ([]*domain.Order, error) {
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		var o domain.Order

		err := rows.Scan(&o.ID, &o.UserID, &o.DateOrdered, &o.Complete)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		orders = append(orders, &o)
	}
	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return orders, nil
}

// scanOrderItem tolerates a missing product: deleting a product keeps the
// order line with its captured price.
func scanOrderItem(rows pgx.Rows) (*domain.OrderItem, error) {
	var it domain.OrderItem
	var (
		productID, pID       *int64
		pName, pDesc, pImage *string
		pPrice               *float64
		pStock               *int
		pCreated, pUpdated   *time.Time
	)

	err := rows.Scan(&it.ID, &it.OrderID, &productID, &it.Quantity, &it.Price,
		&pID, &pName, &pDesc, &pPrice, &pStock, &pImage, &pCreated, &pUpdated)
	if err != nil {
		return nil, err
	}

	if productID != nil {
		it.ProductID = *productID
	}
	if pID != nil {
		it.Product = &domain.Product{
			ID:          *pID,
			Name:        derefStr(pName),
			Description: derefStr(pDesc),
			Price:       *pPrice,
			Stock:       *pStock,
			Image:       derefStr(pImage),
			CreatedAt:   *pCreated,
			UpdatedAt:   *pUpdated,
		}
	}

	return &it, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
