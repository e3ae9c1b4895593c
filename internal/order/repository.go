package order

import (
	"context"
	"database/sql"
	"errors"

	"tienda-be/internal/product"

	"github.com/lib/pq"
)

type Repository interface {
	// WithTx runs fn inside a transaction carried through the context. All
	// repository calls made with the derived context share that transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// GetProductForUpdate locks the product row for the remainder of the
	// enclosing transaction, serializing concurrent stock adjustments.
	GetProductForUpdate(ctx context.Context, productID int64) (*product.Summary, error)
	SetProductStock(ctx context.Context, productID int64, stock int) error

	InsertOrder(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetForUpdate(ctx context.Context, id int64) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListByClient(ctx context.Context, clientID int64) ([]*Order, error)
	SetStatus(ctx context.Context, id int64, status Status) error
	OwnerSubject(ctx context.Context, orderID int64) (string, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

type txKey struct{}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *repository) q(ctx context.Context) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) GetProductForUpdate(ctx context.Context, productID int64) (*product.Summary, error) {
	var p product.Summary
	err := r.q(ctx).QueryRowContext(ctx, `
		SELECT id, name, price, stock
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, productID).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) SetProductStock(ctx context.Context, productID int64, stock int) error {
	res, err := r.q(ctx).ExecContext(ctx,
		`UPDATE products SET stock = $1 WHERE id = $2`, stock, productID)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

func (r *repository) InsertOrder(ctx context.Context, o *Order) error {
	err := r.q(ctx).QueryRowContext(ctx, `
		INSERT INTO orders (client_id, status, total, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, o.ClientID, o.Status, o.Total, o.CreatedAt).Scan(&o.ID)
	if err != nil {
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err := r.q(ctx).QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, o.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal).
			Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	return nil
}

const selectOrder = `
	SELECT o.id, o.client_id, o.status, o.total, o.created_at,
	       c.id, c.name, c.email
	FROM orders o
	JOIN clients c ON c.id = o.client_id
`

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	return r.getOne(ctx, selectOrder+` WHERE o.id = $1`, id)
}

func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Order, error) {
	return r.getOne(ctx, selectOrder+` WHERE o.id = $1 FOR UPDATE OF o`, id)
}

func (r *repository) getOne(ctx context.Context, query string, id int64) (*Order, error) {
	var o Order
	err := r.q(ctx).QueryRowContext(ctx, query, id).
		Scan(&o.ID, &o.ClientID, &o.Status, &o.Total, &o.CreatedAt,
			&o.Client.ID, &o.Client.Name, &o.Client.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	itemsByOrder, err := r.fetchItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = itemsByOrder[o.ID]
	return &o, nil
}

func (r *repository) ListAll(ctx context.Context) ([]*Order, error) {
	return r.list(ctx, selectOrder+` ORDER BY o.id`)
}

func (r *repository) ListByClient(ctx context.Context, clientID int64) ([]*Order, error) {
	return r.list(ctx, selectOrder+` WHERE o.client_id = $1 ORDER BY o.id`, clientID)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	var ids []int64
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.ClientID, &o.Status, &o.Total, &o.CreatedAt,
			&o.Client.ID, &o.Client.Name, &o.Client.Email); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.fetchItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = itemsByOrder[o.ID]
	}
	return orders, nil
}

// fetchItems loads the lines of the given orders together with the current
// catalog projection of each line's product.
func (r *repository) fetchItems(ctx context.Context, orderIDs []int64) (map[int64][]OrderItem, error) {
	rows, err := r.q(ctx).QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.subtotal,
		       p.name, p.price, p.stock
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]OrderItem)
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
			&it.UnitPrice, &it.Subtotal,
			&it.Product.Name, &it.Product.Price, &it.Product.Stock); err != nil {
			return nil, err
		}
		it.Product.ID = it.ProductID
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items, rows.Err()
}

func (r *repository) SetStatus(ctx context.Context, id int64, status Status) error {
	res, err := r.q(ctx).ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) OwnerSubject(ctx context.Context, orderID int64) (string, error) {
	var subject string
	err := r.q(ctx).QueryRowContext(ctx, `
		SELECT c.subject_id
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE o.id = $1
	`, orderID).Scan(&subject)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	return subject, nil
}
