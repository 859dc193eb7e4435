package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const orderCols = `id, buyer_id, supplier_id, product_id, demand_id, quantity,
                   agreed_price_per_ton, total_amount, delivery_address, status,
                   contract_terms, created_at, updated_at`

func (r *Repo) InsertOrder(ctx context.Context, o Order) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders(`+orderCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		o.ID, o.BuyerID, o.SupplierID, o.ProductID, o.DemandID, o.Quantity,
		o.AgreedPricePerTon, o.TotalAmount, o.DeliveryAddress, o.Status,
		o.ContractTerms, o.CreatedAt, o.UpdatedAt)
	return err
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.BuyerID, &o.SupplierID, &o.ProductID, &o.DemandID, &o.Quantity,
		&o.AgreedPricePerTon, &o.TotalAmount, &o.DeliveryAddress, &o.Status,
		&o.ContractTerms, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("%w: order", ErrNotFound)
	}
	return o, err
}

func (r *Repo) OrderByID(ctx context.Context, id string) (Order, error) {
	return scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
}

func orderCond(f OrderFilter) *cond {
	c := &cond{}
	if f.BuyerID != "" {
		c.add(`buyer_id=$%d`, f.BuyerID)
	}
	if f.SupplierID != "" {
		c.add(`supplier_id=$%d`, f.SupplierID)
	}
	return c
}

func (r *Repo) queryOrders(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) Orders(ctx context.Context, f OrderFilter) ([]Order, error) {
	c := orderCond(f)
	return r.queryOrders(ctx, `SELECT `+orderCols+` FROM orders`+c.where(), c.args...)
}

func (r *Repo) RecentOrders(ctx context.Context, f OrderFilter, limit int) ([]Order, error) {
	c := orderCond(f)
	q := fmt.Sprintf(`SELECT `+orderCols+` FROM orders`+c.where()+` ORDER BY created_at DESC LIMIT %d`, limit)
	return r.queryOrders(ctx, q, c.args...)
}

func (r *Repo) CountOrders(ctx context.Context, f OrderFilter) (int64, error) {
	c := orderCond(f)
	var n int64
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+c.where(), c.args...).Scan(&n)
	return n, err
}

func (r *Repo) SumOrderAmounts(ctx context.Context, f OrderFilter) (float64, error) {
	c := orderCond(f)
	var total float64
	err := r.DB.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders`+c.where(), c.args...).Scan(&total)
	return total, err
}

func (r *Repo) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus, updatedAt time.Time) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`, id, status, updatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	return nil
}

// ---- notifications ----

func (r *Repo) InsertNotification(ctx context.Context, n Notification) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO notifications(id, user_id, order_id, kind, message, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		n.ID, n.UserID, n.OrderID, n.Kind, n.Message, n.CreatedAt)
	return err
}

func (r *Repo) NotificationsFor(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, order_id, kind, message, created_at
		FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.OrderID, &n.Kind, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
