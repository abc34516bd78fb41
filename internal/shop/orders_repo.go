package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fadhilr/go-shop-orders/internal/postgres"
)

// OrderRepo persists and reads order aggregates. Insert and
// MarkPaymentCancelled only ever run inside the coordinator's transaction;
// Aggregate and List also serve plain pool reads.
type OrderRepo interface {
	Insert(ctx context.Context, o Order, lines []OrderLine, p Payment) error
	Aggregate(ctx context.Context, orderID string) (*OrderAggregate, error)
	// MarkPaymentCancelled flips a completed payment to cancelled. Zero rows
	// affected means a racer cancelled first; that loses as BadRequest.
	MarkPaymentCancelled(ctx context.Context, paymentID string) error
	List(ctx context.Context, userID int64, page, limit int, status *PaymentStatus) (*OrderPage, error)
}

type PGOrderRepo struct {
	DB *postgres.DB
}

func (r *PGOrderRepo) Insert(ctx context.Context, o Order, lines []OrderLine, p Payment) error {
	q := r.DB.Q(ctx)
	_, err := q.Exec(ctx, `
		INSERT INTO orders(id, user_id, receiver_name, address, phone, subtotal, total_quantity, use_point)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.UserID, o.ReceiverName, o.Address, o.Phone, o.Subtotal, o.TotalQuantity, o.UsePoint)
	if err != nil {
		return err
	}
	for _, ln := range lines {
		_, err = q.Exec(ctx, `
			INSERT INTO order_lines(order_id, product_id, size_id, price, quantity)
			VALUES ($1,$2,$3,$4,$5)`,
			o.ID, ln.ProductID, ln.SizeID, ln.Price, ln.Quantity)
		if err != nil {
			return err
		}
	}
	_, err = q.Exec(ctx, `
		INSERT INTO payments(id, order_id, price, status)
		VALUES ($1,$2,$3,$4)`,
		p.ID, o.ID, p.Price, p.Status)
	return err
}

func (r *PGOrderRepo) Aggregate(ctx context.Context, orderID string) (*OrderAggregate, error) {
	q := r.DB.Q(ctx)

	var agg OrderAggregate
	err := q.QueryRow(ctx, `
		SELECT id, user_id, receiver_name, address, phone, subtotal, total_quantity, use_point, created_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&agg.Order.ID, &agg.Order.UserID, &agg.Order.ReceiverName, &agg.Order.Address,
			&agg.Order.Phone, &agg.Order.Subtotal, &agg.Order.TotalQuantity, &agg.Order.UsePoint,
			&agg.Order.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFoundf("order %s not found", orderID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, size_id, price, quantity
		FROM order_lines WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ln OrderLine
		if err := rows.Scan(&ln.ID, &ln.OrderID, &ln.ProductID, &ln.SizeID, &ln.Price, &ln.Quantity); err != nil {
			return nil, err
		}
		agg.Lines = append(agg.Lines, ln)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The model allows multiple payment rows; the most recent one is
	// authoritative.
	var p Payment
	err = q.QueryRow(ctx, `
		SELECT id, order_id, price, status, created_at
		FROM payments WHERE order_id=$1
		ORDER BY created_at DESC, id DESC LIMIT 1`, orderID).
		Scan(&p.ID, &p.OrderID, &p.Price, &p.Status, &p.CreatedAt)
	if err == nil {
		agg.Payment = &p
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return &agg, nil
}

func (r *PGOrderRepo) MarkPaymentCancelled(ctx context.Context, paymentID string) error {
	ct, err := r.DB.Q(ctx).Exec(ctx,
		`UPDATE payments SET status=$2 WHERE id=$1 AND status=$3`,
		paymentID, PaymentCancelled, PaymentCompleted)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return BadRequestf("payment %s is not cancellable", paymentID)
	}
	return nil
}

func (r *PGOrderRepo) List(ctx context.Context, userID int64, page, limit int, status *PaymentStatus) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	q := r.DB.Q(ctx)
	base := `
		FROM orders o
		JOIN LATERAL (
			SELECT price, status FROM payments
			WHERE order_id = o.id
			ORDER BY created_at DESC, id DESC LIMIT 1
		) p ON true
		WHERE o.user_id=$1`
	args := []any{userID}
	if status != nil {
		base += ` AND p.status=$2`
		args = append(args, *status)
	}

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) `+base, args...).Scan(&total); err != nil {
		return nil, err
	}

	sel := `
		SELECT o.id, o.user_id, o.receiver_name, o.address, o.phone, o.subtotal,
		       o.total_quantity, o.use_point, o.created_at, p.price, p.status ` +
		base + ` ORDER BY o.created_at DESC, o.id DESC`
	args = append(args, limit, (page-1)*limit)
	if status != nil {
		sel += ` LIMIT $3 OFFSET $4`
	} else {
		sel += ` LIMIT $2 OFFSET $3`
	}

	rows, err := q.Query(ctx, sel, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &OrderPage{Data: []OrderSummary{}, Meta: NewPageMeta(total, page, limit)}
	for rows.Next() {
		var s OrderSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.ReceiverName, &s.Address, &s.Phone, &s.Subtotal,
			&s.TotalQuantity, &s.UsePoint, &s.CreatedAt, &s.PaymentPrice, &s.PaymentStatus); err != nil {
			return nil, err
		}
		out.Data = append(out.Data, s)
	}
	return out, rows.Err()
}
