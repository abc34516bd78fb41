package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fadhilr/go-shop-orders/internal/postgres"
)

// StockLedger is the per-(product,size) quantity counter. ReadForUpdate and
// Decrement must run on a context opened by the coordinator's transaction so
// the check and the mutation share the same row lock.
type StockLedger interface {
	ReadForUpdate(ctx context.Context, productID, sizeID int64) (int, error)
	// Decrement subtracts qty and returns the remaining quantity. It refuses
	// to drive the counter negative; losing the conditional update (e.g. to a
	// concurrent racer) surfaces as BadRequest.
	Decrement(ctx context.Context, productID, sizeID int64, qty int) (int, error)
	// Increment is unconditionally additive; cancellation only.
	Increment(ctx context.Context, productID, sizeID int64, qty int) error
}

type PGStockLedger struct {
	DB *postgres.DB
}

func (l *PGStockLedger) ReadForUpdate(ctx context.Context, productID, sizeID int64) (int, error) {
	var qty int
	err := l.DB.Q(ctx).QueryRow(ctx,
		`SELECT quantity FROM stocks WHERE product_id=$1 AND size_id=$2 FOR UPDATE`,
		productID, sizeID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, NotFoundf("stock not found for product %d size %d", productID, sizeID)
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}

func (l *PGStockLedger) Decrement(ctx context.Context, productID, sizeID int64, qty int) (int, error) {
	var remaining int
	err := l.DB.Q(ctx).QueryRow(ctx, `
		UPDATE stocks SET quantity = quantity - $3
		WHERE product_id=$1 AND size_id=$2 AND quantity >= $3
		RETURNING quantity`,
		productID, sizeID, qty).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		// Losing the guard means a racer got here first; the re-read sees
		// the row under the same lock, so the reported availability is exact.
		var avail int
		err = l.DB.Q(ctx).QueryRow(ctx,
			`SELECT quantity FROM stocks WHERE product_id=$1 AND size_id=$2`,
			productID, sizeID).Scan(&avail)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, NotFoundf("stock not found for product %d size %d", productID, sizeID)
		}
		if err != nil {
			return 0, err
		}
		return 0, BadRequestf("insufficient stock for product %d size %d: requested %d, available %d",
			productID, sizeID, qty, avail)
	}
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (l *PGStockLedger) Increment(ctx context.Context, productID, sizeID int64, qty int) error {
	ct, err := l.DB.Q(ctx).Exec(ctx,
		`UPDATE stocks SET quantity = quantity + $3 WHERE product_id=$1 AND size_id=$2`,
		productID, sizeID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return NotFoundf("stock not found for product %d size %d", productID, sizeID)
	}
	return nil
}
