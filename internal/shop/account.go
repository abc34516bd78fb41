package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fadhilr/go-shop-orders/internal/postgres"
)

// AccountLedger mutates the point balance and lifetime-spend accumulator of
// a user row. All mutations run inside the coordinator's transaction;
// Balance is a pool read used as an optimistic pre-check only.
type AccountLedger interface {
	Balance(ctx context.Context, userID int64) (int, error)
	Account(ctx context.Context, userID int64) (Account, error)
	DecrementPoints(ctx context.Context, userID int64, amount int) error
	IncrementPoints(ctx context.Context, userID int64, amount int) error
	AddTotalAmount(ctx context.Context, userID int64, amount int) error
	SubtractTotalAmount(ctx context.Context, userID int64, amount int) error
	SetGrade(ctx context.Context, userID, gradeID int64) error
}

type PGAccountLedger struct {
	DB *postgres.DB
}

func (l *PGAccountLedger) Balance(ctx context.Context, userID int64) (int, error) {
	var points int
	err := l.DB.Q(ctx).QueryRow(ctx, `SELECT points FROM users WHERE id=$1`, userID).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, NotFoundf("user %d not found", userID)
	}
	if err != nil {
		return 0, err
	}
	return points, nil
}

func (l *PGAccountLedger) Account(ctx context.Context, userID int64) (Account, error) {
	a := Account{UserID: userID}
	err := l.DB.Q(ctx).QueryRow(ctx,
		`SELECT points, total_amount, grade_id FROM users WHERE id=$1`,
		userID).Scan(&a.Points, &a.TotalAmount, &a.GradeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, NotFoundf("user %d not found", userID)
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// DecrementPoints is guarded so the balance never goes negative. A pre-check
// that passed outside the transaction can still lose here (TOCTOU); the
// losing update comes back as BadRequest.
func (l *PGAccountLedger) DecrementPoints(ctx context.Context, userID int64, amount int) error {
	ct, err := l.DB.Q(ctx).Exec(ctx,
		`UPDATE users SET points = points - $2 WHERE id=$1 AND points >= $2`,
		userID, amount)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return BadRequestf("insufficient points for user %d", userID)
	}
	return nil
}

func (l *PGAccountLedger) IncrementPoints(ctx context.Context, userID int64, amount int) error {
	return l.update(ctx, `UPDATE users SET points = points + $2 WHERE id=$1`, userID, amount)
}

func (l *PGAccountLedger) AddTotalAmount(ctx context.Context, userID int64, amount int) error {
	return l.update(ctx, `UPDATE users SET total_amount = total_amount + $2 WHERE id=$1`, userID, amount)
}

func (l *PGAccountLedger) SubtractTotalAmount(ctx context.Context, userID int64, amount int) error {
	ct, err := l.DB.Q(ctx).Exec(ctx,
		`UPDATE users SET total_amount = total_amount - $2 WHERE id=$1 AND total_amount >= $2`,
		userID, amount)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		// Lifetime spend below the refunded charge means the books are off.
		return Internalf("total amount underflow for user %d", userID)
	}
	return nil
}

func (l *PGAccountLedger) SetGrade(ctx context.Context, userID, gradeID int64) error {
	return l.update(ctx, `UPDATE users SET grade_id = $2 WHERE id=$1`, userID, gradeID)
}

func (l *PGAccountLedger) update(ctx context.Context, sql string, userID int64, arg any) error {
	ct, err := l.DB.Q(ctx).Exec(ctx, sql, userID, arg)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return NotFoundf("user %d not found", userID)
	}
	return nil
}
