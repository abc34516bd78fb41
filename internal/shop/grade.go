package shop

import (
	"context"

	"github.com/fadhilr/go-shop-orders/internal/postgres"
)

// GradeRepo lists loyalty grades ordered by min_amount descending.
type GradeRepo interface {
	Grades(ctx context.Context) ([]Grade, error)
}

type PGGradeRepo struct {
	DB *postgres.DB
}

func (r *PGGradeRepo) Grades(ctx context.Context) ([]Grade, error) {
	rows, err := r.DB.Q(ctx).Query(ctx,
		`SELECT id, name, min_amount FROM grades ORDER BY min_amount DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Grade
	for rows.Next() {
		var g Grade
		if err := rows.Scan(&g.ID, &g.Name, &g.MinAmount); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Classifier re-derives a user's grade from lifetime spend. It must run
// inside the same transaction as the total_amount mutation it follows.
type Classifier struct {
	Accounts AccountLedger
	Grades   GradeRepo
}

// Recalculate picks the highest grade whose min_amount does not exceed the
// user's total_amount, falling back to the lowest tier, and writes the new
// grade only when it changed.
func (c *Classifier) Recalculate(ctx context.Context, userID int64) error {
	acct, err := c.Accounts.Account(ctx, userID)
	if err != nil {
		return err
	}
	grades, err := c.Grades.Grades(ctx)
	if err != nil {
		return err
	}
	if len(grades) == 0 {
		return Internalf("grade table is empty")
	}

	next := grades[len(grades)-1]
	for _, g := range grades {
		if g.MinAmount <= acct.TotalAmount {
			next = g
			break
		}
	}
	if next.ID == acct.GradeID {
		return nil
	}
	return c.Accounts.SetGrade(ctx, userID, next.ID)
}
