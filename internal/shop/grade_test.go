package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifierWorld(totalAmount int, gradeID int64) (*Classifier, *fakeAccounts) {
	state := &memState{
		accounts: map[int64]*Account{
			1: {UserID: 1, TotalAmount: totalAmount, GradeID: gradeID},
		},
		grades: []Grade{
			{ID: 1, Name: "BRONZE", MinAmount: 0},
			{ID: 2, Name: "SILVER", MinAmount: 100000},
			{ID: 3, Name: "GOLD", MinAmount: 500000},
		},
	}
	accounts := &fakeAccounts{s: state}
	return &Classifier{Accounts: accounts, Grades: &fakeGrades{s: state}}, accounts
}

func TestClassifierRecalculate(t *testing.T) {
	tests := []struct {
		name        string
		totalAmount int
		gradeID     int64
		wantGrade   int64
		wantWrites  int
	}{
		{"stays at base", 50000, 1, 1, 0},
		{"promoted to mid", 150000, 1, 2, 1},
		{"exactly at threshold", 100000, 1, 2, 1},
		{"promoted to top", 600000, 2, 3, 1},
		{"demoted to base", 50000, 2, 1, 1},
		{"unchanged skips the write", 150000, 2, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, accounts := classifierWorld(tt.totalAmount, tt.gradeID)
			require.NoError(t, c.Recalculate(context.Background(), 1))
			assert.Equal(t, tt.wantGrade, accounts.s.accounts[1].GradeID)
			assert.Equal(t, tt.wantWrites, accounts.setGradeCalls)
		})
	}
}

func TestClassifierEmptyGradeTable(t *testing.T) {
	c, _ := classifierWorld(0, 1)
	c.Grades = &fakeGrades{s: &memState{}}
	err := c.Recalculate(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestClassifierUnknownUser(t *testing.T) {
	c, _ := classifierWorld(0, 1)
	err := c.Recalculate(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
