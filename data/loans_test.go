package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLoan(t *testing.T) {
	now := time.Date(2024, 3, 10, 16, 42, 7, 0, time.UTC)
	loan := NewLoan(7, 3, now)

	assert.Equal(t, int64(7), loan.UserID)
	assert.Equal(t, int64(3), loan.BookID)
	assert.Equal(t, LoanStatusActive, loan.Status)
	assert.True(t, loan.StartDate.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, loan.DueDate.Equal(time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC)))
	assert.Zero(t, loan.Fine)
}

func TestLoanRenew(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	loan := NewLoan(7, 3, now)

	later := time.Date(2024, 3, 20, 23, 59, 0, 0, time.UTC)
	loan.Renew(later)

	assert.True(t, loan.DueDate.Equal(time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, LoanStatusActive, loan.Status)
}

func TestLoanDaysLate(t *testing.T) {
	due := time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{
			name: "before due date",
			now:  time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "on due date",
			now:  time.Date(2024, 3, 24, 23, 59, 59, 0, time.UTC),
			want: 0,
		},
		{
			name: "one minute into the next day",
			now:  time.Date(2024, 3, 25, 0, 1, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "three days late",
			now:  time.Date(2024, 3, 27, 8, 0, 0, 0, time.UTC),
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := &Loan{DueDate: due}
			assert.Equal(t, tt.want, loan.DaysLate(tt.now))
		})
	}
}

func TestLoanFinalize(t *testing.T) {
	due := time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC)

	t.Run("on time keeps existing fine", func(t *testing.T) {
		loan := &Loan{DueDate: due, Fine: 4.0, Status: LoanStatusActive}
		loan.Finalize(time.Date(2024, 3, 24, 18, 0, 0, 0, time.UTC))

		assert.Equal(t, LoanStatusFinalized, loan.Status)
		assert.Equal(t, 4.0, loan.Fine)
	})

	t.Run("three days late charges six", func(t *testing.T) {
		loan := &Loan{DueDate: due, Status: LoanStatusActive}
		loan.Finalize(time.Date(2024, 3, 27, 10, 30, 0, 0, time.UTC))

		assert.Equal(t, LoanStatusFinalized, loan.Status)
		assert.Equal(t, 3*FinePerDay, loan.Fine)
	})
}
