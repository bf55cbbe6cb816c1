package data

import "time"

// Loan statuses.
const (
	LoanStatusPending   = "pending"
	LoanStatusActive    = "active"
	LoanStatusFinalized = "finalized"
)

const (
	// LoanPeriodDays is the number of days between the start of a loan and
	// its due date, on creation and on renewal.
	LoanPeriodDays = 14

	// FinePerDay is the fine charged for each full day a loan is returned
	// past its due date.
	FinePerDay = 2.0

	// MaxActiveLoans is the maximum number of active loans a user may hold
	// when requesting a new one.
	MaxActiveLoans = 2
)

// Loan defines a loan model. A loan is created active and is finalized
// exactly once on return; it is never reopened.
type Loan struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	UserID    int64     `json:"user_id"`
	StartDate time.Time `json:"start_date"`
	DueDate   time.Time `json:"due_date"`
	Fine      float64   `json:"fine"`
	Status    string    `json:"status"`
	BookTitle string    `json:"book_title,omitempty"`
	UserName  string    `json:"user_name,omitempty"`
	UserEmail string    `json:"-"`
	Version   int32     `json:"-"`
}

// NewLoan opens an active loan starting now, due fourteen days later.
func NewLoan(userID, bookID int64, now time.Time) *Loan {
	return &Loan{
		BookID:    bookID,
		UserID:    userID,
		StartDate: dateOf(now),
		DueDate:   dateOf(now).AddDate(0, 0, LoanPeriodDays),
		Status:    LoanStatusActive,
	}
}

// Renew pushes the due date out to fourteen days from now. The status is
// untouched.
func (l *Loan) Renew(now time.Time) {
	l.DueDate = dateOf(now).AddDate(0, 0, LoanPeriodDays)
}

// Finalize closes the loan and charges the late fine: FinePerDay for each
// full day past the due date. Returning on or before the due date leaves any
// pre-existing fine unchanged.
func (l *Loan) Finalize(now time.Time) {
	if days := l.DaysLate(now); days > 0 {
		l.Fine = float64(days) * FinePerDay
	}
	l.Status = LoanStatusFinalized
}

// DaysLate returns the number of whole days the loan is past its due date,
// or zero if the due date has not passed. Day boundaries follow the calendar
// date, not a 24-hour window from the moment of borrowing.
func (l *Loan) DaysLate(now time.Time) int {
	late := dateOf(now).Sub(dateOf(l.DueDate)) / (24 * time.Hour)
	if late < 0 {
		return 0
	}
	return int(late)
}

// dateOf strips the clock-time from t, leaving midnight UTC of the same day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
