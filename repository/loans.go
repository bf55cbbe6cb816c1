package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/antoniovct/api-biblioteca/data"
)

type loans interface {
	CreateLoan(loan *data.Loan, book *data.Book, consumed *data.Reservation) error
	GetLoan(ID int64) (*data.Loan, error)
	GetAllLoans(userID int64, status string, filters data.Filters) ([]*data.Loan, data.Metadata, error)
	CountLoansForUser(userID int64, status string) (int, error)
	UpdateLoan(loan *data.Loan) error
	FinalizeLoan(loan *data.Loan, book *data.Book, promoted *data.Reservation) error
	DeleteLoan(loanID int64) error
	GetLoansDueOn(day time.Time) ([]*data.Loan, error)
	GetOverdueLoans(now time.Time) ([]*data.Loan, error)
}

// CreateLoan creates a new loan record and decrements the book's stock in a
// single transaction. When the loan consumes the borrower's active
// reservation, that reservation is finalized in the same transaction. The
// book update is versioned, so a concurrent checkout of the last copy
// surfaces as ErrEditConflict.
func (r *repository) CreateLoan(loan *data.Loan, book *data.Book, consumed *data.Reservation) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	query := `
		INSERT INTO loans (book_id, user_id, start_date, due_date, fine, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version`
	args := []interface{}{loan.BookID, loan.UserID, loan.StartDate, loan.DueDate, loan.Fine, loan.Status}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&loan.ID, &loan.Version)
	if err != nil {
		return err
	}
	err = updateBookTx(ctx, tx, book)
	if err != nil {
		return err
	}
	if consumed != nil {
		err = updateReservationTx(ctx, tx, consumed)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetLoan retrieves a loan record by its ID, along with the book title and
// borrower details for display and notifications.
func (r *repository) GetLoan(ID int64) (*data.Loan, error) {
	if ID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT loans.id, loans.book_id, loans.user_id, loans.start_date, loans.due_date, loans.fine, loans.status, loans.version, books.title, users.name, users.email
		FROM loans
		INNER JOIN books ON loans.book_id = books.id
		INNER JOIN users ON loans.user_id = users.id
		WHERE loans.id = $1`
	var loan data.Loan
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, ID).Scan(
		&loan.ID,
		&loan.BookID,
		&loan.UserID,
		&loan.StartDate,
		&loan.DueDate,
		&loan.Fine,
		&loan.Status,
		&loan.Version,
		&loan.BookTitle,
		&loan.UserName,
		&loan.UserEmail,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &loan, nil
}

// GetAllLoans retrieves a paginated list of all loan records.
// Records can be filtered by user and status, and sorted.
func (r *repository) GetAllLoans(userID int64, status string, filters data.Filters) ([]*data.Loan, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), loans.id, loans.book_id, loans.user_id, loans.start_date, loans.due_date, loans.fine, loans.status, loans.version, books.title, users.name, users.email
		FROM loans
		INNER JOIN books ON loans.book_id = books.id
		INNER JOIN users ON loans.user_id = users.id
		WHERE (loans.user_id = $1 OR $1 = 0)
		AND (LOWER(loans.status) = LOWER($2) OR $2 = '')
		ORDER BY loans.%s %s, loans.id ASC
		LIMIT $3 OFFSET $4`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{userID, status, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	loans := []*data.Loan{}
	for rows.Next() {
		var loan data.Loan
		err := rows.Scan(
			&totalRecords,
			&loan.ID,
			&loan.BookID,
			&loan.UserID,
			&loan.StartDate,
			&loan.DueDate,
			&loan.Fine,
			&loan.Status,
			&loan.Version,
			&loan.BookTitle,
			&loan.UserName,
			&loan.UserEmail,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		loans = append(loans, &loan)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return loans, metadata, nil
}

// CountLoansForUser counts a user's loan records with a given status.
func (r *repository) CountLoansForUser(userID int64, status string) (int, error) {
	query := `
		SELECT count(*)
		FROM loans
		WHERE user_id = $1 AND LOWER(status) = LOWER($2)`
	var count int
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, userID, status).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateLoan updates a loan record.
func (r *repository) UpdateLoan(loan *data.Loan) error {
	query := `
		UPDATE loans
		SET start_date = $1, due_date = $2, fine = $3, status = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version`
	args := []interface{}{
		loan.StartDate,
		loan.DueDate,
		loan.Fine,
		loan.Status,
		loan.ID,
		loan.Version,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&loan.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}

// FinalizeLoan finalizes a loan record, restocks the book and, when a pending
// reservation was promoted for the returned book, activates it. All three
// updates happen in a single transaction.
func (r *repository) FinalizeLoan(loan *data.Loan, book *data.Book, promoted *data.Reservation) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	query := `
		UPDATE loans
		SET start_date = $1, due_date = $2, fine = $3, status = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version`
	args := []interface{}{
		loan.StartDate,
		loan.DueDate,
		loan.Fine,
		loan.Status,
		loan.ID,
		loan.Version,
	}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&loan.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	err = updateBookTx(ctx, tx, book)
	if err != nil {
		return err
	}
	if promoted != nil {
		err = updateReservationTx(ctx, tx, promoted)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteLoan deletes a loan record.
func (r *repository) DeleteLoan(loanID int64) error {
	if loanID < 1 {
		return ErrRecordNotFound
	}
	query := `
		DELETE FROM loans
		WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, loanID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// GetLoansDueOn retrieves all active loan records due on a given calendar day.
func (r *repository) GetLoansDueOn(day time.Time) ([]*data.Loan, error) {
	query := `
		SELECT loans.id, loans.book_id, loans.user_id, loans.start_date, loans.due_date, loans.fine, loans.status, loans.version, books.title, users.name, users.email
		FROM loans
		INNER JOIN books ON loans.book_id = books.id
		INNER JOIN users ON loans.user_id = users.id
		WHERE LOWER(loans.status) = 'active' AND DATE(loans.due_date) = DATE($1)
		ORDER BY loans.id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	loans := []*data.Loan{}
	for rows.Next() {
		var loan data.Loan
		err := rows.Scan(
			&loan.ID,
			&loan.BookID,
			&loan.UserID,
			&loan.StartDate,
			&loan.DueDate,
			&loan.Fine,
			&loan.Status,
			&loan.Version,
			&loan.BookTitle,
			&loan.UserName,
			&loan.UserEmail,
		)
		if err != nil {
			return nil, err
		}
		loans = append(loans, &loan)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return loans, nil
}

// GetOverdueLoans retrieves all active loan records whose due date has passed.
func (r *repository) GetOverdueLoans(now time.Time) ([]*data.Loan, error) {
	query := `
		SELECT loans.id, loans.book_id, loans.user_id, loans.start_date, loans.due_date, loans.fine, loans.status, loans.version, books.title, users.name, users.email
		FROM loans
		INNER JOIN books ON loans.book_id = books.id
		INNER JOIN users ON loans.user_id = users.id
		WHERE LOWER(loans.status) = 'active' AND DATE(loans.due_date) < DATE($1)
		ORDER BY loans.id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	loans := []*data.Loan{}
	for rows.Next() {
		var loan data.Loan
		err := rows.Scan(
			&loan.ID,
			&loan.BookID,
			&loan.UserID,
			&loan.StartDate,
			&loan.DueDate,
			&loan.Fine,
			&loan.Status,
			&loan.Version,
			&loan.BookTitle,
			&loan.UserName,
			&loan.UserEmail,
		)
		if err != nil {
			return nil, err
		}
		loans = append(loans, &loan)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return loans, nil
}

// updateBookTx applies a versioned book update inside a transaction.
func updateBookTx(ctx context.Context, tx *sql.Tx, book *data.Book) error {
	query := `
		UPDATE books
		SET title = $1, author = $2, category = $3, stock = $4, available = $5, cover_path = $6, version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version`
	args := []interface{}{
		book.Title,
		book.Author,
		book.Category,
		book.Stock,
		book.Available,
		book.CoverPath,
		book.ID,
		book.Version,
	}
	err := tx.QueryRowContext(ctx, query, args...).Scan(&book.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}
