package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/antoniovct/api-biblioteca/data"
)

type reservations interface {
	CreateReservation(reservation *data.Reservation) error
	GetReservation(ID int64) (*data.Reservation, error)
	GetAllReservations(userID int64, status string, filters data.Filters) ([]*data.Reservation, data.Metadata, error)
	CountActiveReservationsForUser(userID int64) (int, error)
	GetActiveReservationForBook(bookID int64) (*data.Reservation, error)
	HasPendingReservationForBook(bookID int64) (bool, error)
	GetNextPendingReservationForBook(bookID int64) (*data.Reservation, error)
	UpdateReservation(reservation *data.Reservation) error
	DeleteReservation(reservationID int64) error
	GetExpiredReservations(now time.Time) ([]*data.Reservation, error)
}

// CreateReservation creates a new reservation record.
func (r *repository) CreateReservation(reservation *data.Reservation) error {
	query := `
		INSERT INTO reservations (book_id, user_id, activated_at, expires_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version`
	args := []interface{}{
		reservation.BookID,
		reservation.UserID,
		reservation.ActivatedAt,
		reservation.ExpiresAt,
		reservation.Status,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return r.db.QueryRowContext(ctx, query, args...).Scan(
		&reservation.ID,
		&reservation.CreatedAt,
		&reservation.Version,
	)
}

// GetReservation retrieves a reservation record by its ID, along with the book
// title and holder details for display and notifications.
func (r *repository) GetReservation(ID int64) (*data.Reservation, error) {
	if ID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT reservations.id, reservations.book_id, reservations.user_id, reservations.created_at, reservations.activated_at, reservations.expires_at, reservations.status, reservations.version, books.title, users.name, users.email
		FROM reservations
		INNER JOIN books ON reservations.book_id = books.id
		INNER JOIN users ON reservations.user_id = users.id
		WHERE reservations.id = $1`
	var reservation data.Reservation
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, ID).Scan(
		&reservation.ID,
		&reservation.BookID,
		&reservation.UserID,
		&reservation.CreatedAt,
		&reservation.ActivatedAt,
		&reservation.ExpiresAt,
		&reservation.Status,
		&reservation.Version,
		&reservation.BookTitle,
		&reservation.UserName,
		&reservation.UserEmail,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &reservation, nil
}

// GetAllReservations retrieves a paginated list of all reservation records.
// Records can be filtered by user and status, and sorted.
func (r *repository) GetAllReservations(userID int64, status string, filters data.Filters) ([]*data.Reservation, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), reservations.id, reservations.book_id, reservations.user_id, reservations.created_at, reservations.activated_at, reservations.expires_at, reservations.status, reservations.version, books.title, users.name, users.email
		FROM reservations
		INNER JOIN books ON reservations.book_id = books.id
		INNER JOIN users ON reservations.user_id = users.id
		WHERE (reservations.user_id = $1 OR $1 = 0)
		AND (LOWER(reservations.status) = LOWER($2) OR $2 = '')
		ORDER BY reservations.%s %s, reservations.id ASC
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
	reservations := []*data.Reservation{}
	for rows.Next() {
		var reservation data.Reservation
		err := rows.Scan(
			&totalRecords,
			&reservation.ID,
			&reservation.BookID,
			&reservation.UserID,
			&reservation.CreatedAt,
			&reservation.ActivatedAt,
			&reservation.ExpiresAt,
			&reservation.Status,
			&reservation.Version,
			&reservation.BookTitle,
			&reservation.UserName,
			&reservation.UserEmail,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		reservations = append(reservations, &reservation)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return reservations, metadata, nil
}

// CountActiveReservationsForUser counts a user's active reservation records,
// i.e. those that count towards the reservation limit.
func (r *repository) CountActiveReservationsForUser(userID int64) (int, error) {
	query := `
		SELECT count(*)
		FROM reservations
		WHERE user_id = $1 AND LOWER(status) = 'active'`
	var count int
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetActiveReservationForBook retrieves the active reservation for a book, if
// one exists. At most one reservation per book is active at any time.
func (r *repository) GetActiveReservationForBook(bookID int64) (*data.Reservation, error) {
	if bookID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, book_id, user_id, created_at, activated_at, expires_at, status, version
		FROM reservations
		WHERE book_id = $1 AND LOWER(status) = 'active'
		ORDER BY activated_at ASC, id ASC
		LIMIT 1`
	var reservation data.Reservation
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(
		&reservation.ID,
		&reservation.BookID,
		&reservation.UserID,
		&reservation.CreatedAt,
		&reservation.ActivatedAt,
		&reservation.ExpiresAt,
		&reservation.Status,
		&reservation.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &reservation, nil
}

// HasPendingReservationForBook reports whether any pending reservation exists
// for a book.
func (r *repository) HasPendingReservationForBook(bookID int64) (bool, error) {
	query := `
		SELECT count(*)
		FROM reservations
		WHERE book_id = $1 AND LOWER(status) = 'pending'`
	var count int
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetNextPendingReservationForBook retrieves the earliest pending reservation
// for a book. Ties on creation time break on the lower ID.
func (r *repository) GetNextPendingReservationForBook(bookID int64) (*data.Reservation, error) {
	if bookID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, book_id, user_id, created_at, activated_at, expires_at, status, version
		FROM reservations
		WHERE book_id = $1 AND LOWER(status) = 'pending'
		ORDER BY created_at ASC, id ASC
		LIMIT 1`
	var reservation data.Reservation
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(
		&reservation.ID,
		&reservation.BookID,
		&reservation.UserID,
		&reservation.CreatedAt,
		&reservation.ActivatedAt,
		&reservation.ExpiresAt,
		&reservation.Status,
		&reservation.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &reservation, nil
}

// UpdateReservation updates a reservation record.
func (r *repository) UpdateReservation(reservation *data.Reservation) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return updateReservationTx(ctx, r.db, reservation)
}

// DeleteReservation deletes a reservation record.
func (r *repository) DeleteReservation(reservationID int64) error {
	if reservationID < 1 {
		return ErrRecordNotFound
	}
	query := `
		DELETE FROM reservations
		WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, reservationID)
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

// GetExpiredReservations retrieves all active reservation records whose pickup
// window has elapsed, along with book and holder details.
func (r *repository) GetExpiredReservations(now time.Time) ([]*data.Reservation, error) {
	query := `
		SELECT reservations.id, reservations.book_id, reservations.user_id, reservations.created_at, reservations.activated_at, reservations.expires_at, reservations.status, reservations.version, books.title, users.name, users.email
		FROM reservations
		INNER JOIN books ON reservations.book_id = books.id
		INNER JOIN users ON reservations.user_id = users.id
		WHERE LOWER(reservations.status) = 'active' AND reservations.expires_at <= $1
		ORDER BY reservations.expires_at ASC, reservations.id ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reservations := []*data.Reservation{}
	for rows.Next() {
		var reservation data.Reservation
		err := rows.Scan(
			&reservation.ID,
			&reservation.BookID,
			&reservation.UserID,
			&reservation.CreatedAt,
			&reservation.ActivatedAt,
			&reservation.ExpiresAt,
			&reservation.Status,
			&reservation.Version,
			&reservation.BookTitle,
			&reservation.UserName,
			&reservation.UserEmail,
		)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, &reservation)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

// updateReservationTx applies a versioned reservation update through any
// query runner, so it works both standalone and inside a transaction.
func updateReservationTx(ctx context.Context, db interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}, reservation *data.Reservation) error {
	query := `
		UPDATE reservations
		SET activated_at = $1, expires_at = $2, status = $3, version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version`
	args := []interface{}{
		reservation.ActivatedAt,
		reservation.ExpiresAt,
		reservation.Status,
		reservation.ID,
		reservation.Version,
	}
	err := db.QueryRowContext(ctx, query, args...).Scan(&reservation.Version)
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
