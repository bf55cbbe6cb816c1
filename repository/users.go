package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/antoniovct/api-biblioteca/data"
)

type users interface {
	RegisterUser(user *data.User) error
	GetUserByID(ID int64) (*data.User, error)
	GetUserByEmail(email string) (*data.User, error)
	GetAllUsers(name string, filters data.Filters) ([]*data.User, data.Metadata, error)
	UpdateUser(user *data.User) error
	DeleteUser(ID int64) error
	GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error)
}

// RegisterUser registers a new user.
func (r *repository) RegisterUser(user *data.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, national_id, role, activated, email_verified, verification_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version`
	args := []interface{}{
		user.Name,
		user.Email,
		user.Password.Hash,
		user.NationalID,
		user.Role,
		user.Active,
		user.EmailVerified,
		user.VerificationCode,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Version,
	)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "users_email_key"`:
			return ErrDuplicateRecord
		case err.Error() == `pq: duplicate key value violates unique constraint "users_national_id_key"`:
			return ErrDuplicateRecord
		default:
			return err
		}
	}
	return nil
}

// GetUserByID retrieves a user record by its ID.
func (r *repository) GetUserByID(ID int64) (*data.User, error) {
	if ID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, created_at, name, email, password_hash, national_id, role, activated, email_verified, verification_code, version
		FROM users
		WHERE id = $1`
	var user data.User
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, ID).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Name,
		&user.Email,
		&user.Password.Hash,
		&user.NationalID,
		&user.Role,
		&user.Active,
		&user.EmailVerified,
		&user.VerificationCode,
		&user.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}

// GetUserByEmail retrieves a user record by its email.
func (r *repository) GetUserByEmail(email string) (*data.User, error) {
	query := `
		SELECT id, created_at, name, email, password_hash, national_id, role, activated, email_verified, verification_code, version
		FROM users
		WHERE email = $1`
	var user data.User
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Name,
		&user.Email,
		&user.Password.Hash,
		&user.NationalID,
		&user.Role,
		&user.Active,
		&user.EmailVerified,
		&user.VerificationCode,
		&user.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}

// GetAllUsers retrieves a paginated list of all user records.
// Records can be filtered by name and sorted.
func (r *repository) GetAllUsers(name string, filters data.Filters) ([]*data.User, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, created_at, name, email, password_hash, national_id, role, activated, email_verified, verification_code, version
		FROM users
		WHERE (to_tsvector('simple', name) @@ plainto_tsquery('simple', $1) OR $1 = '')
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{name, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	users := []*data.User{}
	for rows.Next() {
		var user data.User
		err := rows.Scan(
			&totalRecords,
			&user.ID,
			&user.CreatedAt,
			&user.Name,
			&user.Email,
			&user.Password.Hash,
			&user.NationalID,
			&user.Role,
			&user.Active,
			&user.EmailVerified,
			&user.VerificationCode,
			&user.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		users = append(users, &user)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return users, metadata, nil
}

// UpdateUser updates a user record.
func (r *repository) UpdateUser(user *data.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, national_id = $4, role = $5, activated = $6, email_verified = $7, verification_code = $8, version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version`
	args := []interface{}{
		user.Name,
		user.Email,
		user.Password.Hash,
		user.NationalID,
		user.Role,
		user.Active,
		user.EmailVerified,
		user.VerificationCode,
		user.ID,
		user.Version,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.Version)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "users_email_key"`:
			return ErrDuplicateRecord
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}

// DeleteUser deletes a user record.
func (r *repository) DeleteUser(ID int64) error {
	if ID < 1 {
		return ErrRecordNotFound
	}
	query := `
		DELETE FROM users
		WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, ID)
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

// GetUserForToken returns a user record associated with a token.
func (r *repository) GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error) {
	tokenHash := sha256.Sum256([]byte(tokenPlaintext))
	query := `
		SELECT users.id, users.created_at, users.name, users.email, users.password_hash, users.national_id, users.role, users.activated, users.email_verified, users.verification_code, users.version
		FROM users
		INNER JOIN tokens
		ON users.id = tokens.user_id
		WHERE tokens.hash = $1
		AND tokens.scope = $2
		AND tokens.expiry > $3`
	args := []interface{}{tokenHash[:], tokenScope, time.Now()}
	var user data.User
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Name,
		&user.Email,
		&user.Password.Hash,
		&user.NationalID,
		&user.Role,
		&user.Active,
		&user.EmailVerified,
		&user.VerificationCode,
		&user.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}
