package service

import (
	"errors"
	"time"

	"github.com/antoniovct/api-biblioteca/data"
	"github.com/antoniovct/api-biblioteca/internal/validator"
	"github.com/antoniovct/api-biblioteca/repository"
)

type tokens interface {
	CreateAuthenticationToken(email string, password string) (*data.Token, error)
	DeleteAuthenticationToken(userID int64) error
}

// CreateAuthenticationToken service creates a new authentication token.
func (s *service) CreateAuthenticationToken(email string, password string) (*data.Token, error) {
	v := validator.New()
	data.ValidateEmail(v, email)
	data.ValidatePasswordPlaintext(v, password)
	if !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrInvalidCredentials
		default:
			return nil, err
		}
	}
	match, err := user.Password.Matches(password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}
	token, err := s.repo.CreateNewToken(user.ID, 24*time.Hour, data.ScopeAuthentication)
	if err != nil {
		return nil, err
	}
	return token, nil
}

// DeleteAuthenticationToken deletes all authentication tokens for a user.
func (s *service) DeleteAuthenticationToken(userID int64) error {
	return s.repo.DeleteAllTokensForUser(data.ScopeAuthentication, userID)
}
