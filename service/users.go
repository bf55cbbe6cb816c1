package service

import (
	"errors"

	"github.com/antoniovct/api-biblioteca/data"
	"github.com/antoniovct/api-biblioteca/data/dto"
	"github.com/antoniovct/api-biblioteca/internal/validator"
	"github.com/antoniovct/api-biblioteca/repository"
	"github.com/google/uuid"
)

type users interface {
	RegisterUser(requestBody dto.RegisterUserRequestBody) (*data.User, error)
	VerifyEmail(userID int64, code string) (*data.User, error)
	GetUser(userID int64) (*data.User, error)
	ListUsers(name string, filters data.Filters) ([]*data.User, data.Metadata, error)
	UpdateUser(userID int64, requestBody dto.UpdateUserRequestBody) (*data.User, error)
	BlockUser(userID int64) (*data.User, error)
	DeleteUser(userID int64) error
	GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error)
}

// RegisterUser service registers a new user and emails them a single-use
// verification code.
func (s *service) RegisterUser(requestBody dto.RegisterUserRequestBody) (*data.User, error) {
	code := uuid.NewString()
	user := &data.User{
		Name:             requestBody.Name,
		Email:            requestBody.Email,
		NationalID:       requestBody.NationalID,
		Role:             requestBody.Role,
		Active:           true,
		EmailVerified:    false,
		VerificationCode: &code,
	}
	if user.Role == "" {
		user.Role = data.RoleReader
	}
	err := user.Password.Set(requestBody.Password)
	if err != nil {
		return nil, err
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err = s.repo.RegisterUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			v.AddError("email", "a user with this email address or national id already exists")
			return nil, s.failedValidation(v.Errors)
		default:
			return nil, err
		}
	}
	// Send verification email in a background goroutine to speed up response time
	s.background(func() {
		mailData := map[string]string{
			"name":             firstName(user.Name),
			"verificationCode": code,
		}
		err := s.notifier.Send(user.Email, "user_verification.tmpl", mailData)
		if err != nil {
			s.logger.PrintError(err, nil)
		}
	})
	return user, nil
}

// VerifyEmail service marks a user's email address verified when the
// presented code matches the stored single-use code.
func (s *service) VerifyEmail(userID int64, code string) (*data.User, error) {
	v := validator.New()
	if v.Check(code != "", "code", "must be provided"); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if user.EmailVerified {
		v.AddError("code", "email address has already been verified")
		return nil, s.failedValidation(v.Errors)
	}
	if user.VerificationCode == nil || *user.VerificationCode != code {
		v.AddError("code", "invalid verification code")
		return nil, s.failedValidation(v.Errors)
	}
	user.EmailVerified = true
	user.VerificationCode = nil
	err = s.repo.UpdateUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return user, nil
}

// GetUser service shows the details of a specific user.
func (s *service) GetUser(userID int64) (*data.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return user, nil
}

// ListUsers service retrieves a paginated list of users. The list can be
// filtered by name and sorted.
func (s *service) ListUsers(name string, filters data.Filters) ([]*data.User, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	users, metadata, err := s.repo.GetAllUsers(name, filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return users, metadata, nil
}

// UpdateUser service updates the details of a specific user.
func (s *service) UpdateUser(userID int64, requestBody dto.UpdateUserRequestBody) (*data.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if requestBody.Name != nil {
		user.Name = *requestBody.Name
	}
	if requestBody.Email != nil {
		user.Email = *requestBody.Email
	}
	if requestBody.Role != nil {
		user.Role = *requestBody.Role
	}
	if requestBody.Password != nil {
		err = user.Password.Set(*requestBody.Password)
		if err != nil {
			return nil, err
		}
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err = s.repo.UpdateUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			v.AddError("email", "a user with this email address already exists")
			return nil, s.failedValidation(v.Errors)
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return user, nil
}

// BlockUser service deactivates a user account, which blocks new loans and
// reservations for them.
func (s *service) BlockUser(userID int64) (*data.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	user.Active = false
	err = s.repo.UpdateUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return user, nil
}

// DeleteUser service deletes a user.
func (s *service) DeleteUser(userID int64) error {
	err := s.repo.DeleteUser(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	return nil
}

// GetUserForToken retrieves the user associated with a token.
func (s *service) GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error) {
	v := validator.New()
	user, err := s.repo.GetUserForToken(tokenScope, tokenPlaintext)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			v.AddError("token", "invalid or expired token")
			return nil, s.failedValidation(v.Errors)
		default:
			return nil, err
		}
	}
	return user, nil
}
