package service

import (
	"errors"
	"net/http"

	"github.com/antoniovct/api-biblioteca/clients"
	"github.com/antoniovct/api-biblioteca/data"
	"github.com/antoniovct/api-biblioteca/data/dto"
	"github.com/antoniovct/api-biblioteca/internal/validator"
	"github.com/antoniovct/api-biblioteca/repository"
)

type books interface {
	CreateBook(requestBody dto.CreateBookRequestBody) (*data.Book, error)
	GetBook(bookID int64) (*data.Book, error)
	ListBooks(title string, category string, filters data.Filters) ([]*data.Book, data.Metadata, error)
	UpdateBook(bookID int64, requestBody dto.UpdateBookRequestBody) (*data.Book, error)
	UpdateBookCover(bookID int64, r *http.Request) (*data.Book, error)
	DeleteBook(bookID int64) error
}

// CreateBook service creates a new book.
func (s *service) CreateBook(requestBody dto.CreateBookRequestBody) (*data.Book, error) {
	book := &data.Book{
		Title:     requestBody.Title,
		Author:    requestBody.Author,
		Category:  requestBody.Category,
		Stock:     requestBody.Stock,
		Available: requestBody.Stock > 0,
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err := s.repo.CreateBook(book)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook service retrieves the details of a book.
func (s *service) GetBook(bookID int64) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return book, nil
}

// ListBooks service retrieves a list of paginated books. The list can be
// filtered by title and category, and sorted.
func (s *service) ListBooks(title string, category string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	v := validator.New()
	data.ValidateFilters(v, filters)
	if category != "" {
		v.Check(data.IsCategory(category), "category", "must be one of fiction, romance, drama, horror or adventure")
	}
	if !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	books, metadata, err := s.repo.GetAllBooks(title, category, filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return books, metadata, nil
}

// UpdateBook service updates the details of a specific book.
func (s *service) UpdateBook(bookID int64, requestBody dto.UpdateBookRequestBody) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	// Update only fields with new data
	if requestBody.Title != nil {
		book.Title = *requestBody.Title
	}
	if requestBody.Author != nil {
		book.Author = *requestBody.Author
	}
	if requestBody.Category != nil {
		book.Category = *requestBody.Category
	}
	if requestBody.Stock != nil {
		book.Stock = *requestBody.Stock
		book.Available = book.Stock > 0
	}
	if requestBody.Available != nil {
		book.Available = *requestBody.Available
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err = s.repo.UpdateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return book, nil
}

// UpdateBookCover service uploads a cover image for a book and records its
// public URL.
func (s *service) UpdateBookCover(bookID int64, r *http.Request) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	err = r.ParseMultipartForm(5000)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesError):
			return nil, ErrContentTooLarge
		default:
			return nil, ErrBadRequest
		}
	}
	file, fileHeader, err := r.FormFile("cover")
	if err != nil {
		return nil, ErrBadRequest
	}
	defer file.Close()
	buffer, mtype, err := s.detectMimeType(file, fileHeader)
	if err != nil {
		return nil, err
	}
	supportedMediaType := []string{
		"image/jpeg",
		"image/png",
		"image/webp",
	}
	if validMime := validator.Mime(mtype, supportedMediaType...); !validMime {
		return nil, ErrUnsupportedMediaType
	}
	s3Client, err := clients.NewS3Client(s.config)
	if err != nil {
		return nil, err
	}
	coverPath, err := s.uploadCoverToS3(s3Client, buffer, mtype, fileHeader)
	if err != nil {
		return nil, err
	}
	book.CoverPath = coverPath
	err = s.repo.UpdateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return book, nil
}

// DeleteBook service deletes a book.
func (s *service) DeleteBook(bookID int64) error {
	err := s.repo.DeleteBook(bookID)
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
