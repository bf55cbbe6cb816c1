package data

import (
	"strings"
	"time"

	"github.com/antoniovct/api-biblioteca/internal/validator"
)

// Book categories.
const (
	CategoryFiction   = "fiction"
	CategoryRomance   = "romance"
	CategoryDrama     = "drama"
	CategoryHorror    = "horror"
	CategoryAdventure = "adventure"
)

// Categories lists every known book category.
var Categories = []string{CategoryFiction, CategoryRomance, CategoryDrama, CategoryHorror, CategoryAdventure}

// IsCategory reports whether name matches a known category. The match is
// case-insensitive.
func IsCategory(name string) bool {
	return validator.In(strings.ToLower(name), Categories...)
}

// Book defines a book model. Stock counts the copies currently on the shelf.
// The Available flag turns off when the last copy is lent out; it is not
// recomputed on restock (see the book update flow).
type Book struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Category  string    `json:"category"`
	Stock     int       `json:"stock"`
	Available bool      `json:"available"`
	CoverPath string    `json:"cover_path,omitempty"`
	Version   int32     `json:"-"`
}

// RegisterLoan records a copy leaving the shelf. Stock must be positive when
// this is called; the loan eligibility check upstream guarantees it.
func (b *Book) RegisterLoan() {
	b.Stock--
	if b.Stock == 0 {
		b.Available = false
	}
}

// Restock returns n copies to the shelf.
func (b *Book) Restock(n int) {
	b.Stock += n
}

func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(book.Title != "", "title", "must be provided")
	v.Check(len(book.Title) <= 500, "title", "must not be more than 500 bytes long")
	v.Check(book.Author != "", "author", "must be provided")
	v.Check(len(book.Author) <= 500, "author", "must not be more than 500 bytes long")
	v.Check(book.Category != "", "category", "must be provided")
	v.Check(IsCategory(book.Category), "category", "must be one of fiction, romance, drama, horror or adventure")
	v.Check(book.Stock >= 0, "stock", "must not be negative")
}
