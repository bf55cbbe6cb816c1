package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookRegisterLoan(t *testing.T) {
	book := &Book{Stock: 2, Available: true}

	book.RegisterLoan()
	assert.Equal(t, 1, book.Stock)
	assert.True(t, book.Available)

	book.RegisterLoan()
	assert.Equal(t, 0, book.Stock)
	assert.False(t, book.Available)
}

func TestBookRestock(t *testing.T) {
	// Restocking does not flip the availability flag; the catalog update flow
	// owns it.
	book := &Book{Stock: 0, Available: false}

	book.Restock(1)

	assert.Equal(t, 1, book.Stock)
	assert.False(t, book.Available)
}

func TestIsCategory(t *testing.T) {
	assert.True(t, IsCategory("fiction"))
	assert.True(t, IsCategory("Horror"))
	assert.False(t, IsCategory("poetry"))
}
