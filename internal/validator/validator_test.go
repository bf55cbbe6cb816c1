package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	v := New()
	assert.True(t, v.Valid())

	v.Check(true, "title", "must be provided")
	assert.True(t, v.Valid())

	v.Check(false, "title", "must be provided")
	assert.False(t, v.Valid())
	assert.Equal(t, "must be provided", v.Errors["title"])

	// The first message for a key wins.
	v.AddError("title", "another message")
	assert.Equal(t, "must be provided", v.Errors["title"])
}

func TestIn(t *testing.T) {
	assert.True(t, In("active", "pending", "active", "finalized"))
	assert.False(t, In("cancelled", "pending", "active", "finalized"))
	assert.False(t, In("active"))
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("reader@example.com", EmailRX))
	assert.False(t, Matches("not-an-email", EmailRX))
}

func TestUnique(t *testing.T) {
	assert.True(t, Unique([]string{"fiction", "drama"}))
	assert.False(t, Unique([]string{"fiction", "fiction"}))
}
