package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitName(t *testing.T) {
	t.Run("first and last", func(t *testing.T) {
		first, last := SplitName("Ada Lovelace")
		require.NotNil(t, first)
		require.NotNil(t, last)
		assert.Equal(t, "Ada", *first)
		assert.Equal(t, "Lovelace", *last)
	})

	t.Run("single token", func(t *testing.T) {
		first, last := SplitName("Ada")
		require.NotNil(t, first)
		assert.Equal(t, "Ada", *first)
		assert.Nil(t, last)
	})

	t.Run("multi-part last name", func(t *testing.T) {
		first, last := SplitName("Ludwig van Beethoven")
		require.NotNil(t, first)
		require.NotNil(t, last)
		assert.Equal(t, "Ludwig", *first)
		assert.Equal(t, "van Beethoven", *last)
	})

	t.Run("empty", func(t *testing.T) {
		first, last := SplitName("   ")
		assert.Nil(t, first)
		assert.Nil(t, last)
	})
}

func TestHasUsableEmail(t *testing.T) {
	assert.True(t, HasUsableEmail("a@x.com"))
	assert.True(t, HasUsableEmail("weird@"))
	assert.False(t, HasUsableEmail(""))
	assert.False(t, HasUsableEmail("no-at-sign"))
}

func TestContactValidate(t *testing.T) {
	c := &Contact{Email: "a@x.com", UserID: "u-1"}
	assert.NoError(t, c.Validate())

	c = &Contact{Email: "", UserID: "u-1"}
	assert.Error(t, c.Validate())

	c = &Contact{Email: "not-an-email", UserID: "u-1"}
	assert.Error(t, c.Validate())

	c = &Contact{Email: "a@x.com"}
	assert.Error(t, c.Validate())
}
