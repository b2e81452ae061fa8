package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{name: "resource only", key: K("categories"), want: "categories"},
		{name: "scoped", key: K("cart", "guest"), want: "cart:guest"},
		{name: "paged", key: K("products", 2, 10, "", nil), want: "products:2:10::-"},
		{name: "code set", key: K("cart-summary", "u1", []string{"A", "B"}), want: "cart-summary:u1:[A,B]"},
		{name: "bool", key: K("users", true), want: "users:true"},
		{name: "separator in text", key: K("products", "a:b", "c"), want: "products:a%3Ab:c"},
		{name: "escaped list", key: K("cart-summary", "u1", []string{"A,B", "[C]"}), want: "cart-summary:u1:[A%2CB,%5BC%5D]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

func TestKey_HasPrefix(t *testing.T) {
	key := K("products", "all", 1, 10)

	assert.True(t, key.HasPrefix(K("products")))
	assert.True(t, key.HasPrefix(K("products", "all")))
	assert.True(t, key.HasPrefix(key))
	assert.False(t, key.HasPrefix(K("product")))
	assert.False(t, key.HasPrefix(K("products", "deleted")))
	assert.False(t, K("products").HasPrefix(key))
}

func TestKey_PageSizeIsPartOfIdentity(t *testing.T) {
	assert.NotEqual(t, K("products", 1, 10).String(), K("products", 1, 20).String())
}

func TestKey_TypedTextCannotForgeParts(t *testing.T) {
	assert.NotEqual(t, K("products", "shoes:kids", "").String(), K("products", "shoes", "kids:").String())
	assert.NotEqual(t, K("products", "100%3A").String(), K("products", "100:").String())
	assert.False(t, K("products", "all:1").HasPrefix(K("products", "all")))
}
