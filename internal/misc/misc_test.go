package misc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMin(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 1, Min(2, 1))
	assert.Equal(t, -3, Min(-3, 0))
	assert.Equal(t, "a", Min("a", "b"))
}

func TestStringLimit(t *testing.T) {
	assert.Equal(t, "", StringLimit("hello", -1))
	assert.Equal(t, "he", StringLimit("hello", 2))
	assert.Equal(t, "hello", StringLimit("hello", 5))
	assert.Equal(t, "hello", StringLimit("hello", 100))
	assert.Equal(t, "hello w...", StringLimit("hello world long", 10))
}

func TestBytesLimit(t *testing.T) {
	assert.Nil(t, BytesLimit([]byte("hello"), -1))
	assert.Equal(t, []byte("he"), BytesLimit([]byte("hello"), 2))
	assert.Equal(t, []byte("hello"), BytesLimit([]byte("hello"), 100))
	assert.Equal(t, []byte("hello w..."), BytesLimit([]byte("hello world long"), 10))
}
