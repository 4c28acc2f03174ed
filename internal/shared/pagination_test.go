package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageMeta(t *testing.T) {
	meta := NewPageMeta(2, 10, 35)
	assert.Equal(t, 35, meta.Total)
	assert.Equal(t, 4, meta.LastPage)
	assert.Equal(t, 2, meta.CurrentPage)
	if assert.NotNil(t, meta.Prev) {
		assert.Equal(t, 1, *meta.Prev)
	}
	if assert.NotNil(t, meta.Next) {
		assert.Equal(t, 3, *meta.Next)
	}
}

func TestNewPageMetaBounds(t *testing.T) {
	meta := NewPageMeta(0, 0, 0)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, DefaultPerPage, meta.PerPage)
	assert.Equal(t, 1, meta.LastPage)
	assert.Nil(t, meta.Prev)
	assert.Nil(t, meta.Next)

	meta = NewPageMeta(1, 500, 50)
	assert.Equal(t, MaxPerPage, meta.PerPage)
}

func TestNewPageMetaLastPageHasNoNext(t *testing.T) {
	meta := NewPageMeta(4, 10, 35)
	assert.Nil(t, meta.Next)
	if assert.NotNil(t, meta.Prev) {
		assert.Equal(t, 3, *meta.Prev)
	}
}
