package dtos

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{}
	q.Normalize(0)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Equal(t, 0, q.Offset())

	q = ListQuery{Page: 3, PageSize: 500}
	q.Normalize(25)
	assert.Equal(t, MaxPageSize, q.PageSize)
	assert.Equal(t, 200, q.Offset())

	q = ListQuery{Page: -2}
	q.Normalize(25)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 25, q.PageSize)
}

func TestListQueryNormalizeClampsHugePage(t *testing.T) {
	q := ListQuery{Page: math.MaxInt, PageSize: 100}
	q.Normalize(10)
	assert.Positive(t, q.Offset())
	assert.LessOrEqual(t, q.Offset(), MaxOffset)
	assert.Equal(t, MaxOffset/100+1, q.Page)
}
