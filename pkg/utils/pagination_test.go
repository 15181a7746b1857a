package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPageOffset(t *testing.T) {
	t.Run("Missing values fall back to defaults", func(t *testing.T) {
		p := Pagination{}
		offset, limit := p.GetPageOffset()

		assert.Equal(t, 0, offset)
		assert.Equal(t, 10, limit)
		assert.Equal(t, 1, p.Page)
	})

	t.Run("Negative values fall back to defaults", func(t *testing.T) {
		p := Pagination{Page: -3, Limit: -1}
		offset, limit := p.GetPageOffset()

		assert.Equal(t, 0, offset)
		assert.Equal(t, 10, limit)
	})

	t.Run("Second page skips one full page", func(t *testing.T) {
		p := Pagination{Page: 2, Limit: 10}
		offset, limit := p.GetPageOffset()

		assert.Equal(t, 10, offset)
		assert.Equal(t, 10, limit)
	})

	t.Run("Limit is capped", func(t *testing.T) {
		p := Pagination{Page: 1, Limit: 5000}
		_, limit := p.GetPageOffset()

		assert.Equal(t, MaxLimit, limit)
	})
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{15, 10, 2},
		{21, 10, 3},
		{7, 3, 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TotalPages(tc.total, tc.limit), "total=%d limit=%d", tc.total, tc.limit)
	}
}
