package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name           string
		page, size     int
		wantPage, want int
	}{
		{"defaults", 0, 0, 1, 12},
		{"negative page", -3, 5, 1, 5},
		{"clamped", 2, 1000, 2, 100},
		{"at max", 1, 100, 1, 100},
		{"huge page", math.MaxInt, 100, MaxPage, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.size, 12, 100)
			assert.Equal(t, tc.wantPage, p.Page)
			assert.Equal(t, tc.want, p.PageSize)
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	p := NewPagination(3, 12, 12, 100)
	assert.Equal(t, 24, p.Offset())
	assert.Equal(t, 12, p.Limit())
}

func TestPaginationOffsetNeverOverflows(t *testing.T) {
	p := NewPagination(math.MaxInt, 100, 12, 100)
	assert.Equal(t, (MaxPage-1)*100, p.Offset())

	p = NewPagination(math.MaxInt, math.MaxInt, 12, 0)
	assert.Equal(t, 2, p.Page)
	assert.GreaterOrEqual(t, p.Offset(), 0)
}
