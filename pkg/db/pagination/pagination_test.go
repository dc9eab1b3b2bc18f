package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 50}, Pagination{}.Normalize())
	assert.Equal(t, Pagination{Page: 3, Limit: 100}, Pagination{Page: 3, Limit: 500}.Normalize())
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Pagination{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, Pagination{Page: -2, Limit: 10}.Offset())
}

func TestBuildPageInfo(t *testing.T) {
	info := BuildPageInfo(Pagination{Page: 2, Limit: 10}, 21)
	assert.Equal(t, PageInfo{Page: 2, Limit: 10, Total: 21, TotalPages: 3}, info)

	empty := BuildPageInfo(Pagination{}, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, 50, empty.Limit)
}
