package event

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		want       PageRequest
	}{
		{"defaults", 0, 0, PageRequest{Page: 0, Size: DefaultPageSize}},
		{"explicit values", 3, 10, PageRequest{Page: 3, Size: 10}},
		{"negative page", -1, 10, PageRequest{Page: 0, Size: 10}},
		{"negative size", 0, -5, PageRequest{Page: 0, Size: DefaultPageSize}},
		{"size capped", 0, 1000, PageRequest{Page: 0, Size: MaxPageSize}},
		{"page capped", math.MaxInt, MaxPageSize, PageRequest{Page: MaxPage, Size: MaxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPageRequest(tt.page, tt.size))
		})
	}
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, NewPageRequest(0, 20).Offset())
	assert.Equal(t, 40, NewPageRequest(2, 20).Offset())

	t.Run("largest page does not overflow", func(t *testing.T) {
		offset := NewPageRequest(100000000000000000, MaxPageSize).Offset()
		assert.Positive(t, offset)
		assert.Equal(t, MaxPage*MaxPageSize, offset)
	})

	t.Run("saturates for unclamped requests", func(t *testing.T) {
		assert.Equal(t, math.MaxInt, PageRequest{Page: math.MaxInt / 2, Size: 100}.Offset())
	})
}

func TestPage_Metadata(t *testing.T) {
	p := &Page{Total: 45, Request: NewPageRequest(0, 20)}
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.IsFirst())
	assert.False(t, p.IsLast())

	p.Request = NewPageRequest(2, 20)
	assert.False(t, p.IsFirst())
	assert.True(t, p.IsLast())

	empty := &Page{Total: 0, Request: NewPageRequest(0, 20)}
	assert.Equal(t, 0, empty.TotalPages())
	assert.True(t, empty.IsLast())
}

func TestSortForListing(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	events := []*Event{
		{ID: "c", Details: Details{StartAt: t2}},
		{ID: "b", Details: Details{StartAt: t1}},
		{ID: "a", Details: Details{StartAt: t1}},
	}

	SortForListing(events)

	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, "b", events[1].ID)
	assert.Equal(t, "c", events[2].ID)
}
