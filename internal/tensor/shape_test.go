package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShape_NumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{5}, 5},
		{Shape{3, 4}, 12},
		{Shape{2, 8, 4, 4, 1}, 256},
		{Shape{3, 0, 2}, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.shape.NumElements(), "shape %v", tt.shape)
	}
}

func TestShape_Validate(t *testing.T) {
	assert.NoError(t, Shape{1, 0, 3}.Validate())
	assert.Error(t, Shape{1, -2, 3}.Validate())
	assert.Error(t, Shape{1 << 62, 4}.Validate())
	assert.NoError(t, Shape{1 << 62, 0, 4}.Validate())

	_, err := NewRaw(Shape{1 << 61, 4}, Float32, CPU)
	assert.Error(t, err)
}

func TestShape_ComputeStrides(t *testing.T) {
	tests := []struct {
		shape Shape
		want  []int
	}{
		{Shape{}, []int{}},
		{Shape{7}, []int{1}},
		{Shape{3, 5, 2}, []int{1, 3, 15}},
		{Shape{12, 8, 16, 16, 2}, []int{1, 12, 96, 1536, 24576}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.shape.ComputeStrides(), "shape %v", tt.shape)
	}
}

func TestShape_EqualCloneReversed(t *testing.T) {
	s := Shape{3, 4, 5}
	c := s.Clone()
	assert.True(t, s.Equal(c))

	c[0] = 9
	assert.False(t, s.Equal(c))
	assert.Equal(t, 3, s[0])

	assert.False(t, s.Equal(Shape{3, 4}))
	assert.Equal(t, Shape{5, 4, 3}, s.Reversed())
}
