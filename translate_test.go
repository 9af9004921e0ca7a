package constraintprop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateLabels(t *testing.T) {
	got, err := TranslateLabels([]int{0, 0, 1, 2, 3, 1}, []int{0, 1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 0, 1, 1}, got)

	got, err = TranslateLabels(nil, []int{0})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTranslateLabels_OutOfRange(t *testing.T) {
	_, err := TranslateLabels([]int{0, 2}, []int{0, 1})
	assert.ErrorIs(t, err, ErrInvalidData)
	_, err = TranslateLabels([]int{-1}, []int{0})
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestDenseLabels_FirstAppearance(t *testing.T) {
	labels, k := denseLabels([]int{7, 7, 3, 9, 3, 7})
	assert.Equal(t, []int{0, 0, 1, 2, 1, 0}, labels)
	assert.Equal(t, 3, k)

	labels, k = denseLabels(nil)
	assert.Empty(t, labels)
	assert.Zero(t, k)
}
