package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlipRows(t *testing.T) {
	// Two rows of two RGB pixels with two bytes of stride padding each,
	// stored bottom row first.
	plane := []byte{
		21, 22, 23, 24, 25, 26, 0, 0, // bottom image row
		11, 12, 13, 14, 15, 16, 0, 0, // top image row
	}

	got := flipRows(plane, 8, 6, 2)

	want := []byte{
		11, 12, 13, 14, 15, 16,
		21, 22, 23, 24, 25, 26,
	}
	assert.Equal(t, want, got)
}

func TestFlipRowsNoPadding(t *testing.T) {
	plane := []byte{
		7, 8, 9,
		4, 5, 6,
		1, 2, 3,
	}

	got := flipRows(plane, 3, 3, 3)

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}
