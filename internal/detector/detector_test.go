package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDetections(t *testing.T) {
	labels := map[int]string{0: "stop", 1: "yield"}
	raw := []float32{
		10, 20, 110, 120, 0.91, 0,
		5.7, 6.2, 50.9, 60.1, 0.5, 1,
		0, 0, 1, 1, 0.3, 7,
		1, 2, 3, // partial row
	}

	boxes := ParseDetections(raw, labels)
	require.Len(t, boxes, 3)

	assert.Equal(t, 10, boxes[0].X1)
	assert.Equal(t, 20, boxes[0].Y1)
	assert.Equal(t, 110, boxes[0].X2)
	assert.Equal(t, 120, boxes[0].Y2)
	assert.Equal(t, "stop", boxes[0].Label)
	assert.Equal(t, "stop: 0.91", boxes[0].Caption())

	// coordinates truncate toward zero
	assert.Equal(t, 5, boxes[1].X1)
	assert.Equal(t, 50, boxes[1].X2)
	assert.Equal(t, "yield", boxes[1].Label)

	assert.Equal(t, 7, boxes[2].ClassId)
	assert.Equal(t, "class_7", boxes[2].Label)
}

func TestParseDetectionsEmpty(t *testing.T) {
	assert.Empty(t, ParseDetections(nil, nil))
	assert.Empty(t, ParseDetections([]float32{1, 2, 3, 4, 5}, nil))
}
