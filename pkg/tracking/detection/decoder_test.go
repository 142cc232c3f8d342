package detection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawBox is one column of a model output tensor, in normalized units.
type rawBox struct {
	cx, cy, w, h float32
	scores       []float32
}

// buildTensor lays boxes out channel-major as [1][4+numClasses][len(boxes)].
func buildTensor(numClasses int, boxes ...rawBox) Tensor {
	n := len(boxes)
	data := make([]float32, (4+numClasses)*n)
	for i, b := range boxes {
		data[0*n+i] = b.cx
		data[1*n+i] = b.cy
		data[2*n+i] = b.w
		data[3*n+i] = b.h
		for c, s := range b.scores {
			data[(4+c)*n+i] = s
		}
	}
	return NewTensor(data, 1, 4+numClasses, n)
}

func testDecoder(mirror bool) *Decoder {
	cfg := DefaultDecoderConfig()
	cfg.Labels = []string{"car", "face"}
	cfg.Mirror = mirror
	return NewDecoder(cfg)
}

func TestDecode_SingleBox(t *testing.T) {
	tensor := buildTensor(2, rawBox{cx: 0.5, cy: 0.5, w: 0.3, h: 0.3, scores: []float32{0.9, 0.1}})

	dets, err := testDecoder(false).Decode(tensor)
	require.NoError(t, err)
	require.Len(t, dets, 1)

	d := dets[0]
	assert.InDelta(t, 320, d.CenterX, 1e-3)
	assert.InDelta(t, 320, d.CenterY, 1e-3)
	assert.InDelta(t, 192, d.Width, 1e-3)
	assert.InDelta(t, 192, d.Height, 1e-3)
	assert.InDelta(t, 0.9, d.Confidence, 1e-6)
	assert.Equal(t, "car", d.Label)
	assert.False(t, d.Approaching)
}

func TestDecode_SizeFilter(t *testing.T) {
	px := func(v float32) float32 { return v / 640 }

	tests := []struct {
		name string
		w, h float32
		keep bool
	}{
		{"zero width", 0, px(50), false},
		{"negative height", px(50), -0.1, false},
		{"width below floor", px(7), px(50), false},
		{"height below floor", px(50), px(7.9), false},
		{"exactly at floor", px(8), px(8), true},
		{"comfortably sized", px(40), px(40), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tensor := buildTensor(2, rawBox{cx: 0.5, cy: 0.5, w: tc.w, h: tc.h, scores: []float32{0.95, 0}})
			dets, err := testDecoder(false).Decode(tensor)
			require.NoError(t, err)
			if tc.keep {
				assert.Len(t, dets, 1)
			} else {
				assert.Empty(t, dets)
			}
		})
	}
}

func TestDecode_ConfidenceGate(t *testing.T) {
	tests := []struct {
		name  string
		score float32
		keep  bool
	}{
		{"well below", 0.3, false},
		{"just below", 0.599, false},
		{"at threshold", 0.6, true},
		{"above", 0.61, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tensor := buildTensor(2, rawBox{cx: 0.5, cy: 0.5, w: 0.2, h: 0.2, scores: []float32{0.01, tc.score}})
			dets, err := testDecoder(false).Decode(tensor)
			require.NoError(t, err)
			if tc.keep {
				require.Len(t, dets, 1)
				assert.Equal(t, "face", dets[0].Label)
			} else {
				assert.Empty(t, dets)
			}
		})
	}
}

func TestDecode_Mirror(t *testing.T) {
	tensor := buildTensor(2, rawBox{cx: 100.0 / 640, cy: 0.5, w: 0.1, h: 0.1, scores: []float32{0.8, 0}})

	mirrored, err := testDecoder(true).Decode(tensor)
	require.NoError(t, err)
	require.Len(t, mirrored, 1)
	assert.InDelta(t, 540, mirrored[0].CenterX, 1e-3)

	plain, err := testDecoder(false).Decode(tensor)
	require.NoError(t, err)
	require.Len(t, plain, 1)
	assert.InDelta(t, 100, plain[0].CenterX, 1e-3)

	assert.Equal(t, plain[0].ID, mirrored[0].ID, "id derives from the unmirrored center")
}

func TestDecode_UnknownLabel(t *testing.T) {
	tensor := buildTensor(3, rawBox{cx: 0.5, cy: 0.5, w: 0.2, h: 0.2, scores: []float32{0.1, 0.2, 0.9}})

	dets, err := testDecoder(false).Decode(tensor)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, UnknownLabel, dets[0].Label)
}

func TestDecode_StableIDs(t *testing.T) {
	a := buildTensor(2, rawBox{cx: 0.5, cy: 0.5, w: 0.2, h: 0.2, scores: []float32{0.9, 0}})
	moved := buildTensor(2, rawBox{cx: 0.6, cy: 0.5, w: 0.2, h: 0.2, scores: []float32{0.9, 0}})
	otherClass := buildTensor(2, rawBox{cx: 0.5, cy: 0.5, w: 0.2, h: 0.2, scores: []float32{0, 0.9}})

	dec := testDecoder(false)
	first, _ := dec.Decode(a)
	again, _ := dec.Decode(a)
	shifted, _ := dec.Decode(moved)
	relabeled, _ := dec.Decode(otherClass)

	assert.Equal(t, first[0].ID, again[0].ID)
	assert.NotEqual(t, first[0].ID, shifted[0].ID)
	assert.NotEqual(t, first[0].ID, relabeled[0].ID)
}

func TestDecode_MalformedTensor(t *testing.T) {
	tests := []struct {
		name   string
		tensor Tensor
	}{
		{"two dimensions", NewTensor(make([]float32, 12), 6, 2)},
		{"batch of two", NewTensor(make([]float32, 24), 2, 6, 2)},
		{"no class channels", NewTensor(make([]float32, 8), 1, 4, 2)},
		{"short data", NewTensor(make([]float32, 5), 1, 6, 2)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := testDecoder(false).Decode(tc.tensor)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedTensor))

			var decErr *DecodeError
			assert.True(t, errors.As(err, &decErr))
		})
	}
}

func TestTensorFromNested(t *testing.T) {
	nested := [][][]float32{{
		{0.5}, {0.5}, {0.3}, {0.3}, {0.9}, {0.1},
	}}

	tensor, err := TensorFromNested(nested)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 6, 1}, tensor.Shape)
	assert.Equal(t, 6, tensor.Channels())
	assert.Equal(t, 1, tensor.Boxes())

	_, err = TensorFromNested([][][]float32{{{1, 2}, {3}}})
	assert.ErrorIs(t, err, ErrMalformedTensor)
}
