package detection

// Tensor is a dense float32 tensor in row-major order.
//
// Detection models emit shape [1][4+numClasses][numBoxes]: channels 0-3 are
// cx, cy, w, h as fractions of the model input size and the remaining
// channels are per-class scores.
type Tensor struct {
	Shape []int
	Data  []float32
}

// NewTensor wraps data with the given shape. The data is not copied.
func NewTensor(data []float32, shape ...int) Tensor {
	return Tensor{Shape: shape, Data: data}
}

// TensorFromNested flattens a [batch][channel][box] array into a Tensor.
func TensorFromNested(v [][][]float32) (Tensor, error) {
	if len(v) == 0 || len(v[0]) == 0 {
		return Tensor{}, &DecodeError{Reason: "empty tensor"}
	}
	channels, boxes := len(v[0]), len(v[0][0])

	data := make([]float32, 0, len(v)*channels*boxes)
	for b := range v {
		if len(v[b]) != channels {
			return Tensor{}, &DecodeError{Reason: "ragged channel dimension"}
		}
		for c := range v[b] {
			if len(v[b][c]) != boxes {
				return Tensor{}, &DecodeError{Reason: "ragged box dimension"}
			}
			data = append(data, v[b][c]...)
		}
	}
	return NewTensor(data, len(v), channels, boxes), nil
}

// Channels returns the size of the channel dimension.
func (t Tensor) Channels() int {
	if len(t.Shape) < 2 {
		return 0
	}
	return t.Shape[1]
}

// Boxes returns the size of the box dimension.
func (t Tensor) Boxes() int {
	if len(t.Shape) < 3 {
		return 0
	}
	return t.Shape[2]
}

// at reads channel c of box i from the first batch.
func (t Tensor) at(c, i int) float32 {
	return t.Data[c*t.Shape[2]+i]
}

// validate checks that the tensor has the detection layout.
func (t Tensor) validate() error {
	if len(t.Shape) != 3 {
		return &DecodeError{Shape: t.Shape, Reason: "expected 3 dimensions"}
	}
	if t.Shape[0] != 1 {
		return &DecodeError{Shape: t.Shape, Reason: "expected batch size 1"}
	}
	if t.Shape[1] < 5 {
		return &DecodeError{Shape: t.Shape, Reason: "need 4 box channels and at least one class"}
	}
	if t.Shape[2] < 0 {
		return &DecodeError{Shape: t.Shape, Reason: "negative box count"}
	}
	if want := t.Shape[0] * t.Shape[1] * t.Shape[2]; len(t.Data) != want {
		return &DecodeError{Shape: t.Shape, Reason: "data length does not match shape"}
	}
	return nil
}
