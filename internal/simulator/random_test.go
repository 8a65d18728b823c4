package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fixedRand 依次返回预设值，用完后重复最后一个
type fixedRand struct {
	values []float64
	i      int
}

func (f *fixedRand) Float64() float64 {
	if len(f.values) == 0 {
		return 0
	}
	v := f.values[f.i]
	if f.i < len(f.values)-1 {
		f.i++
	}
	return v
}

func TestWeightedChoice_Distribution(t *testing.T) {
	rnd := NewRand(7)
	items := []Weighted[string]{{Value: "A", Weight: 60}, {Value: "B", Weight: 40}}

	const draws = 100000
	countA := 0
	for i := 0; i < draws; i++ {
		if WeightedChoice(rnd, items) == "A" {
			countA++
		}
	}
	assert.InDelta(t, 0.60, float64(countA)/draws, 0.02)
}

func TestWeightedChoice_CumulativeOrder(t *testing.T) {
	items := []Weighted[int]{{Value: 1, Weight: 10}, {Value: 2, Weight: 30}, {Value: 3, Weight: 60}}

	// total = 100
	assert.Equal(t, 1, WeightedChoice[int](&fixedRand{values: []float64{0}}, items))
	assert.Equal(t, 1, WeightedChoice[int](&fixedRand{values: []float64{0.095}}, items))
	assert.Equal(t, 2, WeightedChoice[int](&fixedRand{values: []float64{0.11}}, items))
	assert.Equal(t, 2, WeightedChoice[int](&fixedRand{values: []float64{0.39}}, items))
	assert.Equal(t, 3, WeightedChoice[int](&fixedRand{values: []float64{0.41}}, items))
	assert.Equal(t, 3, WeightedChoice[int](&fixedRand{values: []float64{0.9999}}, items))
}

func TestWeightedChoice_Empty(t *testing.T) {
	assert.Equal(t, "", WeightedChoice[string](NewRand(1), nil))
}

func TestUniform(t *testing.T) {
	assert.Equal(t, 5.0, uniform(&fixedRand{values: []float64{0.5}}, 0, 10))
	assert.Equal(t, 3.0, uniform(&fixedRand{values: []float64{0.9}}, 4, 2))
}
