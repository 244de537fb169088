package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLCGSequence(t *testing.T) {
	g := NewLCG(0)
	assert.Equal(t, float64(12345)/float64(1<<31), g.Float64())

	a, b := NewLCG(42), NewLCG(42)
	for i := 0; i < 100; i++ {
		v := a.Float64()
		assert.Equal(t, v, b.Float64())
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestLCGIntn(t *testing.T) {
	g := NewLCG(7)
	for i := 0; i < 200; i++ {
		n := g.Intn(7)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 7)
	}
}

func TestDateSeed(t *testing.T) {
	assert.Equal(t, uint32(274162118), DateSeed("2025-01-28"))
	assert.Equal(t, uint32(274162119), DateSeed("2025-01-29"))
	assert.Equal(t, uint32(0), DateSeed(""))
}
