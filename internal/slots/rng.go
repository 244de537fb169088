package slots

const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31
)

// LCG is a linear-congruential generator. It is not safe for concurrent use;
// callers build one per generation run.
type LCG struct {
	state uint64
}

func NewLCG(seed uint32) *LCG {
	return &LCG{state: uint64(seed) % lcgModulus}
}

// Float64 advances the generator and returns a value in [0, 1).
func (g *LCG) Float64() float64 {
	g.state = (g.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(g.state) / lcgModulus
}

// Intn returns a value in [0, n). n must be positive.
func (g *LCG) Intn(n int) int {
	return int(g.Float64() * float64(n))
}

// DateSeed hashes a date string with hash = hash*31 + c over 32-bit signed
// arithmetic and returns the absolute value.
func DateSeed(date string) uint32 {
	var h int32
	for i := 0; i < len(date); i++ {
		h = h*31 + int32(date[i])
	}
	if h < 0 {
		return uint32(-int64(h))
	}
	return uint32(h)
}
