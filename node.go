package stastar

import "math"

// noParent marks the root of the arena.
const noParent = -1

// maxIndex bounds quantised coordinates so the int conversion stays defined.
const maxIndex = math.MaxInt32

// node is an arena entry. It is never modified after being pushed.
type node struct {
	state  State
	g      float64
	h      float64
	parent int
}

func (n node) f() float64 { return n.g + n.h }

// Key is the quantised form of a State used for visitation bookkeeping.
type Key struct {
	S, L, T, V, Theta int
}

// KeyOf discretises st: position by DS, time by DT, speed by MaxAccel*DT
// and heading by MaxSteer*DT.
func (c Config) KeyOf(st State) Key {
	return Key{
		S:     quantize(st.S, c.DS),
		L:     quantize(st.L, c.DS),
		T:     quantize(st.T, c.DT),
		V:     quantize(st.V, c.MaxAccel*c.DT),
		Theta: quantize(st.Theta, c.MaxSteer*c.DT),
	}
}

func quantize(x, resolution float64) int {
	q := math.Floor(x / resolution)
	switch {
	case math.IsNaN(q):
		return 0
	case q > maxIndex:
		return maxIndex
	case q < -maxIndex:
		return -maxIndex
	}
	return int(q)
}
