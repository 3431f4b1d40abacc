package stastar

import "math"

// ObstacleMask is a grid of forbidden space-time cells indexed [s cell][t cell].
// Rows are expected to share one length, but every lookup is bounded by the
// length of the row it reads.
type ObstacleMask [][]bool

// NewObstacleMask returns an all-free mask of sCells rows by tCells columns.
func NewObstacleMask(sCells, tCells int) ObstacleMask {
	mask := make(ObstacleMask, max(sCells, 0))
	for i := range mask {
		mask[i] = make([]bool, max(tCells, 0))
	}
	return mask
}

// SCells returns the number of position rows.
func (m ObstacleMask) SCells() int { return len(m) }

// TCells returns the length of the first row, or 0 for an empty mask.
func (m ObstacleMask) TCells() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// InBounds reports whether (sIdx, tIdx) addresses an existing cell.
func (m ObstacleMask) InBounds(sIdx, tIdx int) bool {
	return sIdx >= 0 && sIdx < len(m) && tIdx >= 0 && tIdx < len(m[sIdx])
}

// Occupied reports whether the cell is forbidden. Out-of-bounds cells are
// reported as occupied.
func (m ObstacleMask) Occupied(sIdx, tIdx int) bool {
	if !m.InBounds(sIdx, tIdx) {
		return true
	}
	return m[sIdx][tIdx]
}

// Set marks a cell and reports whether it existed.
func (m ObstacleMask) Set(sIdx, tIdx int, occupied bool) bool {
	if !m.InBounds(sIdx, tIdx) {
		return false
	}
	m[sIdx][tIdx] = occupied
	return true
}

// Cell returns the mask indices of st. ok is false for non-finite coordinates.
func (c Config) Cell(st State) (sIdx, tIdx int, ok bool) {
	if math.IsNaN(st.S) || math.IsInf(st.S, 0) || math.IsNaN(st.T) || math.IsInf(st.T, 0) {
		return 0, 0, false
	}
	return quantize(st.S, c.DS), quantize(st.T, c.DT), true
}

// Valid reports whether st respects the speed bounds and lies on a free,
// in-bounds cell of mask.
func (c Config) Valid(st State, mask ObstacleMask) bool {
	if !st.finite() {
		return false
	}
	if st.V < c.MinSpeed || st.V > c.MaxSpeed {
		return false
	}
	sIdx, tIdx, ok := c.Cell(st)
	if !ok {
		return false
	}
	return !mask.Occupied(sIdx, tIdx)
}
