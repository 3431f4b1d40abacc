package stastar

import "math"

// Heuristic weights. The estimate mixes distance and time while StepCost
// measures control effort, so it is a guide rather than an admissible bound.
const (
	SpatialWeight  = 1.0
	TemporalWeight = 0.5
)

// Heuristic estimates the remaining cost from a state to the goal.
func Heuristic(from, goal State) float64 {
	spatial := math.Hypot(from.S-goal.S, from.L-goal.L)
	temporal := math.Abs(from.T - goal.T)
	return SpatialWeight*spatial + TemporalWeight*temporal
}

// StepCost is the effort of moving from one state to a successor: the
// speed change normalised by MaxAccel plus the heading change normalised by
// MaxSteer, scaled by DT.
func StepCost(cfg Config, from, to State) float64 {
	accel := math.Abs(to.V-from.V) / cfg.MaxAccel
	steer := math.Abs(to.Theta-from.Theta) / cfg.MaxSteer
	return cfg.DT * (accel + steer)
}

// AtGoal reports whether st lies inside the goal box: within DS of the goal
// in s and l and within DT in t.
func (c Config) AtGoal(st, goal State) bool {
	return math.Abs(st.S-goal.S) < c.DS &&
		math.Abs(st.L-goal.L) < c.DS &&
		math.Abs(st.T-goal.T) < c.DT
}
