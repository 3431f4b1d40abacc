package stastar

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Sampling grid of the motion model.
const (
	VelocitySamples = 5
	HeadingSamples  = 3
)

// Successors samples the reachable states one time step after from.
//
// Speeds are spread evenly over [v - MaxAccel*DT, v + MaxAccel*DT] and
// headings over [theta - MaxSteer, theta + MaxSteer]. Each (speed, heading)
// pair advances the state by a point-mass step of length speed*DT along the
// new heading. No filtering happens here.
func Successors(cfg Config, from State) []State {
	velocities := floats.Span(make([]float64, VelocitySamples),
		from.V-cfg.MaxAccel*cfg.DT, from.V+cfg.MaxAccel*cfg.DT)
	headings := floats.Span(make([]float64, HeadingSamples),
		from.Theta-cfg.MaxSteer, from.Theta+cfg.MaxSteer)

	successors := make([]State, 0, VelocitySamples*HeadingSamples)
	for _, v := range velocities {
		for _, theta := range headings {
			step := v * cfg.DT
			successors = append(successors, State{
				S:     from.S + step*math.Cos(theta),
				L:     from.L + step*math.Sin(theta),
				Theta: theta,
				V:     v,
				T:     from.T + cfg.DT,
			})
		}
	}
	return successors
}
