package stastar

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func newTestPlanner(t *testing.T, mutate func(*Config), options ...Option) *Planner {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	planner, err := New(cfg, options...)
	require.NoError(t, err)
	return planner
}

// assertTrajectory checks the goal box, time continuity, dynamic feasibility
// and obstacle avoidance of a returned path.
func assertTrajectory(t *testing.T, cfg Config, path []State, goal State, mask ObstacleMask) {
	t.Helper()
	require.NotEmpty(t, path)
	assert.True(t, cfg.AtGoal(path[len(path)-1], goal), "last state %+v outside goal box", path[len(path)-1])

	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		assert.InDelta(t, cfg.DT, b.T-a.T, tolerance, "time step %d", i)
		assert.GreaterOrEqual(t, b.V, cfg.MinSpeed)
		assert.LessOrEqual(t, b.V, cfg.MaxSpeed)
		assert.LessOrEqual(t, math.Abs(b.V-a.V), cfg.MaxAccel*cfg.DT+tolerance, "speed jump at %d", i)
		assert.LessOrEqual(t, math.Abs(b.Theta-a.Theta), cfg.MaxSteer+tolerance, "heading jump at %d", i)
	}
	// The start is taken as given and may sit on an occupied cell.
	for i := 1; i < len(path); i++ {
		st := path[i]
		sIdx, tIdx, ok := cfg.Cell(st)
		require.True(t, ok)
		assert.False(t, mask.Occupied(sIdx, tIdx), "state %d on occupied cell (%d,%d)", i, sIdx, tIdx)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cases := map[string]func(*Config){
		"zero dt":            func(c *Config) { c.DT = 0 },
		"negative ds":        func(c *Config) { c.DS = -0.1 },
		"zero accel":         func(c *Config) { c.MaxAccel = 0 },
		"zero steer":         func(c *Config) { c.MaxSteer = 0 },
		"inverted speeds":    func(c *Config) { c.MinSpeed, c.MaxSpeed = 5, 1 },
		"zero iterations":    func(c *Config) { c.IterMax = 0 },
		"nan max speed":      func(c *Config) { c.MaxSpeed = math.NaN() },
		"infinite time step": func(c *Config) { c.DT = math.Inf(1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			_, err := New(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	assert.Equal(t, 100000, DefaultConfig().IterMax)
}

func TestPlan_TrivialAdjacency(t *testing.T) {
	planner := newTestPlanner(t, nil)
	start := State{S: 0, L: 0, Theta: 0, V: 5, T: 0}
	goal := State{S: 0.5, L: 0, Theta: 0, V: 5, T: 0.1}
	mask := NewObstacleMask(20, 10)

	path := planner.Plan(start, goal, mask)

	require.Len(t, path, 2)
	assert.Equal(t, start, path[0])
	assert.InDelta(t, 0.1, path[1].T, tolerance)
	assert.Less(t, math.Abs(path[1].S-goal.S), planner.Config().DS)
	assertTrajectory(t, planner.Config(), path, goal, mask)
}

func TestPlan_StartIsNotValidityChecked(t *testing.T) {
	planner := newTestPlanner(t, nil)
	cases := map[string]struct {
		start State
		goal  State
		mask  func() ObstacleMask
	}{
		"occupied start cell": {
			start: State{V: 5},
			goal:  State{S: 0.5, V: 5, T: 0.1},
			mask: func() ObstacleMask {
				mask := NewObstacleMask(20, 10)
				mask.Set(0, 0, true)
				return mask
			},
		},
		"start outside the mask": {
			start: State{S: -0.05, V: 5},
			goal:  State{S: 0.45, V: 5, T: 0.1},
			mask:  func() ObstacleMask { return NewObstacleMask(20, 10) },
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mask := tc.mask()
			require.False(t, planner.Config().Valid(tc.start, mask))

			result := planner.Search(tc.start, tc.goal, mask)

			require.True(t, result.Found)
			require.Len(t, result.Path, 2)
			assert.Equal(t, tc.start, result.Path[0])
			assert.Equal(t, GoalReached, result.Termination)
			assertTrajectory(t, planner.Config(), result.Path, tc.goal, mask)
		})
	}
}

func TestPlan_UnreachableGoal(t *testing.T) {
	planner := newTestPlanner(t, nil)
	start := State{S: 0, L: 0, Theta: 0, V: 5, T: 0}
	goal := State{S: 0.5, L: 0, Theta: 0, V: 5, T: 0.1}
	mask := NewObstacleMask(20, 10)
	for sIdx := range mask {
		mask.Set(sIdx, 1, true)
	}

	result := planner.Search(start, goal, mask)

	assert.Empty(t, result.Path)
	assert.False(t, result.Found)
	assert.Equal(t, OpenExhausted, result.Termination)
	assert.Equal(t, 1, result.Expansions)
	assert.Equal(t, VelocitySamples*HeadingSamples, result.Generated)
	assert.Equal(t, result.Generated, result.Rejected)
}

func TestPlan_TwoStepsAroundBlockedCell(t *testing.T) {
	planner := newTestPlanner(t, nil)
	start := State{S: 0, L: 0, Theta: 0, V: 5, T: 0}
	goal := State{S: 1.0, L: 0, Theta: 0, V: 5, T: 0.2}
	mask := NewObstacleMask(30, 10)
	mask.Set(5, 1, true)

	result := planner.Search(start, goal, mask)

	require.True(t, result.Found)
	require.Len(t, result.Path, 3)
	assert.Equal(t, GoalReached, result.Termination)
	assert.Greater(t, result.Cost, 0.0)
	assertTrajectory(t, planner.Config(), result.Path, goal, mask)
}

func TestPlan_SpeedBoundRejection(t *testing.T) {
	planner := newTestPlanner(t, func(c *Config) { c.MaxSpeed = 4.95 })
	start := State{S: 0, L: 0, Theta: 0, V: 5, T: 0}
	goal := State{S: 0.49, L: 0, Theta: 0, V: 4.9, T: 0.1}
	mask := NewObstacleMask(20, 10)

	stepper := NewStepper(planner, start, goal, mask)
	var snapshot StepSnapshot
	for !snapshot.Done {
		snapshot = stepper.Step()
		for _, pushed := range snapshot.Successors {
			assert.LessOrEqual(t, pushed.V, 4.95)
		}
	}

	require.True(t, snapshot.Found)
	for _, st := range snapshot.Path[1:] {
		assert.LessOrEqual(t, st.V, 4.95)
	}
}

func TestPlan_IterationCap(t *testing.T) {
	planner := newTestPlanner(t, func(c *Config) { c.IterMax = 1 })
	start := State{S: 0, L: 0, Theta: 0, V: 5, T: 0}
	goal := State{S: 5, L: 0, Theta: 0, V: 5, T: 1}

	result := planner.Search(start, goal, NewObstacleMask(100, 20))

	assert.Empty(t, result.Path)
	assert.Equal(t, IterationLimit, result.Termination)
	assert.Equal(t, 1, result.Expansions)
}

func TestPlan_IterationCapWithStartAtGoal(t *testing.T) {
	planner := newTestPlanner(t, func(c *Config) { c.IterMax = 1 })
	start := State{S: 1, L: 0, Theta: 0, V: 5, T: 0.2}

	path := planner.Plan(start, start, NewObstacleMask(20, 10))

	require.Len(t, path, 1)
	assert.Equal(t, start, path[0])
}

func TestPlan_ExpansionsNeverExceedCap(t *testing.T) {
	start := State{S: 0, L: 0, Theta: 0, V: 5, T: 0}
	goal := State{S: 1000, L: 0, Theta: 0, V: 5, T: 100}
	mask := NewObstacleMask(200, 100)

	for _, limit := range []int{1, 2, 10, 50} {
		planner := newTestPlanner(t, func(c *Config) { c.IterMax = limit })
		result := planner.Search(start, goal, mask)
		assert.Equal(t, limit, result.Expansions)
		assert.Equal(t, IterationLimit, result.Termination)
		assert.Empty(t, result.Path)
	}
}

func TestPlan_EmptyMask(t *testing.T) {
	planner := newTestPlanner(t, nil)
	start := State{S: 0, L: 0, Theta: 0, V: 5, T: 0}
	goal := State{S: 0.5, L: 0, Theta: 0, V: 5, T: 0.1}

	assert.NotPanics(t, func() {
		result := planner.Search(start, goal, nil)
		assert.Empty(t, result.Path)
		assert.Equal(t, OpenExhausted, result.Termination)
	})
}

func TestPlan_RaggedMaskDoesNotPanic(t *testing.T) {
	planner := newTestPlanner(t, nil)
	start := State{S: 0, L: 0, Theta: 0, V: 5, T: 0}
	goal := State{S: 2, L: 0, Theta: 0, V: 5, T: 0.4}
	mask := ObstacleMask{
		make([]bool, 10), make([]bool, 10), make([]bool, 10),
		make([]bool, 10), make([]bool, 2), make([]bool, 0),
		make([]bool, 10),
	}

	assert.NotPanics(t, func() { planner.Search(start, goal, mask) })
}

func TestPlan_Deterministic(t *testing.T) {
	planner := newTestPlanner(t, func(c *Config) { c.IterMax = 5000 })
	start := State{S: 0, L: 0, Theta: 0, V: 4, T: 0}
	goal := State{S: 2.0, L: 0.2, Theta: 0, V: 4, T: 0.5}
	mask := NewObstacleMask(40, 12)
	for tIdx := 2; tIdx < 4; tIdx++ {
		for sIdx := 8; sIdx < 11; sIdx++ {
			mask.Set(sIdx, tIdx, true)
		}
	}

	first := planner.Search(start, goal, mask)
	for i := 0; i < 3; i++ {
		again := planner.Search(start, goal, mask)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("search %d differs (-first +again):\n%s", i, diff)
		}
	}
	if first.Found {
		assertTrajectory(t, planner.Config(), first.Path, goal, mask)
	}
}

type recordingObserver struct {
	results []Result
}

func (o *recordingObserver) ObserveSearch(result Result, _ time.Duration) {
	o.results = append(o.results, result)
}

func TestSearch_NotifiesObserver(t *testing.T) {
	observer := &recordingObserver{}
	planner := newTestPlanner(t, nil, WithObserver(observer))
	start := State{S: 0, L: 0, Theta: 0, V: 5, T: 0}
	goal := State{S: 0.5, L: 0, Theta: 0, V: 5, T: 0.1}

	planner.Search(start, goal, NewObstacleMask(20, 10))
	planner.Search(start, goal, nil)

	require.Len(t, observer.results, 2)
	assert.Equal(t, GoalReached, observer.results[0].Termination)
	assert.Equal(t, OpenExhausted, observer.results[1].Termination)
}

func TestSearch_LogsIterationLimitAsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.WarnLevel)
	planner := newTestPlanner(t, func(c *Config) { c.IterMax = 3 }, WithLogger(logger))

	planner.Search(State{V: 5}, State{S: 100, T: 10}, NewObstacleMask(100, 100))

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"termination":"iteration_limit"`)
	assert.Contains(t, out, `"expansions":3`)
}

func TestSearch_LogsCostOnGoal(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	planner := newTestPlanner(t, nil, WithLogger(logger))

	result := planner.Search(State{V: 5}, State{S: 1.0, V: 5, T: 0.2}, NewObstacleMask(30, 10))
	require.True(t, result.Found)

	out := buf.String()
	assert.Contains(t, out, `"termination":"goal_reached"`)
	assert.Contains(t, out, `"cost":`)
}

func TestTermination_MarshalText(t *testing.T) {
	text, err := IterationLimit.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "iteration_limit", string(text))
	assert.Equal(t, "termination(42)", Termination(42).String())

	var parsed Termination
	require.NoError(t, parsed.UnmarshalText([]byte("open_exhausted")))
	assert.Equal(t, OpenExhausted, parsed)
	assert.Error(t, parsed.UnmarshalText([]byte("gave_up")))
}
