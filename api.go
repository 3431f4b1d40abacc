package stastar

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid planner config")

// State is a point of the space-time corridor.
type State struct {
	S     float64 `json:"s" yaml:"s"`         // longitudinal position
	L     float64 `json:"l" yaml:"l"`         // lateral offset
	Theta float64 `json:"theta" yaml:"theta"` // heading, radians
	V     float64 `json:"v" yaml:"v"`         // speed
	T     float64 `json:"t" yaml:"t"`         // time
}

func (s State) finite() bool {
	for _, x := range [...]float64{s.S, s.L, s.Theta, s.V, s.T} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Config holds the discretisation steps and motion bounds of a planner.
// It is copied into the Planner and never mutated afterwards.
type Config struct {
	DT       float64 `json:"dt"`        // time step, s
	DS       float64 `json:"ds"`        // space resolution, m
	MinSpeed float64 `json:"min_speed"` // m/s
	MaxSpeed float64 `json:"max_speed"` // m/s
	MaxAccel float64 `json:"max_accel"` // m/s²
	MaxSteer float64 `json:"max_steer"` // heading change per step, rad
	IterMax  int     `json:"iter_max"`  // hard cap on expansions
}

// DefaultConfig returns the stock vehicle and search parameters.
func DefaultConfig() Config {
	return Config{
		DT:       0.1,
		DS:       0.1,
		MinSpeed: 0.0,
		MaxSpeed: 20.0,
		MaxAccel: 2.0,
		MaxSteer: 0.6,
		IterMax:  100000,
	}
}

// Validate reports the first unusable parameter.
func (c Config) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"dt", c.DT}, {"ds", c.DS},
		{"min_speed", c.MinSpeed}, {"max_speed", c.MaxSpeed},
		{"max_accel", c.MaxAccel}, {"max_steer", c.MaxSteer},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, f.name, f.value)
		}
	}
	switch {
	case c.DT <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.DT)
	case c.DS <= 0:
		return fmt.Errorf("%w: ds must be positive, got %g", ErrInvalidConfig, c.DS)
	case c.MaxAccel <= 0:
		return fmt.Errorf("%w: max_accel must be positive, got %g", ErrInvalidConfig, c.MaxAccel)
	case c.MaxSteer <= 0:
		return fmt.Errorf("%w: max_steer must be positive, got %g", ErrInvalidConfig, c.MaxSteer)
	case c.MinSpeed > c.MaxSpeed:
		return fmt.Errorf("%w: min_speed %g exceeds max_speed %g", ErrInvalidConfig, c.MinSpeed, c.MaxSpeed)
	case c.IterMax < 1:
		return fmt.Errorf("%w: iter_max must be at least 1, got %d", ErrInvalidConfig, c.IterMax)
	}
	return nil
}

// Termination tells why a search stopped.
type Termination int

const (
	Running Termination = iota
	GoalReached
	OpenExhausted
	IterationLimit
)

func (t Termination) String() string {
	switch t {
	case Running:
		return "running"
	case GoalReached:
		return "goal_reached"
	case OpenExhausted:
		return "open_exhausted"
	case IterationLimit:
		return "iteration_limit"
	}
	return fmt.Sprintf("termination(%d)", int(t))
}

// MarshalText renders the termination by name in JSON output.
func (t Termination) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText parses a name produced by MarshalText.
func (t *Termination) UnmarshalText(text []byte) error {
	for _, candidate := range []Termination{Running, GoalReached, OpenExhausted, IterationLimit} {
		if candidate.String() == string(text) {
			*t = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown termination %q", text)
}

// Result contains the outcome of a search.
// An empty Path is the normal "no feasible trajectory" outcome.
type Result struct {
	Path        []State
	Found       bool
	Cost        float64
	Expansions  int
	Generated   int
	Rejected    int
	Termination Termination
}

// Observer receives one call per completed search.
// PlanBatch runs searches in parallel, so ObserveSearch may be called
// concurrently and must be safe for concurrent use.
type Observer interface {
	ObserveSearch(result Result, elapsed time.Duration)
}

// Options defines planner parameters that are not part of the search semantics.
type Options struct {
	NumberOfWorkers int
	Logger          zerolog.Logger
	Observer        Observer
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many searches PlanBatch runs at once.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// WithLogger attaches a logger to the planner. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

// WithObserver registers an observer notified after every search.
// The observer must be safe for concurrent use.
func WithObserver(observer Observer) Option {
	return func(options *Options) { options.Observer = observer }
}

// Planner runs space-time searches with a fixed configuration.
type Planner struct {
	cfg      Config
	log      zerolog.Logger
	observer Observer
	workers  int
}

// New validates cfg and builds a Planner.
func New(cfg Config, options ...Option) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plannerOptions := Options{
		NumberOfWorkers: runtime.NumCPU(),
		Logger:          zerolog.Nop(),
	}
	for _, option := range options {
		option(&plannerOptions)
	}
	if plannerOptions.NumberOfWorkers < 1 {
		plannerOptions.NumberOfWorkers = 1
	}

	return &Planner{
		cfg:      cfg,
		log:      plannerOptions.Logger,
		observer: plannerOptions.Observer,
		workers:  plannerOptions.NumberOfWorkers,
	}, nil
}

// Config returns the planner's configuration.
func (p *Planner) Config() Config { return p.cfg }

// Plan searches from start to goal and returns the trajectory, start first.
// It returns an empty slice when no trajectory is found.
func (p *Planner) Plan(start, goal State, mask ObstacleMask) []State {
	return p.Search(start, goal, mask).Path
}

// Search executes one synchronous Hybrid-A* search.
func (p *Planner) Search(start, goal State, mask ObstacleMask) Result {
	began := time.Now()

	stepper := NewStepper(p, start, goal, mask)
	for !stepper.Step().Done {
	}
	result := stepper.Result()

	if p.observer != nil {
		p.observer.ObserveSearch(result, time.Since(began))
	}
	return result
}
