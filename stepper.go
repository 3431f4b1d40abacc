package stastar

import (
	"container/heap"

	"github.com/pdrpinto/stastar/internal"
	"github.com/rs/zerolog"
)

// StepSnapshot exposes the outcome of one pop of the search.
type StepSnapshot struct {
	Current     State
	Expanded    bool    // false when the pop hit the goal, a closed key or a stop condition
	Successors  []State // successors pushed by this step
	Expansions  int
	OpenLen     int
	ClosedLen   int
	Done        bool
	Found       bool
	Termination Termination
	Path        []State
}

// Stepper drives a search one expansion at a time. It is not safe for
// concurrent use; each Stepper owns its arena, open set and closed set.
type Stepper struct {
	cfg  Config
	goal State
	mask ObstacleMask
	log  zerolog.Logger

	arena   []node
	openSet PriorityQueue
	closed  map[Key]struct{}

	expansions  int
	generated   int
	rejected    int
	final       int
	termination Termination
}

// NewStepper seeds a search from start. The start state is not validated.
func NewStepper(p *Planner, start, goal State, mask ObstacleMask) *Stepper {
	s := &Stepper{
		cfg:     p.cfg,
		goal:    goal,
		mask:    mask,
		log:     p.log,
		openSet: make(PriorityQueue, 0),
		closed:  make(map[Key]struct{}),
		final:   noParent,
	}
	heap.Init(&s.openSet)
	s.push(node{state: start, g: 0, h: Heuristic(start, goal), parent: noParent})

	s.log.Debug().
		Float64("start_s", start.S).Float64("start_t", start.T).
		Float64("goal_s", goal.S).Float64("goal_l", goal.L).Float64("goal_t", goal.T).
		Int("s_cells", mask.SCells()).Int("t_cells", mask.TCells()).
		Msg("search started")
	return s
}

func (s *Stepper) push(n node) {
	s.arena = append(s.arena, n)
	heap.Push(&s.openSet, PriorityQueueItem{Node: len(s.arena) - 1, FCost: n.f()})
}

// Step pops the best open node and expands it. Once Done is reported every
// further call returns the final snapshot again.
func (s *Stepper) Step() StepSnapshot {
	if s.termination != Running {
		return s.snapshot(StepSnapshot{})
	}
	if s.openSet.Len() == 0 {
		s.finish(OpenExhausted)
		return s.snapshot(StepSnapshot{})
	}
	if s.expansions >= s.cfg.IterMax {
		s.finish(IterationLimit)
		return s.snapshot(StepSnapshot{})
	}

	s.expansions++
	currentIndex := heap.Pop(&s.openSet).(PriorityQueueItem).Node
	current := s.arena[currentIndex]
	step := StepSnapshot{Current: current.state}

	if s.cfg.AtGoal(current.state, s.goal) {
		s.final = currentIndex
		s.finish(GoalReached)
		return s.snapshot(step)
	}

	key := s.cfg.KeyOf(current.state)
	if _, seen := s.closed[key]; seen {
		return s.snapshot(step)
	}
	s.closed[key] = struct{}{}
	step.Expanded = true

	for _, next := range Successors(s.cfg, current.state) {
		s.generated++
		if !s.cfg.Valid(next, s.mask) {
			s.rejected++
			continue
		}
		if _, seen := s.closed[s.cfg.KeyOf(next)]; seen {
			s.rejected++
			continue
		}
		s.push(node{
			state:  next,
			g:      current.g + StepCost(s.cfg, current.state, next),
			h:      Heuristic(next, s.goal),
			parent: currentIndex,
		})
		step.Successors = append(step.Successors, next)
	}
	return s.snapshot(step)
}

func (s *Stepper) finish(termination Termination) {
	s.termination = termination
	event := s.log.Debug()
	if termination == IterationLimit {
		event = s.log.Warn()
	}
	event = event.Str("termination", termination.String()).
		Int("expansions", s.expansions).
		Int("generated", s.generated).
		Int("open", s.openSet.Len()).
		Int("closed", len(s.closed))
	if termination == GoalReached {
		event = event.Float64("cost", s.arena[s.final].g)
	}
	event.Msg("search finished")
}

func (s *Stepper) snapshot(step StepSnapshot) StepSnapshot {
	step.Expansions = s.expansions
	step.OpenLen = s.openSet.Len()
	step.ClosedLen = len(s.closed)
	step.Termination = s.termination
	step.Done = s.termination != Running
	step.Found = s.termination == GoalReached
	if step.Found {
		step.Path = s.path()
	}
	return step
}

func (s *Stepper) path() []State {
	if s.final == noParent {
		return nil
	}
	indices := internal.ReconstructPath(func(i int) int { return s.arena[i].parent }, s.final)
	path := make([]State, len(indices))
	for i, index := range indices {
		path[i] = s.arena[index].state
	}
	return path
}

// Result summarises the search so far. Path is empty unless the goal was reached.
func (s *Stepper) Result() Result {
	result := Result{
		Found:       s.termination == GoalReached,
		Expansions:  s.expansions,
		Generated:   s.generated,
		Rejected:    s.rejected,
		Termination: s.termination,
	}
	if result.Found {
		result.Path = s.path()
		result.Cost = s.arena[s.final].g
	}
	return result
}
