// Package scenario reads planning problems from YAML and turns them into
// obstacle masks.
//
// A hazard is a block of the (s, t) plane that moves along s at a constant
// speed, which is how a vehicle ahead in the same lane shows up in a
// space-time diagram. ASCII rows can be overlaid for hand-drawn cells.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/pdrpinto/stastar"
	"gopkg.in/yaml.v3"
)

// Cell characters used by Rows.
const (
	FreeCell     = '.'
	OccupiedCell = '#'
)

// Grid is the size of the obstacle mask in cells.
type Grid struct {
	SCells int `yaml:"s_cells"`
	TCells int `yaml:"t_cells"`
}

// Hazard occupies [SMin, SMax) along s during [TMin, TMax), shifted by
// Speed*(t-TMin) as time passes.
type Hazard struct {
	SMin  float64 `yaml:"s_min"`
	SMax  float64 `yaml:"s_max"`
	TMin  float64 `yaml:"t_min"`
	TMax  float64 `yaml:"t_max"`
	Speed float64 `yaml:"speed,omitempty"`
}

// Contains reports whether the point (s, t) is covered by the hazard.
func (h Hazard) Contains(s, t float64) bool {
	if t < h.TMin || t >= h.TMax {
		return false
	}
	shift := h.Speed * (t - h.TMin)
	return s >= h.SMin+shift && s < h.SMax+shift
}

// Scenario is one planning problem.
type Scenario struct {
	Name    string        `yaml:"name"`
	Start   stastar.State `yaml:"start"`
	Goal    stastar.State `yaml:"goal"`
	Grid    Grid          `yaml:"grid"`
	Hazards []Hazard      `yaml:"hazards,omitempty"`
	// Rows[i][j] describes mask cell (s=i, t=j).
	Rows []string `yaml:"rows,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a YAML scenario. When the grid size is
// omitted it is derived from Rows.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	if sc.Grid.SCells == 0 && sc.Grid.TCells == 0 && len(sc.Rows) > 0 {
		sc.Grid.SCells = len(sc.Rows)
		for _, row := range sc.Rows {
			sc.Grid.TCells = max(sc.Grid.TCells, len(row))
		}
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the grid, hazards and rows.
func (sc *Scenario) Validate() error {
	if sc.Grid.SCells <= 0 || sc.Grid.TCells <= 0 {
		return fmt.Errorf("grid must have positive s_cells and t_cells, got %dx%d", sc.Grid.SCells, sc.Grid.TCells)
	}
	for i, h := range sc.Hazards {
		for _, x := range []float64{h.SMin, h.SMax, h.TMin, h.TMax, h.Speed} {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("hazard %d: non-finite bound", i)
			}
		}
		if h.SMax <= h.SMin || h.TMax <= h.TMin {
			return fmt.Errorf("hazard %d: empty extent s=[%g,%g) t=[%g,%g)", i, h.SMin, h.SMax, h.TMin, h.TMax)
		}
	}
	if len(sc.Rows) > sc.Grid.SCells {
		return fmt.Errorf("%d rows exceed s_cells %d", len(sc.Rows), sc.Grid.SCells)
	}
	for i, row := range sc.Rows {
		if len(row) > sc.Grid.TCells {
			return fmt.Errorf("row %d has %d cells, t_cells is %d", i, len(row), sc.Grid.TCells)
		}
		for j, c := range row {
			if c != FreeCell && c != OccupiedCell {
				return fmt.Errorf("row %d cell %d: unexpected %q", i, j, c)
			}
		}
	}
	return nil
}

// Mask rasterises the scenario with the resolution of cfg. A cell is
// occupied when its centre lies inside a hazard or Rows marks it.
func (sc *Scenario) Mask(cfg stastar.Config) (stastar.ObstacleMask, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if cfg.DS <= 0 || cfg.DT <= 0 {
		return nil, errors.New("mask resolution must be positive")
	}

	mask := stastar.NewObstacleMask(sc.Grid.SCells, sc.Grid.TCells)
	for sIdx := 0; sIdx < sc.Grid.SCells; sIdx++ {
		s := (float64(sIdx) + 0.5) * cfg.DS
		for tIdx := 0; tIdx < sc.Grid.TCells; tIdx++ {
			t := (float64(tIdx) + 0.5) * cfg.DT
			for _, h := range sc.Hazards {
				if h.Contains(s, t) {
					mask.Set(sIdx, tIdx, true)
					break
				}
			}
		}
	}
	for sIdx, row := range sc.Rows {
		for tIdx, c := range row {
			if c == OccupiedCell {
				mask.Set(sIdx, tIdx, true)
			}
		}
	}
	return mask, nil
}

// Request bundles the scenario for the planner.
func (sc *Scenario) Request(cfg stastar.Config) (stastar.Request, error) {
	mask, err := sc.Mask(cfg)
	if err != nil {
		return stastar.Request{}, err
	}
	return stastar.Request{Start: sc.Start, Goal: sc.Goal, Mask: mask}, nil
}

// Random grows clusters of occupied cells by random walks. Cells listed in
// keep stay free.
func Random(rng *rand.Rand, sCells, tCells, clusters, steps int, density float64, keep ...[2]int) stastar.ObstacleMask {
	mask := stastar.NewObstacleMask(sCells, tCells)
	if sCells <= 0 || tCells <= 0 {
		return mask
	}
	reserved := make(map[[2]int]bool, len(keep))
	for _, cell := range keep {
		reserved[cell] = true
	}
	directions := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	for c := 0; c < clusters; c++ {
		cell := [2]int{rng.Intn(sCells), rng.Intn(tCells)}
		for s := 0; s < steps; s++ {
			if rng.Float64() < density && !reserved[cell] {
				mask.Set(cell[0], cell[1], true)
			}
			d := directions[rng.Intn(len(directions))]
			next := [2]int{cell[0] + d[0], cell[1] + d[1]}
			if mask.InBounds(next[0], next[1]) {
				cell = next
			}
		}
	}
	return mask
}
