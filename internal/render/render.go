// Package render draws obstacle masks and planned trajectories with gonum/plot.
// The output format follows the file extension (.png, .svg, .pdf, ...).
package render

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/pdrpinto/stastar"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	obstacleColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	pathColor     = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	goalColor     = color.RGBA{R: 30, G: 140, B: 30, A: 255}
)

// Size of saved figures.
const (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

// STPlot draws occupied cells of mask as squares on a time/position chart
// and overlays path. An empty path draws the mask alone.
func STPlot(mask stastar.ObstacleMask, cfg stastar.Config, path []stastar.State, file string) error {
	p := plot.New()
	p.Title.Text = "Space-time corridor"
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = "s (m)"

	cells := make(plotter.XYs, 0)
	for sIdx, row := range mask {
		for tIdx, occupied := range row {
			if occupied {
				cells = append(cells, plotter.XY{
					X: (float64(tIdx) + 0.5) * cfg.DT,
					Y: (float64(sIdx) + 0.5) * cfg.DS,
				})
			}
		}
	}
	if len(cells) > 0 {
		scatter, err := plotter.NewScatter(cells)
		if err != nil {
			return fmt.Errorf("obstacle scatter: %w", err)
		}
		scatter.GlyphStyle.Shape = draw.BoxGlyph{}
		scatter.GlyphStyle.Color = obstacleColor
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
		p.Legend.Add("occupied", scatter)
	}

	if len(path) > 0 {
		points := make(plotter.XYs, len(path))
		for i, st := range path {
			points[i] = plotter.XY{X: st.T, Y: st.S}
		}
		if err := addPath(p, points); err != nil {
			return err
		}
	}

	p.X.Min = 0
	p.X.Max = float64(mask.TCells()) * cfg.DT
	p.Y.Min = 0
	p.Y.Max = float64(mask.SCells()) * cfg.DS
	return save(p, file)
}

// SLPlot draws the path in the road plane with the goal marked.
func SLPlot(path []stastar.State, goal stastar.State, file string) error {
	if len(path) == 0 {
		return errors.New("nothing to draw: empty path")
	}
	p := plot.New()
	p.Title.Text = "Trajectory"
	p.X.Label.Text = "s (m)"
	p.Y.Label.Text = "l (m)"

	points := make(plotter.XYs, len(path))
	for i, st := range path {
		points[i] = plotter.XY{X: st.S, Y: st.L}
	}
	if err := addPath(p, points); err != nil {
		return err
	}

	target, err := plotter.NewScatter(plotter.XYs{{X: goal.S, Y: goal.L}})
	if err != nil {
		return fmt.Errorf("goal marker: %w", err)
	}
	target.GlyphStyle.Shape = draw.CrossGlyph{}
	target.GlyphStyle.Color = goalColor
	target.GlyphStyle.Radius = vg.Points(5)
	p.Add(target)
	p.Legend.Add("goal", target)

	return save(p, file)
}

func addPath(p *plot.Plot, points plotter.XYs) error {
	line, markers, err := plotter.NewLinePoints(points)
	if err != nil {
		return fmt.Errorf("path line: %w", err)
	}
	line.Color = pathColor
	line.Width = vg.Points(1.5)
	markers.GlyphStyle.Color = pathColor
	markers.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(line, markers)
	p.Legend.Add("path", line, markers)
	return nil
}

func save(p *plot.Plot, file string) error {
	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := p.Save(Width, Height, file); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", file, err)
	}
	return nil
}
