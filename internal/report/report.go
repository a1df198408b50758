// Package report summarizes and plots recorded runs.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"text/tabwriter"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/control"
	v1 "github.com/nath88d/CC7711-Projeto-Robos/internal/storage/memory/export/v1"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoTicks is returned by PlotCommands for an empty run.
var ErrNoTicks = errors.New("run has no ticks")

// Summary is the per-run digest printed by the CLI.
type Summary struct {
	RunID         string
	Ticks         int
	NormalTicks   int
	AlertTicks    int
	Alerted       bool
	AlertTick     uint64
	AlertObject   string
	StuckTicks    int
	Perturbations int

	// NORMAL-mode wheel commands only; ALERT ticks always spin at full speed
	MeanLeft  float64
	MeanRight float64
	StdLeft   float64
	StdRight  float64
}

// Summarize computes a Summary from recorded ticks. The counts come from the
// ticks themselves, not the stored run summary, so a truncated recording
// reports what it actually holds.
func Summarize(data *v1.RunData) Summary {
	s := Summary{
		RunID: data.Run.ID,
		Ticks: len(data.Ticks),
	}

	var left, right []float64
	for _, rec := range data.Ticks {
		if rec.Mode == core.ModeAlert {
			s.AlertTicks++
			if !s.Alerted {
				s.Alerted = true
				s.AlertTick = rec.Tick
			}
			continue
		}
		s.NormalTicks++
		if rec.Stuck {
			s.StuckTicks++
		}
		if rec.Perturbed {
			s.Perturbations++
		}
		left = append(left, rec.Command.Left)
		right = append(right, rec.Command.Right)
	}

	if data.Alert != nil {
		s.Alerted = true
		s.AlertTick = data.Alert.Tick
		s.AlertObject = data.Alert.Object
	}

	if len(left) > 0 {
		s.MeanLeft, s.StdLeft = stat.MeanStdDev(left, nil)
		s.MeanRight, s.StdRight = stat.MeanStdDev(right, nil)
	}
	return s
}

// Write prints the summary as aligned key/value lines.
func (s Summary) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", s.RunID)
	fmt.Fprintf(tw, "ticks\t%d (normal %d, alert %d)\n", s.Ticks, s.NormalTicks, s.AlertTicks)
	if s.Alerted {
		fmt.Fprintf(tw, "alert\ttick %d, object %s\n", s.AlertTick, s.AlertObject)
	} else {
		fmt.Fprintf(tw, "alert\tnone\n")
	}
	fmt.Fprintf(tw, "stuck ticks\t%d\n", s.StuckTicks)
	fmt.Fprintf(tw, "perturbations\t%d\n", s.Perturbations)
	fmt.Fprintf(tw, "left wheel\tmean %.3f, std %.3f rad/s\n", s.MeanLeft, s.StdLeft)
	fmt.Fprintf(tw, "right wheel\tmean %.3f, std %.3f rad/s\n", s.MeanRight, s.StdRight)
	return tw.Flush()
}

var (
	leftColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	rightColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	alertColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// PlotCommands renders left/right wheel commands per tick to path. The
// image format follows the file extension. When the run alerted, a
// vertical line marks the alert tick.
func PlotCommands(data *v1.RunData, path string) error {
	if len(data.Ticks) == 0 {
		return ErrNoTicks
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Wheel commands - %s", data.Run.ID)
	p.X.Label.Text = "Tick"
	p.Y.Label.Text = "Angular velocity (rad/s)"

	leftPts := make(plotter.XYs, 0, len(data.Ticks))
	rightPts := make(plotter.XYs, 0, len(data.Ticks))
	for _, rec := range data.Ticks {
		leftPts = append(leftPts, plotter.XY{X: float64(rec.Tick), Y: rec.Command.Left})
		rightPts = append(rightPts, plotter.XY{X: float64(rec.Tick), Y: rec.Command.Right})
	}

	leftLine, err := plotter.NewLine(leftPts)
	if err != nil {
		return err
	}
	leftLine.Color = leftColor
	leftLine.Width = vg.Points(1)
	p.Add(leftLine)
	p.Legend.Add("left", leftLine)

	rightLine, err := plotter.NewLine(rightPts)
	if err != nil {
		return err
	}
	rightLine.Color = rightColor
	rightLine.Width = vg.Points(1)
	p.Add(rightLine)
	p.Legend.Add("right", rightLine)

	if s := Summarize(data); s.Alerted {
		x := float64(s.AlertTick)
		marker, err := plotter.NewLine(plotter.XYs{
			{X: x, Y: -control.MaxSpeed},
			{X: x, Y: control.MaxSpeed},
		})
		if err != nil {
			return err
		}
		marker.Color = alertColor
		marker.Width = vg.Points(1)
		marker.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(marker)
		p.Legend.Add("alert", marker)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save command plot: %w", err)
	}
	return nil
}
