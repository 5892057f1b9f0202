// Package snow animates the decorative snowfall behind the questionnaire.
//
// A Field is a plain particle simulation: flakes fall, drift sideways, wrap
// around horizontally and start again from the top once they leave the
// bottom. It keeps no state shared with the questionnaire.
package snow

import "math/rand/v2"

// Preset is a named snowfall density.
type Preset struct {
	Count     int
	MaxRadius float64
	MaxSpeed  float64
}

// Presets used by the two kinds of page.
var (
	// Landing is the heavy snowfall on the start page.
	Landing = Preset{Count: 100, MaxRadius: 3.0, MaxSpeed: 2.0}
	// Inner is the lighter snowfall on every other page.
	Inner = Preset{Count: 70, MaxRadius: 1.5, MaxSpeed: 0.8}
)

// Flake is one particle.
type Flake struct {
	X, Y    float64
	Radius  float64
	Speed   float64
	Drift   float64
	Opacity float64
}

// Rand is the random source a Field draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Field is a snowfall over a Width x Height area.
type Field struct {
	Width, Height float64
	Flakes        []Flake

	preset Preset
	rand   Rand
}

// NewField scatters p.Count flakes over the area. r may be nil.
func NewField(width, height float64, p Preset, r Rand) *Field {
	if r == nil {
		r = globalRand{}
	}
	f := &Field{
		Width:  width,
		Height: height,
		Flakes: make([]Flake, p.Count),
		preset: p,
		rand:   r,
	}
	for i := range f.Flakes {
		f.Flakes[i] = f.spawn()
	}
	return f
}

// spawn creates a flake anywhere in the area.
func (f *Field) spawn() Flake {
	return Flake{
		X:       f.rand.Float64() * f.Width,
		Y:       f.rand.Float64() * f.Height,
		Radius:  f.rand.Float64()*f.preset.MaxRadius + 0.5,
		Speed:   f.rand.Float64()*f.preset.MaxSpeed + 0.2,
		Drift:   f.newDrift(),
		Opacity: f.rand.Float64()*0.7 + 0.3,
	}
}

func (f *Field) newDrift() float64 {
	return f.rand.Float64()*0.5 - 0.25
}

// Step advances every flake by one frame. A flake that falls out of the
// bottom comes back just above the top at a new position and drift; one that
// drifts off either side reappears on the other.
func (f *Field) Step() {
	for i := range f.Flakes {
		fl := &f.Flakes[i]
		fl.X += fl.Drift
		fl.Y += fl.Speed

		if fl.Y > f.Height+fl.Radius {
			fl.Y = -fl.Radius
			fl.X = f.rand.Float64() * f.Width
			fl.Drift = f.newDrift()
		}

		switch {
		case fl.X > f.Width+fl.Radius:
			fl.X = -fl.Radius
		case fl.X < -fl.Radius:
			fl.X = f.Width + fl.Radius
		}
	}
}

// Resize changes the area. Flakes outside the new bounds are moved back in.
func (f *Field) Resize(width, height float64) {
	f.Width, f.Height = width, height
	for i := range f.Flakes {
		fl := &f.Flakes[i]
		if fl.X > width+fl.Radius {
			fl.X = f.rand.Float64() * width
		}
		if fl.Y > height+fl.Radius {
			fl.Y = f.rand.Float64() * height
		}
	}
}

// Cell is a flake mapped onto a character grid.
type Cell struct {
	Col, Row int
	Glyph    rune
}

// Cells maps the visible flakes onto a cols x rows grid, one glyph per flake,
// larger flakes getting heavier glyphs. Off-grid flakes are skipped.
func (f *Field) Cells(cols, rows int) []Cell {
	if f.Width <= 0 || f.Height <= 0 || cols <= 0 || rows <= 0 {
		return nil
	}

	cells := make([]Cell, 0, len(f.Flakes))
	for _, fl := range f.Flakes {
		if fl.X < 0 || fl.Y < 0 || fl.X >= f.Width || fl.Y >= f.Height {
			continue
		}
		cells = append(cells, Cell{
			Col:   int(fl.X / f.Width * float64(cols)),
			Row:   int(fl.Y / f.Height * float64(rows)),
			Glyph: f.glyph(fl),
		})
	}
	return cells
}

func (f *Field) glyph(fl Flake) rune {
	switch size := fl.Radius / (f.preset.MaxRadius + 0.5); {
	case size > 0.66:
		return '*'
	case size > 0.33:
		return '+'
	default:
		return '.'
	}
}
