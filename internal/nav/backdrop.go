package nav

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Backdrop maps continuous progress to a color interpolated across one
// reference color per page. It holds no animation state.
type Backdrop struct {
	colors []colorful.Color
}

// NewBackdrop parses hex reference colors, one per page in page order.
func NewBackdrop(hexes []string) (*Backdrop, error) {
	if len(hexes) == 0 {
		return nil, errors.New("nav: backdrop needs at least one color")
	}
	colors := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("backdrop color %d (%q): %w", i, h, err)
		}
		colors[i] = c
	}
	return &Backdrop{colors: colors}, nil
}

// At returns the color for progress, linearly interpolated in RGB between the
// two bounding reference colors. Progress outside the page range is clamped.
func (b *Backdrop) At(progress float64) colorful.Color {
	last := len(b.colors) - 1
	switch {
	case progress != progress || progress <= 0:
		return b.colors[0]
	case progress >= float64(last):
		return b.colors[last]
	}
	lo := int(math.Floor(progress))
	t := progress - float64(lo)
	if t == 0 {
		return b.colors[lo]
	}
	return b.colors[lo].BlendRgb(b.colors[lo+1], t).Clamped()
}

// Hex returns At(progress) as a #rrggbb string.
func (b *Backdrop) Hex(progress float64) string {
	return b.At(progress).Hex()
}
