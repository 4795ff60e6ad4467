// internal/color/color.go
//
// Color value type and random palette generation.
// Responsibilities:
//   - Color: an 8-bit RGB triple rendered as "rgb(r, g, b)".
//   - Parse the two textual forms the clients send ("rgb(...)" and "#rrggbb").
//   - Generator: uniform random colors and uniform picks from a palette.
//   - Perceptual distance between two colors (CIE Lab via go-colorful).
//
// Notes:
//   - The rgb() string is the equality key used by the game; two colors with
//     the same channels are the same color, whatever swatch they came from.

package color

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned by Parse for anything that is not rgb() or #rrggbb.
var ErrInvalidColor = errors.New("invalid color")

// Color is an 8-bit per channel RGB color.
type Color struct {
	R, G, B uint8
}

// String renders the display form, e.g. "rgb(12, 200, 37)".
func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex renders "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText lets Color travel as its display string in JSON.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts anything Parse accepts.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Parse reads "rgb(r, g, b)" (case and whitespace tolerant) or "#rrggbb".
func Parse(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		if len(s) != 7 {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil

	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		parts := strings.Split(s[4:len(s)-1], ",")
		if len(parts) != 3 {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		var ch [3]uint8
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
			}
			ch[i] = uint8(n)
		}
		return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
	}
	return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// Colorful converts to a go-colorful color for color-space math.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Distance is the perceptual CIE Lab distance between a and b.
// 0 means identical; black to white is roughly 1.0.
func Distance(a, b Color) float64 {
	return a.Colorful().DistanceLab(b.Colorful())
}

// Generator produces random colors from its own source.
// It is not safe for concurrent use; each session owns one.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a deterministic generator for seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// NewRandomGenerator returns a generator seeded from the runtime's entropy.
func NewRandomGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Random returns one color with independently uniform channels.
func (g *Generator) Random() Color {
	return Color{
		R: uint8(g.rng.IntN(256)),
		G: uint8(g.rng.IntN(256)),
		B: uint8(g.rng.IntN(256)),
	}
}

// Generate returns n random colors. Duplicates are allowed.
func (g *Generator) Generate(n int) []Color {
	if n <= 0 {
		return []Color{}
	}
	out := make([]Color, n)
	for i := range out {
		out[i] = g.Random()
	}
	return out
}

// Pick returns a uniformly chosen element of palette, or the zero Color if empty.
func (g *Generator) Pick(palette []Color) Color {
	if len(palette) == 0 {
		return Color{}
	}
	return palette[g.rng.IntN(len(palette))]
}
