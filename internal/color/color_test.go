package color_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/colorguess/internal/color"
)

func TestGenerateLengthAndRange(t *testing.T) {
	g := color.NewRandomGenerator()
	for _, n := range []int{3, 6} {
		for i := 0; i < 200; i++ {
			p := g.Generate(n)
			require.Len(t, p, n)
			for _, c := range p {
				// uint8 channels cannot leave [0,255]; the string must round-trip.
				back, err := color.Parse(c.String())
				require.NoError(t, err)
				assert.Equal(t, c, back)
			}
		}
	}
}

func TestGenerateNonPositive(t *testing.T) {
	g := color.NewGenerator(1)
	assert.Empty(t, g.Generate(0))
	assert.Empty(t, g.Generate(-3))
}

func TestGeneratorDeterministic(t *testing.T) {
	a := color.NewGenerator(42).Generate(6)
	b := color.NewGenerator(42).Generate(6)
	c := color.NewGenerator(43).Generate(6)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestPickIsMember(t *testing.T) {
	g := color.NewGenerator(7)
	for i := 0; i < 100; i++ {
		p := g.Generate(3)
		assert.Contains(t, p, g.Pick(p))
	}
	assert.Equal(t, color.Color{}, g.Pick(nil))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want color.Color
		ok   bool
	}{
		{"rgb", "rgb(12, 200, 37)", color.Color{R: 12, G: 200, B: 37}, true},
		{"rgb tight", "rgb(0,0,0)", color.Color{}, true},
		{"rgb upper", "RGB(255, 255, 255)", color.Color{R: 255, G: 255, B: 255}, true},
		{"hex", "#ff8000", color.Color{R: 255, G: 128}, true},
		{"hex padded", "  #0A0b0C ", color.Color{R: 10, G: 11, B: 12}, true},
		{"channel too big", "rgb(256, 0, 0)", color.Color{}, false},
		{"negative", "rgb(-1, 0, 0)", color.Color{}, false},
		{"two channels", "rgb(1, 2)", color.Color{}, false},
		{"short hex", "#fff", color.Color{}, false},
		{"bad hex", "#gggggg", color.Color{}, false},
		{"name", "red", color.Color{}, false},
		{"empty", "", color.Color{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := color.Parse(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, color.ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringAndHex(t *testing.T) {
	c := color.Color{R: 1, G: 128, B: 255}
	assert.Equal(t, "rgb(1, 128, 255)", c.String())
	assert.Equal(t, "#0180ff", c.Hex())
}

func TestJSONUsesDisplayString(t *testing.T) {
	b, err := json.Marshal(struct {
		C color.Color `json:"c"`
	}{color.Color{R: 3, G: 4, B: 5}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"rgb(3, 4, 5)"}`, string(b))

	var out struct {
		C color.Color `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"c":"#030405"}`), &out))
	assert.Equal(t, color.Color{R: 3, G: 4, B: 5}, out.C)
}

func TestDistance(t *testing.T) {
	black := color.Color{}
	white := color.Color{R: 255, G: 255, B: 255}
	grey := color.Color{R: 128, G: 128, B: 128}
	assert.InDelta(t, 0, color.Distance(grey, grey), 1e-9)
	assert.Greater(t, color.Distance(black, white), color.Distance(black, grey))
}
