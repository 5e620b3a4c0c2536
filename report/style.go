package report

import (
	"image/color"
	"strconv"
	"strings"

	"gonum.org/v1/plot/vg"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// Style is the visual configuration shared by all charts of a run.
type Style struct {
	// Palette colors series in order.
	Palette []color.Color
	// Levels colors ordinal groups such as Low/Medium/High technification.
	Levels      []color.Color
	Accent      color.Color
	FontSize    vg.Length
	TitleSize   vg.Length
	LineWidth   vg.Length
	PointRadius vg.Length
}

// DefaultStyle returns the article style.
func DefaultStyle() Style {
	return Style{
		Palette: []color.Color{
			mustHex("#2E7D32"), mustHex("#1565C0"), mustHex("#D84315"), mustHex("#6A1B9A"),
			mustHex("#8B4513"), mustHex("#00838F"), mustHex("#E91E63"), mustHex("#0288D1"),
		},
		Levels:      []color.Color{mustHex("#D32F2F"), mustHex("#FFA000"), mustHex("#388E3C")},
		Accent:      mustHex("#D32F2F"),
		FontSize:    vg.Points(11),
		TitleSize:   vg.Points(14),
		LineWidth:   vg.Points(2),
		PointRadius: vg.Points(4),
	}
}

// WithFontSize returns s with body text at size points and titles scaled with it.
func (s Style) WithFontSize(size float64) Style {
	if size > 0 {
		s.FontSize = vg.Points(size)
		s.TitleSize = vg.Points(size * 14 / 11)
	}
	return s
}

// Color returns the i-th palette color, cycling.
func (s Style) Color(i int) color.Color {
	return s.Palette[i%len(s.Palette)]
}

// Level returns the color of ordinal level i, falling back to the palette.
func (s Style) Level(i int) color.Color {
	if i < len(s.Levels) {
		return s.Levels[i]
	}
	return s.Color(i)
}

// ParseHexColor parses "#RRGGBB".
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return color.RGBA{}, csErrors.NewValueError("ParseHexColor", "expected #RRGGBB, got "+s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, csErrors.NewValueError("ParseHexColor", "invalid hex color "+s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func mustHex(s string) color.Color {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
