package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

var pngMagic = []byte("\x89PNG")

func testSpecs() map[string]ChartSpec {
	years := []float64{2015, 2016, 2017, 2018, 2019}
	prod := []float64{20, 22, 25, 27, 30}
	tech := []float64{3, 3.5, 4.2, 5, 6.1}

	return map[string]ChartSpec{
		"scatter": {
			Kind: KindScatter, Title: "Technology vs productivity", XLabel: "tech", YLabel: "bags/ha",
			Series: []Series{{
				Name: "years", X: tech, Y: prod, ColorBy: years,
				Labels: []string{"2015", "2016", "2017", "2018", "2019"},
			}},
			Markers:    []Series{{Name: "centroids", X: []float64{3.5, 5.5}, Y: []float64{22, 28}}},
			Fit:        &FitLine{Slope: 3, Intercept: 11, Label: "fit (R² 0.98)"},
			Annotation: "r = 0.99",
		},
		"line": {
			Kind: KindLine, Title: "Evolution", Y2Label: "technology index",
			Series: []Series{
				{Name: "production", X: years, Y: []float64{50, 52, 49, 55, 58}, Bars: true},
				{Name: "productivity", X: years, Y: prod, Points: true},
				{Name: "tech", X: years, Y: tech, Secondary: true, Dashed: true},
			},
		},
		"bar": {
			Kind: KindBar, Title: "Productivity by level",
			Categories: []string{"Low", "Medium", "High"},
			Values:     []float64{20, 25.5, 31},
			Errors:     []float64{1.5, 2, 0.5},
		},
		"heatmap": {
			Kind: KindHeatmap, Title: "Correlation",
			Categories: []string{"a", "b", "c"},
			Matrix:     [][]float64{{1, 0.5, -0.2}, {0.5, 1, 0.1}, {-0.2, 0.1, 1}},
		},
		"box": {
			Kind: KindBox, Title: "Productivity by region",
			Categories: []string{"North", "South"},
			Groups:     [][]float64{{20, 22, 25, 21}, {30, 28, 33, 35}},
		},
	}
}

func TestRenderer_RendersEveryKind(t *testing.T) {
	r := NewRenderer(DefaultStyle(), 4, 3, 72, "")
	dir := t.TempDir()

	for name, spec := range testSpecs() {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "nested", name+".png")
			require.NoError(t, r.Render(spec, path))

			b, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(b, pngMagic))
		})
	}
}

func TestRenderer_Grid(t *testing.T) {
	specs := testSpecs()
	grid := ChartSpec{
		Kind: KindGrid, Title: "Multivariate view", Rows: 2, Cols: 2,
		Panels: []ChartSpec{specs["line"], specs["bar"], specs["box"]},
	}

	var buf bytes.Buffer
	r := NewRenderer(DefaultStyle(), 6, 5, 72, "png")
	require.NoError(t, r.Write(grid, &buf, "png"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderer_JPEG(t *testing.T) {
	r := NewRenderer(DefaultStyle(), 3, 2, 72, "")
	path := filepath.Join(t.TempDir(), "bar.jpg")
	require.NoError(t, r.Render(testSpecs()["bar"], path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte{0xff, 0xd8}))
}

func TestRenderer_UnsupportedFormat(t *testing.T) {
	r := NewRenderer(DefaultStyle(), 3, 2, 72, "")
	err := r.Render(testSpecs()["bar"], filepath.Join(t.TempDir(), "bar.gif"))
	assert.True(t, csErrors.Is(err, csErrors.ErrInvalidValue), "got %v", err)
}

func TestChartSpec_Validate(t *testing.T) {
	tests := []struct {
		name string
		spec ChartSpec
		want error
	}{
		{"unknown kind", ChartSpec{Kind: "pie"}, csErrors.ErrInvalidValue},
		{"scatter without series", ChartSpec{Kind: KindScatter}, csErrors.ErrInvalidValue},
		{"ragged series", ChartSpec{Kind: KindLine, Series: []Series{{X: []float64{1, 2}, Y: []float64{1}}}}, csErrors.ErrLengthMismatch},
		{"labels mismatch", ChartSpec{Kind: KindScatter, Series: []Series{{X: []float64{1}, Y: []float64{1}, Labels: []string{"a", "b"}}}}, csErrors.ErrLengthMismatch},
		{"bar categories", ChartSpec{Kind: KindBar, Categories: []string{"a"}, Values: []float64{1, 2}}, csErrors.ErrLengthMismatch},
		{"bar errors", ChartSpec{Kind: KindBar, Categories: []string{"a"}, Values: []float64{1}, Errors: []float64{1, 2}}, csErrors.ErrLengthMismatch},
		{"heatmap not square", ChartSpec{Kind: KindHeatmap, Categories: []string{"a", "b"}, Matrix: [][]float64{{1, 0}, {0}}}, csErrors.ErrLengthMismatch},
		{"box without groups", ChartSpec{Kind: KindBox}, csErrors.ErrInvalidValue},
		{"grid overflow", ChartSpec{Kind: KindGrid, Rows: 1, Cols: 1, Panels: make([]ChartSpec, 2)}, csErrors.ErrInvalidValue},
		{"nested grid", ChartSpec{Kind: KindGrid, Rows: 1, Cols: 1, Panels: []ChartSpec{{Kind: KindGrid}}}, csErrors.ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			require.Error(t, err)
			assert.True(t, csErrors.Is(err, tt.want), "got %v", err)
		})
	}

	for name, spec := range testSpecs() {
		assert.NoError(t, spec.Validate(), name)
	}
}

func TestStyle(t *testing.T) {
	c, err := ParseHexColor("#388E3C")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x38), c.R)
	assert.Equal(t, uint8(0x8e), c.G)
	assert.Equal(t, uint8(0x3c), c.B)

	_, err = ParseHexColor("388E")
	assert.Error(t, err)
	_, err = ParseHexColor("#zzzzzz")
	assert.Error(t, err)

	s := DefaultStyle()
	assert.Equal(t, s.Palette[1], s.Color(len(s.Palette)+1))
	assert.Equal(t, s.Levels[2], s.Level(2))
	assert.Equal(t, s.Color(3), s.Level(3))
	assert.InDelta(t, 14.0, float64(s.WithFontSize(11).TitleSize), 1e-9)
}
