package report

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
	"github.com/ezoic/coffeestats/pkg/log"
)

// Renderer draws ChartSpecs to raster images.
type Renderer struct {
	Style  Style
	Width  vg.Length
	Height vg.Length
	DPI    int
	// Format is "png" or "jpg". Empty means use the file extension.
	Format string

	logger log.Logger
}

// NewRenderer returns a Renderer producing width x height inch images at dpi.
func NewRenderer(style Style, widthIn, heightIn float64, dpi int, format string) *Renderer {
	return &Renderer{
		Style:  style,
		Width:  vg.Length(widthIn) * vg.Inch,
		Height: vg.Length(heightIn) * vg.Inch,
		DPI:    dpi,
		Format: format,
		logger: log.GetLoggerWithName("report").With(log.ComponentKey, "report"),
	}
}

// Render validates spec and writes it to path, creating parent directories.
func (r *Renderer) Render(spec ChartSpec, path string) (err error) {
	defer csErrors.Recover(&err, "Renderer.Render")

	if err := spec.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return csErrors.Wrap(err, "create chart directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return csErrors.Wrapf(err, "create chart %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = csErrors.Wrapf(cerr, "close chart %s", path)
		}
	}()

	if err := r.Write(spec, f, r.format(path)); err != nil {
		return csErrors.Wrapf(err, "render chart %s", path)
	}

	r.logger.Debug("Chart written",
		log.OperationKey, log.OperationRender,
		log.PhaseKey, log.PhaseReporting,
		log.PathKey, path,
		"kind", string(spec.Kind),
	)
	return nil
}

func (r *Renderer) format(path string) string {
	if r.Format != "" {
		return strings.ToLower(r.Format)
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// Write draws spec onto a fresh canvas and encodes it to w as format.
func (r *Renderer) Write(spec ChartSpec, w io.Writer, format string) error {
	c := vgimg.NewWith(vgimg.UseWH(r.Width, r.Height), vgimg.UseDPI(r.DPI))
	dc := draw.New(c)

	if spec.Kind == KindGrid {
		if err := r.drawGrid(spec, dc); err != nil {
			return err
		}
	} else {
		p, err := r.plot(spec)
		if err != nil {
			return err
		}
		p.Draw(dc)
	}

	var err error
	switch format {
	case "png":
		_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	case "jpg", "jpeg":
		_, err = vgimg.JpegCanvas{Canvas: c}.WriteTo(w)
	default:
		return csErrors.NewValueError("Renderer.Write", "unsupported image format "+format)
	}
	return err
}

func (r *Renderer) drawGrid(spec ChartSpec, dc draw.Canvas) error {
	if spec.Title != "" {
		title := r.Style.TitleSize
		sty := text.Style{
			Color:   color.Black,
			Font:    font.From(plot.DefaultFont, title),
			XAlign:  text.XCenter,
			YAlign:  text.YTop,
			Handler: plot.DefaultTextHandler,
		}
		dc.FillText(sty, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - title/2}, spec.Title)
		dc = draw.Crop(dc, 0, 0, 0, -2*title)
	}

	plots := make([][]*plot.Plot, spec.Rows)
	for i := range plots {
		plots[i] = make([]*plot.Plot, spec.Cols)
	}
	for i, panel := range spec.Panels {
		p, err := r.plot(panel)
		if err != nil {
			return err
		}
		plots[i/spec.Cols][i%spec.Cols] = p
	}

	tiles := draw.Tiles{
		Rows: spec.Rows, Cols: spec.Cols,
		PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 4,
		PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2,
		PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i, p := range plots[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}
	return nil
}

func (r *Renderer) plot(spec ChartSpec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.Title.TextStyle.Font.Size = r.Style.TitleSize
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.X.Label.TextStyle.Font.Size = r.Style.FontSize
	p.Y.Label.TextStyle.Font.Size = r.Style.FontSize
	p.X.Tick.Label.Font.Size = r.Style.FontSize * 0.85
	p.Y.Tick.Label.Font.Size = r.Style.FontSize * 0.85
	p.Legend.TextStyle.Font.Size = r.Style.FontSize * 0.85
	p.Legend.Top = true

	var err error
	switch spec.Kind {
	case KindScatter:
		err = r.addScatter(p, spec)
	case KindLine:
		err = r.addLines(p, spec)
	case KindBar:
		err = r.addBars(p, spec)
	case KindHeatmap:
		err = r.addHeatmap(p, spec)
	case KindBox:
		err = r.addBoxes(p, spec)
	default:
		err = csErrors.NewValueError("Renderer", "cannot draw "+string(spec.Kind)+" as a single plot")
	}
	if err != nil {
		return nil, err
	}
	if spec.Kind != KindHeatmap {
		p.Add(plotter.NewGrid())
	}
	return p, nil
}

func (r *Renderer) addScatter(p *plot.Plot, spec ChartSpec) error {
	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymax := math.Inf(-1)
	for i, ser := range spec.Series {
		pts := xys(ser.X, ser.Y)
		for _, pt := range pts {
			xmin, xmax = math.Min(xmin, pt.X), math.Max(xmax, pt.X)
			ymax = math.Max(ymax, pt.Y)
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = r.Style.PointRadius
		s.GlyphStyle.Color = r.seriesColor(ser, i)
		if len(ser.ColorBy) > 0 {
			s.GlyphStyleFunc = r.colorScale(ser.X, ser.Y, ser.ColorBy)
		}
		p.Add(s)
		if ser.Name != "" {
			p.Legend.Add(ser.Name, s)
		}
		if len(ser.Labels) > 0 {
			labels, err := pointLabels(ser, r.Style.FontSize*0.75)
			if err != nil {
				return err
			}
			p.Add(labels)
		}
	}

	for _, m := range spec.Markers {
		s, err := plotter.NewScatter(xys(m.X, m.Y))
		if err != nil {
			return err
		}
		s.GlyphStyle.Shape = draw.CrossGlyph{}
		s.GlyphStyle.Radius = r.Style.PointRadius * 3
		s.GlyphStyle.Color = color.Black
		if m.Color != nil {
			s.GlyphStyle.Color = m.Color
		}
		p.Add(s)
		if m.Name != "" {
			p.Legend.Add(m.Name, s)
		}
	}

	if spec.Fit != nil && !math.IsInf(xmin, 0) {
		line, err := plotter.NewLine(plotter.XYs{
			{X: xmin, Y: spec.Fit.Intercept + spec.Fit.Slope*xmin},
			{X: xmax, Y: spec.Fit.Intercept + spec.Fit.Slope*xmax},
		})
		if err != nil {
			return err
		}
		line.LineStyle.Width = r.Style.LineWidth
		line.LineStyle.Color = r.Style.Accent
		line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(line)
		if spec.Fit.Label != "" {
			p.Legend.Add(spec.Fit.Label, line)
		}
	}

	if spec.Annotation != "" && !math.IsInf(xmin, 0) {
		return r.annotate(p, spec.Annotation, xmin, ymax)
	}
	return nil
}

func (r *Renderer) addLines(p *plot.Plot, spec ChartSpec) error {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, ser := range spec.Series {
		if ser.Secondary {
			continue
		}
		if ser.Bars {
			lo = math.Min(lo, 0)
		}
		for _, pt := range xys(ser.X, ser.Y) {
			lo, hi = math.Min(lo, pt.Y), math.Max(hi, pt.Y)
		}
	}

	xmin, ymax := math.Inf(1), math.Inf(-1)
	for i, ser := range spec.Series {
		pts := xys(ser.X, ser.Y)
		name := ser.Name
		if ser.Secondary && !math.IsInf(lo, 0) {
			var smin, smax float64
			pts, smin, smax = rescale(pts, lo, hi)
			label := name
			if spec.Y2Label != "" {
				label = spec.Y2Label
			}
			name = fmt.Sprintf("%s (right scale %s to %s)", label, FormatMean(smin), FormatMean(smax))
		}
		for _, pt := range pts {
			xmin, ymax = math.Min(xmin, pt.X), math.Max(ymax, pt.Y)
		}
		c := r.seriesColor(ser, i)

		if ser.Bars {
			for _, pt := range pts {
				b, err := plotter.NewBarChart(plotter.Values{pt.Y}, vg.Points(14))
				if err != nil {
					return err
				}
				b.XMin = pt.X
				b.Color = withAlpha(c, 0xb0)
				b.LineStyle.Width = 0
				p.Add(b)
				if name != "" {
					p.Legend.Add(name, b)
					name = ""
				}
			}
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = r.Style.LineWidth
		line.LineStyle.Color = c
		if ser.Dashed {
			line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		}
		p.Add(line)
		thumbs := []plot.Thumbnailer{line}
		if ser.Points {
			s, err := plotter.NewScatter(pts)
			if err != nil {
				return err
			}
			s.GlyphStyle.Shape = draw.CircleGlyph{}
			s.GlyphStyle.Radius = r.Style.PointRadius
			s.GlyphStyle.Color = c
			p.Add(s)
			thumbs = append(thumbs, s)
		}
		if name != "" {
			p.Legend.Add(name, thumbs...)
		}
	}

	if spec.Annotation != "" && !math.IsInf(xmin, 0) {
		return r.annotate(p, spec.Annotation, xmin, ymax)
	}
	return nil
}

// errPoints feeds plotter.NewYErrorBars.
type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

func (r *Renderer) addBars(p *plot.Plot, spec ChartSpec) error {
	decimals := spec.ValueFormat
	if decimals == 0 {
		decimals = MeanDecimals
	}

	top, bottom := 0.0, 0.0
	width := vg.Points(40)
	for i, v := range spec.Values {
		if math.IsNaN(v) {
			continue
		}
		b, err := plotter.NewBarChart(plotter.Values{v}, width)
		if err != nil {
			return err
		}
		b.XMin = float64(i)
		b.Color = r.Style.Level(i)
		if i < len(spec.BarColors) && spec.BarColors[i] != nil {
			b.Color = spec.BarColors[i]
		}
		b.LineStyle.Width = vg.Points(1)
		p.Add(b)

		e := 0.0
		if i < len(spec.Errors) && !math.IsNaN(spec.Errors[i]) {
			e = spec.Errors[i]
		}
		top = math.Max(top, v+e)
		bottom = math.Min(bottom, v-e)
	}

	if len(spec.Errors) > 0 {
		pts := errPoints{}
		for i, v := range spec.Values {
			if math.IsNaN(v) || math.IsNaN(spec.Errors[i]) {
				continue
			}
			pts.XYs = append(pts.XYs, plotter.XY{X: float64(i), Y: v})
			pts.YErrors = append(pts.YErrors, struct{ Low, High float64 }{spec.Errors[i], spec.Errors[i]})
		}
		if len(pts.XYs) > 0 {
			bars, err := plotter.NewYErrorBars(pts)
			if err != nil {
				return err
			}
			bars.LineStyle.Width = vg.Points(1.5)
			bars.CapWidth = vg.Points(10)
			p.Add(bars)
		}
	}

	var pts plotter.XYs
	var texts []string
	for i, v := range spec.Values {
		if math.IsNaN(v) {
			continue
		}
		e := 0.0
		if i < len(spec.Errors) && !math.IsNaN(spec.Errors[i]) {
			e = spec.Errors[i]
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: v + e})
		texts = append(texts, FormatFloat(v, decimals))
	}
	if len(pts) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: texts})
		if err != nil {
			return err
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Font.Size = r.Style.FontSize * 0.8
			labels.TextStyle[i].XAlign = text.XCenter
		}
		labels.Offset = vg.Point{Y: vg.Points(4)}
		p.Add(labels)
	}

	p.NominalX(spec.Categories...)
	p.Y.Min = bottom
	p.Y.Max = top * 1.15
	if top == 0 {
		p.Y.Max = 1
	}
	return nil
}

// corrGrid adapts a square matrix to plotter.GridXYZ with row 0 drawn at the top.
type corrGrid [][]float64

func (g corrGrid) Dims() (c, r int)   { return len(g), len(g) }
func (g corrGrid) Z(c, r int) float64 { return g[len(g)-1-r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

func (r *Renderer) addHeatmap(p *plot.Plot, spec ChartSpec) error {
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)

	grid := corrGrid(spec.Matrix)
	h := plotter.NewHeatMap(grid, cm.Palette(255))
	h.Min, h.Max = -1, 1
	h.NaN = color.Gray{Y: 0xdd}
	p.Add(h)

	n := len(spec.Matrix)
	var pts plotter.XYs
	var texts []string
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			pts = append(pts, plotter.XY{X: float64(col), Y: float64(n - 1 - row)})
			texts = append(texts, FormatFloat(spec.Matrix[row][col], 3))
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: texts})
	if err != nil {
		return err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = r.Style.FontSize * 0.7
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(labels)

	reversed := make([]string, n)
	for i, name := range spec.Categories {
		reversed[n-1-i] = name
	}
	p.NominalX(spec.Categories...)
	p.NominalY(reversed...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	return nil
}

func (r *Renderer) addBoxes(p *plot.Plot, spec ChartSpec) error {
	for i, g := range spec.Groups {
		var vals plotter.Values
		for _, v := range g {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(40), float64(i), vals)
		if err != nil {
			return err
		}
		b.FillColor = withAlpha(r.Style.Color(i), 0x90)
		p.Add(b)
	}
	p.NominalX(spec.Categories...)
	return nil
}

func (r *Renderer) annotate(p *plot.Plot, note string, x, y float64) error {
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: x, Y: y}},
		Labels: []string{note},
	})
	if err != nil {
		return err
	}
	labels.TextStyle[0].Font.Size = r.Style.FontSize * 0.9
	labels.TextStyle[0].YAlign = text.YTop
	labels.Offset = vg.Point{X: vg.Points(4), Y: -vg.Points(4)}
	p.Add(labels)
	return nil
}

func (r *Renderer) seriesColor(s Series, i int) color.Color {
	if s.Color != nil {
		return s.Color
	}
	return r.Style.Color(i)
}

// colorScale maps by onto a perceptual color map spanning its range.
func (r *Renderer) colorScale(x, y, by []float64) func(int) draw.GlyphStyle {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range by {
		if !math.IsNaN(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	var cm palette.ColorMap = moreland.ExtendedKindlmann()
	if hi > lo {
		cm.SetMin(lo)
		cm.SetMax(hi)
	}

	// xys drops NaN points, so map plotted indexes back to input indexes.
	var idx []int
	for i := range x {
		if validPoint(x[i], y[i]) {
			idx = append(idx, i)
		}
	}

	return func(i int) draw.GlyphStyle {
		sty := draw.GlyphStyle{Shape: draw.CircleGlyph{}, Radius: r.Style.PointRadius, Color: color.Gray{Y: 0x80}}
		if hi <= lo {
			return sty
		}
		if c, err := cm.At(by[idx[i]]); err == nil {
			sty.Color = c
		}
		return sty
	}
}

func pointLabels(s Series, size vg.Length) (*plotter.Labels, error) {
	var pts plotter.XYs
	var texts []string
	for i := range s.X {
		if validPoint(s.X[i], s.Y[i]) {
			pts = append(pts, plotter.XY{X: s.X[i], Y: s.Y[i]})
			texts = append(texts, s.Labels[i])
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: texts})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = size
	}
	labels.Offset = vg.Point{X: vg.Points(5), Y: vg.Points(3)}
	return labels, nil
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(x))
	for i := range x {
		if validPoint(x[i], y[i]) {
			pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
		}
	}
	return pts
}

func validPoint(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsNaN(y) && !math.IsInf(x, 0) && !math.IsInf(y, 0)
}

// rescale maps the Y values of pts linearly onto [lo, hi] and returns their
// original range.
func rescale(pts plotter.XYs, lo, hi float64) (plotter.XYs, float64, float64) {
	smin, smax := math.Inf(1), math.Inf(-1)
	for _, pt := range pts {
		smin, smax = math.Min(smin, pt.Y), math.Max(smax, pt.Y)
	}
	out := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		y := (lo + hi) / 2
		if smax > smin {
			y = lo + (pt.Y-smin)/(smax-smin)*(hi-lo)
		}
		out[i] = plotter.XY{X: pt.X, Y: y}
	}
	return out, smin, smax
}

func withAlpha(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}
