package report

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"ssea/domain/result"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	plotWidth   = 640
	plotHeight  = 420
	plotMargin  = 48
	barcodeH    = 40
	histBins    = 40
	colorCurve  = "#2b6cb0"
	colorBand   = "#bee3f8"
	colorHit    = "#1a202c"
	colorMarker = "#c53030"
	colorPos    = "#68d391"
	colorNeg    = "#fc8181"
)

type svgCanvas struct {
	b strings.Builder
}

func newCanvas(title string) *svgCanvas {
	c := &svgCanvas{}
	fmt.Fprintf(&c.b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">`,
		plotWidth, plotHeight, plotWidth, plotHeight)
	c.b.WriteString("\n")
	fmt.Fprintf(&c.b, `<rect width="%d" height="%d" fill="white"/>`+"\n", plotWidth, plotHeight)
	fmt.Fprintf(&c.b, `<text x="%d" y="20" text-anchor="middle" font-size="14">%s</text>`+"\n", plotWidth/2, html.EscapeString(title))
	return c
}

func (c *svgCanvas) line(x1, y1, x2, y2 float64, color string, width float64, dash bool) {
	extra := ""
	if dash {
		extra = ` stroke-dasharray="4 3"`
	}
	fmt.Fprintf(&c.b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.1f"%s/>`+"\n",
		x1, y1, x2, y2, color, width, extra)
}

func (c *svgCanvas) polyline(xs, ys []float64, color string) {
	c.b.WriteString(`<polyline fill="none" stroke="` + color + `" stroke-width="1.5" points="`)
	for i := range xs {
		fmt.Fprintf(&c.b, "%.2f,%.2f ", xs[i], ys[i])
	}
	c.b.WriteString(`"/>` + "\n")
}

func (c *svgCanvas) polygon(xs, ys []float64, color string) {
	c.b.WriteString(`<polygon stroke="none" fill="` + color + `" points="`)
	for i := range xs {
		fmt.Fprintf(&c.b, "%.2f,%.2f ", xs[i], ys[i])
	}
	c.b.WriteString(`"/>` + "\n")
}

func (c *svgCanvas) rect(x, y, w, h float64, color string) {
	fmt.Fprintf(&c.b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n", x, y, w, h, color)
}

func (c *svgCanvas) text(x, y float64, anchor, s string) {
	fmt.Fprintf(&c.b, `<text x="%.2f" y="%.2f" text-anchor="%s">%s</text>`+"\n", x, y, anchor, html.EscapeString(s))
}

func (c *svgCanvas) bytes() []byte {
	c.b.WriteString("</svg>\n")
	return []byte(c.b.String())
}

// scale maps [lo,hi] onto [a,b]
type scale struct {
	lo, hi, a, b float64
}

func (s scale) at(v float64) float64 {
	if s.hi == s.lo {
		return (s.a + s.b) / 2
	}
	return s.a + (v-s.lo)/(s.hi-s.lo)*(s.b-s.a)
}

// EnrichmentPlot draws the running sum with its null envelope, the ES
// marker and a barcode of hit ranks
func EnrichmentPlot(rec result.Record) []byte {
	c := newCanvas(fmt.Sprintf("%s  ES=%.3f", rec.Name, rec.ES))
	if rec.Details == nil || len(rec.Details.RunningSum) == 0 {
		c.text(plotWidth/2, plotHeight/2, "middle", "no running sum")
		return c.bytes()
	}

	d := rec.Details
	n := len(d.RunningSum)
	top := float64(plotMargin)
	bottom := float64(plotHeight - plotMargin - barcodeH)

	lo, hi := floats.Min(d.RunningSum), floats.Max(d.RunningSum)
	if d.Envelope != nil && len(d.Envelope.Lower) == n {
		lo = math.Min(lo, floats.Min(d.Envelope.Lower))
		hi = math.Max(hi, floats.Max(d.Envelope.Upper))
	}
	lo, hi = math.Min(lo, 0), math.Max(hi, 0)

	xs := scale{lo: 0, hi: float64(max(n-1, 1)), a: plotMargin, b: plotWidth - plotMargin}
	ys := scale{lo: lo, hi: hi, a: bottom, b: top}

	if d.Envelope != nil && len(d.Envelope.Lower) == n {
		px := make([]float64, 0, 2*n)
		py := make([]float64, 0, 2*n)
		for r := 0; r < n; r++ {
			px = append(px, xs.at(float64(r)))
			py = append(py, ys.at(d.Envelope.Upper[r]))
		}
		for r := n - 1; r >= 0; r-- {
			px = append(px, xs.at(float64(r)))
			py = append(py, ys.at(d.Envelope.Lower[r]))
		}
		c.polygon(px, py, colorBand)
	}

	c.line(xs.a, ys.at(0), xs.b, ys.at(0), "#718096", 1, false)

	px := make([]float64, n)
	py := make([]float64, n)
	for r, v := range d.RunningSum {
		px[r] = xs.at(float64(r))
		py[r] = ys.at(v)
	}
	c.polyline(px, py, colorCurve)

	if !rec.Degenerate {
		x := xs.at(float64(rec.ESRank))
		c.line(x, top, x, bottom, colorMarker, 1, true)
	}

	barTop := bottom + 8
	for _, r := range d.HitIndices {
		x := xs.at(float64(r))
		c.line(x, barTop, x, barTop+barcodeH-12, colorHit, 1, false)
	}

	c.text(xs.a, ys.at(hi)-4, "start", fmt.Sprintf("%.3f", hi))
	c.text(xs.a, ys.at(lo)+14, "start", fmt.Sprintf("%.3f", lo))
	c.text(plotWidth/2, plotHeight-8, "middle", fmt.Sprintf("rank (N=%d, hits=%d)", n, len(d.HitIndices)))
	return c.bytes()
}

// NullHistogram draws the permuted ES values, both signs on one axis, with
// the observed ES marked
func NullHistogram(rec result.Record) []byte {
	c := newCanvas(fmt.Sprintf("%s  null ES (%d permutations)", rec.Name, rec.Permutations))
	if rec.Details == nil {
		c.text(plotWidth/2, plotHeight/2, "middle", "no null distribution")
		return c.bytes()
	}

	all := make([]float64, 0, len(rec.Details.NullPositive)+len(rec.Details.NullNegative))
	all = append(all, rec.Details.NullNegative...)
	all = append(all, rec.Details.NullPositive...)
	if len(all) == 0 {
		c.text(plotWidth/2, plotHeight/2, "middle", "no null distribution")
		return c.bytes()
	}
	sort.Float64s(all)

	lo := math.Min(all[0], rec.ES)
	hi := math.Max(all[len(all)-1], rec.ES)
	if hi == lo {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := make([]float64, histBins+1)
	floats.Span(dividers, lo, hi)
	// the last bin must include hi, and Span may land just below it
	dividers[histBins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, all, nil)

	top := float64(plotMargin)
	bottom := float64(plotHeight - plotMargin)
	xs := scale{lo: lo, hi: dividers[histBins], a: plotMargin, b: plotWidth - plotMargin}
	ys := scale{lo: 0, hi: floats.Max(counts), a: bottom, b: top}

	for i, count := range counts {
		if count == 0 {
			continue
		}
		x0, x1 := xs.at(dividers[i]), xs.at(dividers[i+1])
		color := colorPos
		if dividers[i+1] <= 0 {
			color = colorNeg
		}
		c.rect(x0, ys.at(count), math.Max(x1-x0-1, 1), bottom-ys.at(count), color)
	}

	c.line(xs.a, bottom, xs.b, bottom, "#718096", 1, false)
	x := xs.at(rec.ES)
	c.line(x, top, x, bottom, colorMarker, 1.5, true)
	c.text(x, top-6, "middle", fmt.Sprintf("ES=%.3f", rec.ES))
	c.text(xs.a, bottom+16, "start", fmt.Sprintf("%.3f", lo))
	c.text(xs.b, bottom+16, "end", fmt.Sprintf("%.3f", hi))
	return c.bytes()
}
