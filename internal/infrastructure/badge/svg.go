// Package badge renders shields-style SVG coverage badges.
package badge

import (
	"fmt"
	"html/template"
	"io"
)

type Style string

const (
	StyleFlat       Style = "flat"
	StyleFlatSquare Style = "flat-square"
)

const (
	colorLow    = "#e05d44"
	colorMedium = "#dfb317"
	colorHigh   = "#4c1"
)

// Options describe one badge. Low and High are the same bounds the text
// and HTML reports colour by; zero values fall back to 50 and 90.
type Options struct {
	Label   string
	Percent float64
	Style   Style
	Low     float64
	High    float64
}

var svg = template.Must(template.New("badge").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="20" role="img" aria-label="{{.Label}}: {{.Value}}">
  <title>{{.Label}}: {{.Value}}</title>
  <linearGradient id="s" x2="0" y2="100%">
    <stop offset="0" stop-color="#bbb" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
  </linearGradient>
  <clipPath id="r">
    <rect width="{{.Width}}" height="20" rx="{{.Radius}}" fill="#fff"/>
  </clipPath>
  <g clip-path="url(#r)">
    <rect width="{{.LabelWidth}}" height="20" fill="#555"/>
    <rect x="{{.LabelWidth}}" width="{{.ValueWidth}}" height="20" fill="{{.Color}}"/>
    <rect width="{{.Width}}" height="20" fill="url(#s)"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" font-size="110">
    <text x="{{.LabelX}}" y="140" transform="scale(.1)">{{.Label}}</text>
    <text x="{{.ValueX}}" y="140" transform="scale(.1)">{{.Value}}</text>
  </g>
</svg>
`))

type layout struct {
	Label, Value, Color string
	Width, Radius       int
	LabelWidth          int
	ValueWidth          int
	LabelX, ValueX      int
}

// Generate writes the badge SVG to w.
func Generate(w io.Writer, opts Options) error {
	if opts.Label == "" {
		opts.Label = "coverage"
	}
	value := Percent(opts.Percent)
	l := layout{
		Label:      opts.Label,
		Value:      value,
		Color:      Color(opts.Percent, opts.Low, opts.High),
		LabelWidth: textWidth(opts.Label),
		ValueWidth: textWidth(value),
		Radius:     3,
	}
	if opts.Style == StyleFlatSquare {
		l.Radius = 0
	}
	l.Width = l.LabelWidth + l.ValueWidth
	l.LabelX = l.LabelWidth * 5
	l.ValueX = l.LabelWidth*10 + l.ValueWidth*5

	if err := svg.Execute(w, l); err != nil {
		return fmt.Errorf("render badge: %w", err)
	}
	return nil
}

// Percent formats p without a trailing ".0".
func Percent(p float64) string {
	if p == float64(int(p)) {
		return fmt.Sprintf("%.0f%%", p)
	}
	return fmt.Sprintf("%.1f%%", p)
}

// Color picks the fill for p.
func Color(p, low, high float64) string {
	if low == 0 {
		low = 50
	}
	if high == 0 {
		high = 90
	}
	switch {
	case p >= high:
		return colorHigh
	case p >= low:
		return colorMedium
	default:
		return colorLow
	}
}

// Approximate Verdana 11px advance plus padding.
func textWidth(s string) int {
	return len(s)*7 + 10
}
