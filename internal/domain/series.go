package domain

import "time"

// Role identifies a series' position in the chart; each role has one color.
type Role string

const (
	RolePrimary     Role = "primary"
	RoleComparisonA Role = "comparisonA"
	RoleComparisonB Role = "comparisonB"
)

// XKind is the x axis scale type.
type XKind string

const (
	XLinear XKind = "linear"
	XTime   XKind = "time"
)

// Point is one chart sample. On time axes X is Unix milliseconds. A nil Y is a
// gap in the data, not a zero.
type Point struct {
	X float64  `json:"x"`
	Y *float64 `json:"y"`
}

// Time interprets X as a timestamp.
func (p Point) Time() time.Time {
	return time.UnixMilli(int64(p.X)).UTC()
}

// NormalizedSeries is a data-type-agnostic line.
type NormalizedSeries struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
	Role   Role    `json:"role"`
}

// AxisMetadata carries the axis typing and time formatting of a chart.
type AxisMetadata struct {
	XKind          XKind             `json:"x_kind"`
	XLabel         string            `json:"x_label"`
	YLabel         string            `json:"y_label"`
	TimeUnit       string            `json:"time_unit,omitempty"`
	TooltipFormat  string            `json:"tooltip_format,omitempty"`
	DisplayFormats map[string]string `json:"display_formats,omitempty"`
}

// Chart is the normalized result of a plot request.
type Chart struct {
	Series []NormalizedSeries `json:"series"`
	Axis   AxisMetadata       `json:"axis"`
}
