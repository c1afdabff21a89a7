package domain

// Series colors by role.
var roleColors = map[Role]string{
	RolePrimary:     "blue",
	RoleComparisonA: "blue",
	RoleComparisonB: "red",
}

// Color returns the line color of a series role.
func (r Role) Color() string { return roleColors[r] }

// linearEdgePadding keeps the outermost cross-section points off the plot border.
const linearEdgePadding = 20

// ChartConfig is a line-chart configuration in the shape the browser's
// charting library consumes directly.
type ChartConfig struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label       string  `json:"label"`
	Data        []Point `json:"data"`
	Role        Role    `json:"role"`
	BorderColor string  `json:"borderColor"`
	BorderWidth int     `json:"borderWidth"`
	Fill        bool    `json:"fill"`
}

type ChartOptions struct {
	Responsive          bool   `json:"responsive"`
	MaintainAspectRatio bool   `json:"maintainAspectRatio"`
	Scales              Scales `json:"scales"`
	Layout              Layout `json:"layout"`
}

type Scales struct {
	X Scale `json:"x"`
	Y Scale `json:"y"`
}

type Scale struct {
	Type   string     `json:"type,omitempty"`
	Title  ScaleTitle `json:"title"`
	Ticks  *Ticks     `json:"ticks,omitempty"`
	Offset bool       `json:"offset,omitempty"`
	Time   *TimeScale `json:"time,omitempty"`
}

type ScaleTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type Ticks struct {
	AutoSkip bool `json:"autoSkip"`
}

type TimeScale struct {
	Unit           string            `json:"unit,omitempty"`
	TooltipFormat  string            `json:"tooltipFormat,omitempty"`
	DisplayFormats map[string]string `json:"displayFormats,omitempty"`
}

type Layout struct {
	Padding Padding `json:"padding"`
}

type Padding struct {
	Left  int `json:"left,omitempty"`
	Right int `json:"right,omitempty"`
}

// BuildChartConfig maps a normalized chart onto scales, ticks and padding.
// The result depends only on its input.
func BuildChartConfig(c Chart) ChartConfig {
	datasets := make([]Dataset, 0, len(c.Series))
	for _, s := range c.Series {
		datasets = append(datasets, Dataset{
			Label:       s.Label,
			Data:        s.Points,
			Role:        s.Role,
			BorderColor: s.Role.Color(),
			BorderWidth: 2,
		})
	}

	x := Scale{
		Type:  string(c.Axis.XKind),
		Title: ScaleTitle{Display: true, Text: c.Axis.XLabel},
	}
	var layout Layout
	switch c.Axis.XKind {
	case XLinear:
		// Every distance interval is labelled.
		x.Ticks = &Ticks{AutoSkip: false}
		x.Offset = true
		layout.Padding = Padding{Left: linearEdgePadding, Right: linearEdgePadding}
	case XTime:
		x.Time = &TimeScale{
			Unit:           c.Axis.TimeUnit,
			TooltipFormat:  c.Axis.TooltipFormat,
			DisplayFormats: c.Axis.DisplayFormats,
		}
	}

	return ChartConfig{
		Type: "line",
		Data: ChartData{Datasets: datasets},
		Options: ChartOptions{
			Responsive:          true,
			MaintainAspectRatio: false,
			Scales: Scales{
				X: x,
				Y: Scale{Title: ScaleTitle{Display: true, Text: c.Axis.YLabel}},
			},
			Layout: layout,
		},
	}
}
