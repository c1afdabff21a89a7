package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crossSectionChart() Chart {
	return Chart{
		Series: []NormalizedSeries{
			{Label: "Cross-Section 2019", Role: RoleComparisonA, Points: []Point{{X: 0, Y: ptr(100)}}},
			{Label: "Cross-Section 2021", Role: RoleComparisonB, Points: []Point{{X: 0, Y: ptr(99)}}},
		},
		Axis: AxisMetadata{XKind: XLinear, XLabel: "Distance (m)", YLabel: "RL (Elevation)"},
	}
}

func TestBuildChartConfig_LinearAxis(t *testing.T) {
	cfg := BuildChartConfig(crossSectionChart())

	assert.Equal(t, "line", cfg.Type)
	require.Len(t, cfg.Data.Datasets, 2)
	assert.Equal(t, "blue", cfg.Data.Datasets[0].BorderColor)
	assert.Equal(t, "red", cfg.Data.Datasets[1].BorderColor)
	assert.Equal(t, 2, cfg.Data.Datasets[1].BorderWidth)
	assert.False(t, cfg.Data.Datasets[0].Fill)

	x := cfg.Options.Scales.X
	assert.Equal(t, "linear", x.Type)
	assert.Equal(t, "Distance (m)", x.Title.Text)
	require.NotNil(t, x.Ticks)
	assert.False(t, x.Ticks.AutoSkip)
	assert.True(t, x.Offset)
	assert.Nil(t, x.Time)
	assert.Equal(t, Padding{Left: 20, Right: 20}, cfg.Options.Layout.Padding)
	assert.Equal(t, "RL (Elevation)", cfg.Options.Scales.Y.Title.Text)
	assert.True(t, cfg.Options.Responsive)
	assert.False(t, cfg.Options.MaintainAspectRatio)
}

func TestBuildChartConfig_TimeAxis(t *testing.T) {
	chart := Chart{
		Series: []NormalizedSeries{{Label: "Water level - Chatara", Role: RolePrimary}},
		Axis: AxisMetadata{
			XKind:          XTime,
			XLabel:         "Date",
			YLabel:         "Level",
			TimeUnit:       "hour",
			TooltipFormat:  HourDisplayFormat,
			DisplayFormats: map[string]string{"hour": HourDisplayFormat},
		},
	}
	cfg := BuildChartConfig(chart)

	x := cfg.Options.Scales.X
	assert.Equal(t, "time", x.Type)
	assert.Nil(t, x.Ticks)
	assert.False(t, x.Offset)
	require.NotNil(t, x.Time)
	assert.Equal(t, "hour", x.Time.Unit)
	assert.Equal(t, HourDisplayFormat, x.Time.TooltipFormat)
	assert.Equal(t, Padding{}, cfg.Options.Layout.Padding)
	assert.Equal(t, "blue", cfg.Data.Datasets[0].BorderColor)
}

func TestBuildChartConfig_Deterministic(t *testing.T) {
	a, err := json.Marshal(BuildChartConfig(crossSectionChart()))
	require.NoError(t, err)
	b, err := json.Marshal(BuildChartConfig(crossSectionChart()))
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Contains(t, string(a), `"autoSkip":false`)
}
