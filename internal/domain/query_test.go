package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery_Load(t *testing.T) {
	t.Run("water level with subtype", func(t *testing.T) {
		q, err := BuildQuery(OpLoad, Selection{DataType: WaterLevel, WaterLevelSubtype: SubDailyWaterLevel})
		require.NoError(t, err)
		assert.Equal(t, EndpointLoadData, q.Endpoint)
		assert.Equal(t, string(WaterLevel), q.Params.Get("data_type"))
		assert.Equal(t, SubDailyWaterLevel, q.Params.Get("water_level_type"))
	})

	t.Run("subtype never sent for other types", func(t *testing.T) {
		q, err := BuildQuery(OpLoad, Selection{DataType: Discharge, WaterLevelSubtype: DailyWaterLevel})
		require.NoError(t, err)
		assert.False(t, q.Params.Has("water_level_type"))
	})

	t.Run("requires data type", func(t *testing.T) {
		_, err := BuildQuery(OpLoad, Selection{})
		assert.ErrorIs(t, err, ErrInvalidSelection)
	})
}

func TestBuildQuery_ListStationsAndYears(t *testing.T) {
	q, err := BuildQuery(OpListStations, Selection{DataType: CrossSection, River: "Koshi"})
	require.NoError(t, err)
	assert.Equal(t, "/stations?data_type=Cross+section&river=Koshi", q.String())

	_, err = BuildQuery(OpListStations, Selection{DataType: CrossSection})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	q, err = BuildQuery(OpListYears, Selection{DataType: CrossSection, River: "Koshi", Station: "695"})
	require.NoError(t, err)
	assert.Equal(t, "/available_years?station_id=695", q.String())

	_, err = BuildQuery(OpListYears, Selection{DataType: CrossSection, River: "Koshi"})
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestBuildQuery_CrossSectionYears(t *testing.T) {
	tests := []struct {
		name         string
		year1, year2 string
		want         string
	}{
		{"both years", "2019", "2021", "/plot_cross_section?station_id=695&year1=2019&year2=2021"},
		{"second is None", "2019", None, "/plot_cross_section?station_id=695&year1=2019"},
		{"first is None", None, "2021", "/plot_cross_section?station_id=695&year2=2021"},
		{"neither", None, "", "/plot_cross_section?station_id=695"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Selection{DataType: CrossSection, Station: "695", Year1: tt.year1, Year2: tt.year2}
			q, err := BuildQuery(OpPlot, sel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.String())
		})
	}
}

func TestBuildQuery_YearExcludesDateRange(t *testing.T) {
	base := Selection{DataType: Discharge, Station: "Chatara", StartDate: "2020-01-01", EndDate: "2020-06-30"}

	t.Run("year set", func(t *testing.T) {
		sel := base
		sel.Year = "2020"
		q, err := BuildQuery(OpPlot, sel)
		require.NoError(t, err)
		assert.Equal(t, EndpointPlotTimeSeries, q.Endpoint)
		assert.Equal(t, "2020", q.Params.Get("year"))
		assert.False(t, q.Params.Has("start_date"))
		assert.False(t, q.Params.Has("end_date"))
	})

	t.Run("year None", func(t *testing.T) {
		sel := base
		sel.Year = None
		q, err := BuildQuery(OpPlot, sel)
		require.NoError(t, err)
		assert.False(t, q.Params.Has("year"))
		assert.Equal(t, "2020-01-01", q.Params.Get("start_date"))
		assert.Equal(t, "2020-06-30", q.Params.Get("end_date"))
	})

	t.Run("range sent even when empty", func(t *testing.T) {
		q, err := BuildQuery(OpPlot, Selection{DataType: Salinity, Station: "Chatara"})
		require.NoError(t, err)
		assert.True(t, q.Params.Has("start_date"))
		assert.True(t, q.Params.Has("end_date"))
		assert.Empty(t, q.Params.Get("start_date"))
	})
}

func TestBuildQuery_SedimentColumn(t *testing.T) {
	sel := Selection{DataType: Sediment, Station: "Chatara", Year: "2019", SedimentColumn: "Bed Load"}
	q, err := BuildQuery(OpPlot, sel)
	require.NoError(t, err)
	assert.Equal(t, "Bed Load", q.Params.Get("column"))

	sel.DataType = Discharge
	q, err = BuildQuery(OpPlot, sel)
	require.NoError(t, err)
	assert.False(t, q.Params.Has("column"))
}

func TestBuildQuery_PlotRequiresStation(t *testing.T) {
	_, err := BuildQuery(OpPlot, Selection{DataType: Discharge, River: "Koshi"})
	require.Error(t, err)
	assert.Equal(t, KindInvalidSelection, KindOf(err))
	assert.Contains(t, err.Error(), "please select a station")
}

func TestBuildQuery_Download(t *testing.T) {
	t.Run("time series always sends every filter", func(t *testing.T) {
		q, err := BuildQuery(OpDownload, Selection{DataType: Discharge, Station: "Chatara"})
		require.NoError(t, err)
		assert.Equal(t, EndpointDownloadData, q.Endpoint)
		assert.Equal(t, None, q.Params.Get("year"))
		assert.True(t, q.Params.Has("start_date"))
		assert.True(t, q.Params.Has("end_date"))
		assert.False(t, q.Params.Has("data_type"))
	})

	t.Run("year kept alongside the range", func(t *testing.T) {
		sel := Selection{DataType: Discharge, Station: "Chatara", Year: "2019", StartDate: "2019-02-01"}
		q, err := BuildQuery(OpDownload, sel)
		require.NoError(t, err)
		assert.Equal(t, "2019", q.Params.Get("year"))
		assert.Equal(t, "2019-02-01", q.Params.Get("start_date"))
	})

	t.Run("cross section mirrors plot", func(t *testing.T) {
		sel := Selection{DataType: CrossSection, Station: "695", Year1: "2019", Year2: None}
		plot, err := BuildQuery(OpPlot, sel)
		require.NoError(t, err)
		dl, err := BuildQuery(OpDownload, sel)
		require.NoError(t, err)
		assert.Equal(t, plot.Params, dl.Params)
	})
}

func TestBuildQuery_UnknownOperation(t *testing.T) {
	_, err := BuildQuery(Operation("delete"), Selection{DataType: Discharge})
	assert.ErrorIs(t, err, ErrInvalidSelection)
}
