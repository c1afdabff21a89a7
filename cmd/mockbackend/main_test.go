package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	backendclient "github.com/couchcryptid/hydro-explorer-service/internal/adapter/backend"
	"github.com/couchcryptid/hydro-explorer-service/internal/dashboard"
	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
	"github.com/couchcryptid/hydro-explorer-service/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSession wires a real backend client against the mock backend.
func newSession(t *testing.T) *dashboard.Session {
	t.Helper()
	srv := httptest.NewServer(newBackend(discardLogger()).routes())
	t.Cleanup(srv.Close)

	metrics := observability.NewMetricsForTesting()
	client := backendclient.NewClient(srv.URL, 5*time.Second, discardLogger(), metrics)
	return dashboard.NewSession("mock", dashboard.Deps{
		Backend: client,
		Logger:  discardLogger(),
		Metrics: metrics,
	})
}

func narrow(t *testing.T, s *dashboard.Session, dataType, river, station string) dashboard.State {
	t.Helper()
	ctx := context.Background()
	_, err := s.ChangeDataType(dataType)
	require.NoError(t, err)
	_, err = s.Load(ctx)
	require.NoError(t, err)
	_, err = s.ChangeRiver(ctx, river)
	require.NoError(t, err)
	state, err := s.ChangeStation(ctx, station)
	require.NoError(t, err)
	return state
}

func TestMockBackend_DischargeYear(t *testing.T) {
	s := newSession(t)
	state := narrow(t, s, "Discharge", "Koshi", "Chatara")
	assert.Equal(t, []string{domain.None, "2019", "2020", "2021"}, state.Options.Years)

	_, err := s.SetYear("2020")
	require.NoError(t, err)
	cfg, err := s.Plot(context.Background())
	require.NoError(t, err)
	require.Len(t, cfg.Data.Datasets, 1)
	assert.Len(t, cfg.Data.Datasets[0].Data, 366)
	assert.Equal(t, "Discharge(m)3/s", cfg.Options.Scales.Y.Title.Text)
}

func TestMockBackend_DateRange(t *testing.T) {
	s := newSession(t)
	narrow(t, s, "Salinity", "Bagmati", "Sundarijal")

	_, err := s.SetDateRange("2021-01-01", "2021-01-10")
	require.NoError(t, err)
	cfg, err := s.Plot(context.Background())
	require.NoError(t, err)
	assert.Len(t, cfg.Data.Datasets[0].Data, 10)
}

func TestMockBackend_HourlyWaterLevel(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	_, err := s.ChangeDataType(string(domain.WaterLevel))
	require.NoError(t, err)
	_, err = s.ChangeWaterLevelType(domain.SubDailyWaterLevel)
	require.NoError(t, err)
	_, err = s.Load(ctx)
	require.NoError(t, err)
	_, err = s.ChangeRiver(ctx, "Koshi")
	require.NoError(t, err)
	_, err = s.ChangeStation(ctx, "Mulghat")
	require.NoError(t, err)
	_, err = s.SetYear("2019")
	require.NoError(t, err)

	cfg, err := s.Plot(ctx)
	require.NoError(t, err)
	assert.Len(t, cfg.Data.Datasets[0].Data, 365*4)
	require.NotNil(t, cfg.Options.Scales.X.Time)
	assert.Equal(t, "hour", cfg.Options.Scales.X.Time.Unit)
}

func TestMockBackend_CrossSectionComparison(t *testing.T) {
	s := newSession(t)
	state := narrow(t, s, "Cross section", "Koshi", "KS-01")
	assert.Equal(t, []string{domain.None, "2015", "2019"}, state.Options.ComparisonYears)

	_, err := s.SetComparisonYears("2015", "2019")
	require.NoError(t, err)
	cfg, err := s.Plot(context.Background())
	require.NoError(t, err)
	require.Len(t, cfg.Data.Datasets, 2)
	assert.Equal(t, "Cross-Section 2015", cfg.Data.Datasets[0].Label)
	assert.Len(t, cfg.Data.Datasets[1].Data, 21)
}

func TestMockBackend_SedimentColumnWithoutData(t *testing.T) {
	s := newSession(t)
	state := narrow(t, s, "Sediment", "Koshi", "Chatara")
	assert.Equal(t, []string{"Total Sediment Kg/s", "MaxSandConcPPM"}, state.Options.SedimentColumns)

	_, err := s.SetYear("2019")
	require.NoError(t, err)
	_, err = s.SetSedimentColumn("MaxSandConcPPM")
	require.NoError(t, err)

	_, err = s.Plot(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptyResult)
}

func TestMockBackend_MapAndDownload(t *testing.T) {
	s := newSession(t)
	narrow(t, s, "Discharge", "Koshi", "Chatara")
	ctx := context.Background()

	mapCfg, err := s.ShowMap(ctx)
	require.NoError(t, err)
	assert.Len(t, mapCfg.Markers, 2)

	_, err = s.SetYear("2021")
	require.NoError(t, err)
	csv, err := s.Download(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(csv), "River,Station_ID,Station_Name,Date,Discharge(m)3/s")
	assert.Contains(t, string(csv), "Koshi,695,Chatara,2021-01-01 00:00:00,")
}

func TestMockBackend_ReportsErrors(t *testing.T) {
	engine := newBackend(discardLogger()).routes()

	tests := []struct {
		path   string
		status int
	}{
		{"/", http.StatusOK},
		{"/load_data", http.StatusBadRequest},
		{"/load_data?data_type=Snowfall", http.StatusNotFound},
		{"/stations?river=Koshi", http.StatusNotFound},
		{"/available_years", http.StatusBadRequest},
		{"/plot_time_series", http.StatusBadRequest},
		{"/plot_cross_section?station_id=KS-01&year1=abc", http.StatusBadRequest},
		{"/download_data", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
