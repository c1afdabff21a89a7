package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
)

const plotPayload = `{"plot_data":[
	{"Date":"Wed, 01 Jan 2020 00:00:00 GMT","Discharge":12.5},
	{"Date":"Thu, 02 Jan 2020 00:00:00 GMT","Discharge":null}
]}`

func TestRun_TimeSeriesJSON(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-t", "Discharge", "-s", "Chatara"}, strings.NewReader(plotPayload), &out)
	require.NoError(t, err)

	var cfg domain.ChartConfig
	require.NoError(t, json.Unmarshal(out.Bytes(), &cfg))
	assert.Equal(t, "line", cfg.Type)
	require.Len(t, cfg.Data.Datasets, 1)
	assert.Len(t, cfg.Data.Datasets[0].Data, 2)
	assert.Equal(t, "time", cfg.Options.Scales.X.Type)
}

func TestRun_CrossSectionHTMLFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"year1":[{"Distance":0,"RL":101.2}],"year2":[{"Distance":0,"RL":100.4}]}`), 0o600))

	var out bytes.Buffer
	err := run([]string{"-t", "Cross section", "-s", "690", "--year1", "2015", "--year2", "2019", "-i", path, "-f", "html"}, nil, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Cross section - 690")
	assert.Contains(t, out.String(), "2015")
	assert.Contains(t, out.String(), "2019")
}

func TestRun_Map(t *testing.T) {
	stations := `{"stations":[{"Station_ID":695,"Station_Name":"Chatara","Latitude":26.8656,"Longitude":87.1543,"River":"Koshi"}]}`

	var out bytes.Buffer
	require.NoError(t, run([]string{"-t", "Discharge", "--map"}, strings.NewReader(stations), &out))

	var cfg domain.MapConfig
	require.NoError(t, json.Unmarshal(out.Bytes(), &cfg))
	assert.Len(t, cfg.Markers, 1)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
	}{
		{name: "missing data type", args: []string{"-s", "Chatara"}, input: plotPayload},
		{name: "unknown data type", args: []string{"-t", "Snowfall"}, input: plotPayload},
		{name: "unknown format", args: []string{"-t", "Discharge", "-f", "svg"}, input: plotPayload},
		{name: "empty result", args: []string{"-t", "Discharge"}, input: `{"plot_data":[]}`},
		{name: "malformed payload", args: []string{"-t", "Discharge"}, input: `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, run(tt.args, strings.NewReader(tt.input), &out))
		})
	}
}
