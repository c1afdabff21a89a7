package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMapConfig_NoStations(t *testing.T) {
	_, err := BuildMapConfig(Discharge, nil, MapOptions{})
	require.Error(t, err)
	assert.Equal(t, KindNoStations, KindOf(err))
}

func TestBuildMapConfig_Markers(t *testing.T) {
	stations := []StationRecord{
		{StationID: "695", StationName: "Chatara", Latitude: 26.8656789, Longitude: 87.1543, River: "Koshi", StationType: "Hydrometric"},
		{StationID: "690", Latitude: 27.1, Longitude: 87.2},
	}

	cfg, err := BuildMapConfig(Discharge, stations, MapOptions{})
	require.NoError(t, err)

	assert.Equal(t, LatLng{Lat: 26.8656789, Lon: 87.1543}, cfg.Center)
	assert.Equal(t, DefaultMapZoom, cfg.Zoom)
	assert.Equal(t, DefaultMapTileURL, cfg.TileURL)
	require.Len(t, cfg.Markers, 2)

	assert.Equal(t, []PopupField{
		{"Station Name", "Chatara"},
		{"Station ID", "695"},
		{"River", "Koshi"},
		{"Station Type", "Hydrometric"},
		{"Latitude", "26.86568"},
		{"Longitude", "87.15430"},
	}, cfg.Markers[0].Popup)

	second := cfg.Markers[1].Popup
	assert.Equal(t, "No name available", second[0].Value)
	assert.Equal(t, "No River available", second[2].Value)
	assert.Equal(t, "No Type available", second[3].Value)
}

func TestBuildMapConfig_CrossSectionHasNoName(t *testing.T) {
	cfg, err := BuildMapConfig(CrossSection, []StationRecord{{Latitude: 1, Longitude: 2}}, MapOptions{Zoom: 11, TileURL: "https://tiles.example/{z}/{x}/{y}.png"})
	require.NoError(t, err)

	popup := cfg.Markers[0].Popup
	assert.Equal(t, "Station ID", popup[0].Label)
	assert.Equal(t, "No ID available", popup[0].Value)
	assert.Len(t, popup, 5)
	assert.Equal(t, 11, cfg.Zoom)
	assert.Equal(t, "https://tiles.example/{z}/{x}/{y}.png", cfg.TileURL)
}

func TestBuildMapConfig_PopupHTMLEscapes(t *testing.T) {
	cfg, err := BuildMapConfig(Discharge, []StationRecord{{StationName: "<b>Chatara</b>", StationID: "695"}}, MapOptions{})
	require.NoError(t, err)

	html := cfg.Markers[0].PopupHTML
	assert.Contains(t, html, "<b>Station Name:</b> &lt;b&gt;Chatara&lt;/b&gt;")
	assert.Contains(t, html, "<br><b>Station ID:</b> 695")
}
