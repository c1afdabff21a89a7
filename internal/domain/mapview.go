package domain

import (
	"fmt"
	"html"
	"strings"
)

// Map defaults.
const (
	DefaultMapZoom    = 8
	DefaultMapTileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
)

// LatLng is a WGS-84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PopupField is one labelled line of a marker popup.
type PopupField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Marker is a station pin.
type Marker struct {
	Position  LatLng       `json:"position"`
	Popup     []PopupField `json:"popup"`
	PopupHTML string       `json:"popup_html"`
}

// MapConfig is everything the browser's map needs to draw the station layer.
type MapConfig struct {
	Center  LatLng   `json:"center"`
	Zoom    int      `json:"zoom"`
	TileURL string   `json:"tile_url"`
	Markers []Marker `json:"markers"`
}

// MapOptions are deployment-level map settings.
type MapOptions struct {
	Zoom    int
	TileURL string
}

func (o MapOptions) withDefaults() MapOptions {
	if o.Zoom <= 0 {
		o.Zoom = DefaultMapZoom
	}
	if o.TileURL == "" {
		o.TileURL = DefaultMapTileURL
	}
	return o
}

// BuildMapConfig places one marker per station and centers on the first one.
func BuildMapConfig(t DataType, stations []StationRecord, o MapOptions) (MapConfig, error) {
	if len(stations) == 0 {
		return MapConfig{}, Errorf(KindNoStations, "no station data available for the selected river")
	}
	o = o.withDefaults()

	markers := make([]Marker, 0, len(stations))
	for _, st := range stations {
		fields := popupFields(t, st)
		markers = append(markers, Marker{
			Position:  LatLng{Lat: st.Latitude, Lon: st.Longitude},
			Popup:     fields,
			PopupHTML: popupHTML(fields),
		})
	}

	return MapConfig{
		Center:  LatLng{Lat: stations[0].Latitude, Lon: stations[0].Longitude},
		Zoom:    o.Zoom,
		TileURL: o.TileURL,
		Markers: markers,
	}, nil
}

// popupFields lists what a station popup shows. Cross-section station lists
// have no names, so the name line is left out.
func popupFields(t DataType, st StationRecord) []PopupField {
	fields := make([]PopupField, 0, 6)
	if t != CrossSection {
		fields = append(fields, PopupField{"Station Name", orDefault(st.StationName, "No name available")})
	}
	return append(fields,
		PopupField{"Station ID", orDefault(st.StationID, "No ID available")},
		PopupField{"River", orDefault(st.River, "No River available")},
		PopupField{"Station Type", orDefault(st.StationType, "No Type available")},
		PopupField{"Latitude", fmt.Sprintf("%.5f", st.Latitude)},
		PopupField{"Longitude", fmt.Sprintf("%.5f", st.Longitude)},
	)
}

func popupHTML(fields []PopupField) string {
	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = fmt.Sprintf("<b>%s:</b> %s", html.EscapeString(f.Label), html.EscapeString(f.Value))
	}
	return strings.Join(lines, "<br>")
}

func orDefault(v Text, fallback string) string {
	if v == "" {
		return fallback
	}
	return string(v)
}
