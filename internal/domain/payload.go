package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text is a backend scalar that may arrive as a string, a number or null.
// Spreadsheet-sourced columns such as station IDs and years are not typed
// consistently by the backend.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*t = Text(trimIntegral(n.String()))
	return nil
}

// trimIntegral renders "2019.0" as "2019" so years and IDs read naturally.
func trimIntegral(s string) string {
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) && strings.ContainsAny(s, ".eE") {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// LoadResult is the /load_data payload.
type LoadResult struct {
	Rivers          []Text   `json:"rivers"`
	SedimentColumns []string `json:"sediment_columns,omitempty"`
}

// StationRecord is one row of the /stations payload. Cross-section responses
// carry no Station_Name.
type StationRecord struct {
	StationID   Text    `json:"Station_ID"`
	StationName Text    `json:"Station_Name,omitempty"`
	Latitude    float64 `json:"Latitude"`
	Longitude   float64 `json:"Longitude"`
	River       Text    `json:"River,omitempty"`
	StationType Text    `json:"Station_Type,omitempty"`
}

type stationsPayload struct {
	Stations []StationRecord `json:"stations"`
}

type yearsPayload struct {
	Years []Text `json:"years"`
}

// DecodeLoadResult parses a /load_data body.
func DecodeLoadResult(raw json.RawMessage) (LoadResult, error) {
	var out LoadResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return LoadResult{}, WrapError(KindMalformedResponse, "decode load_data response", err)
	}
	return out, nil
}

// DecodeStations parses a /stations body.
func DecodeStations(raw json.RawMessage) ([]StationRecord, error) {
	var out stationsPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, WrapError(KindMalformedResponse, "decode stations response", err)
	}
	return out.Stations, nil
}

// DecodeYears parses an /available_years body into display strings.
func DecodeYears(raw json.RawMessage) ([]string, error) {
	var out yearsPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, WrapError(KindMalformedResponse, "decode available_years response", err)
	}
	years := make([]string, 0, len(out.Years))
	for _, y := range out.Years {
		if y != "" {
			years = append(years, string(y))
		}
	}
	return years, nil
}

// Record is one time-series row. Key order is kept as received so the value
// column can be discovered the same way every time.
type Record struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewRecord builds a record from ordered key/value pairs; used by tests and fixtures.
func NewRecord(pairs ...any) Record {
	r := Record{values: make(map[string]json.RawMessage, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		key := fmt.Sprint(pairs[i])
		raw, _ := json.Marshal(pairs[i+1])
		if _, ok := r.values[key]; !ok {
			r.keys = append(r.keys, key)
		}
		r.values[key] = raw
	}
	return r
}

// Keys returns the record's field names in wire order.
func (r Record) Keys() []string { return r.keys }

// Field returns the raw JSON for key.
func (r Record) Field(key string) (json.RawMessage, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(r.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}
	r.keys = r.keys[:0]
	r.values = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("record field %q: %w", key, err)
		}
		if _, seen := r.values[key]; !seen {
			r.keys = append(r.keys, key)
		}
		r.values[key] = v
	}
	_, err = dec.Token()
	return err
}

// TimeSeriesPayload is the /plot_time_series body.
type TimeSeriesPayload struct {
	PlotData []Record `json:"plot_data"`
}

// SurveyPoint is one cross-section measurement.
type SurveyPoint struct {
	Distance *float64 `json:"Distance"`
	RL       *float64 `json:"RL"`
}

// CrossSectionPayload is the /plot_cross_section body. A nil slice means the
// year key was absent.
type CrossSectionPayload struct {
	Year1 []SurveyPoint `json:"year1,omitempty"`
	Year2 []SurveyPoint `json:"year2,omitempty"`
}
