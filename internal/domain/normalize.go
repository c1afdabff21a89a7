package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateKey is the time-series record field holding the sample timestamp.
const DateKey = "Date"

// Time display formats understood by the browser's date adapter.
const (
	HourDisplayFormat    = "MMM D, YYYY, HH:mm"
	DefaultTooltipFormat = "ll"
)

// dateLayouts are tried in order. The backend serializes timestamps as
// RFC 1123 with a GMT zone; the rest cover hand-written fixtures and
// alternative backends.
var dateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// valueKeyPolicy declares which record field holds a time-series value.
// An empty declared key means "the first field that is not the date".
type valueKeyPolicy struct {
	declared string
}

func valueKeyFor(t DataType, sel Selection) valueKeyPolicy {
	if t == Sediment && sel.SedimentColumn != "" {
		return valueKeyPolicy{declared: sel.SedimentColumn}
	}
	return valueKeyPolicy{}
}

func (p valueKeyPolicy) resolve(first Record) string {
	if p.declared != "" {
		return p.declared
	}
	for _, k := range first.Keys() {
		if k != DateKey {
			return k
		}
	}
	return ""
}

// Normalize interprets a plotting payload for the given data type.
func Normalize(t DataType, raw json.RawMessage, sel Selection) (Chart, error) {
	if t == "" {
		return Chart{}, Errorf(KindInvalidSelection, "please select a data type")
	}
	if t == CrossSection {
		var p CrossSectionPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return Chart{}, WrapError(KindMalformedResponse, "decode cross-section response", err)
		}
		return NormalizeCrossSection(p, sel)
	}

	var p TimeSeriesPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Chart{}, WrapError(KindMalformedResponse, "decode time-series response", err)
	}
	return NormalizeTimeSeries(t, p, sel)
}

// NormalizeCrossSection produces one series per year present in the payload.
func NormalizeCrossSection(p CrossSectionPayload, sel Selection) (Chart, error) {
	chart := Chart{
		Series: []NormalizedSeries{},
		Axis: AxisMetadata{
			XKind:  XLinear,
			XLabel: "Distance (m)",
			YLabel: "RL (Elevation)",
		},
	}

	years := []struct {
		points []SurveyPoint
		year   string
		role   Role
	}{
		{p.Year1, sel.Year1, RoleComparisonA},
		{p.Year2, sel.Year2, RoleComparisonB},
	}
	for _, y := range years {
		if y.points == nil {
			continue
		}
		points := make([]Point, 0, len(y.points))
		for i, sp := range y.points {
			if sp.Distance == nil {
				return Chart{}, Errorf(KindMalformedResponse, "cross-section point %d has no Distance", i)
			}
			points = append(points, Point{X: *sp.Distance, Y: sp.RL})
		}
		chart.Series = append(chart.Series, NormalizedSeries{
			Label:  "Cross-Section " + y.year,
			Points: points,
			Role:   y.role,
		})
	}
	return chart, nil
}

// NormalizeTimeSeries produces the single series of a time-series plot.
func NormalizeTimeSeries(t DataType, p TimeSeriesPayload, sel Selection) (Chart, error) {
	records := p.PlotData
	if len(records) == 0 {
		if t == Sediment {
			return Chart{}, Errorf(KindEmptyResult, "no data available for the selected sediment type: %s", sel.SedimentColumn)
		}
		return Chart{}, Errorf(KindEmptyResult, "no time series data available")
	}

	key := valueKeyFor(t, sel).resolve(records[0])
	if t == Sediment && !anyValue(records, key) {
		return Chart{}, Errorf(KindEmptyResult, "no data available for the selected sediment type: %s", key)
	}

	points := make([]Point, 0, len(records))
	for i, rec := range records {
		rawDate, ok := rec.Field(DateKey)
		if !ok {
			return Chart{}, Errorf(KindMalformedResponse, "record %d has no %s field", i, DateKey)
		}
		ts, err := parseDate(rawDate)
		if err != nil {
			return Chart{}, WrapError(KindMalformedResponse, fmt.Sprintf("record %d", i), err)
		}
		var y *float64
		if key != "" {
			rawValue, _ := rec.Field(key)
			if y, err = parseValue(rawValue); err != nil {
				return Chart{}, WrapError(KindMalformedResponse, fmt.Sprintf("record %d field %q", i, key), err)
			}
		}
		points = append(points, Point{X: float64(ts.UnixMilli()), Y: y})
	}

	yLabel := key
	if yLabel == "" {
		yLabel = "Value"
	}
	return Chart{
		Series: []NormalizedSeries{{
			Label:  fmt.Sprintf("%s - %s", t, sel.Station),
			Points: points,
			Role:   RolePrimary,
		}},
		Axis: timeAxis(t, sel, yLabel),
	}, nil
}

// timeAxis picks the time formatting regime. Sub-daily water level must tick
// by the hour so samples are not folded into calendar days.
func timeAxis(t DataType, sel Selection, yLabel string) AxisMetadata {
	axis := AxisMetadata{
		XKind:  XTime,
		XLabel: "Date",
		YLabel: yLabel,
	}
	if t == WaterLevel && sel.WaterLevelSubtype == SubDailyWaterLevel {
		axis.TimeUnit = "hour"
		axis.TooltipFormat = HourDisplayFormat
		axis.DisplayFormats = map[string]string{"hour": HourDisplayFormat}
		return axis
	}
	axis.TooltipFormat = DefaultTooltipFormat
	return axis
}

func anyValue(records []Record, key string) bool {
	if key == "" {
		return false
	}
	for _, rec := range records {
		if raw, ok := rec.Field(key); ok && !isNull(raw) {
			return true
		}
	}
	return false
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func parseDate(raw json.RawMessage) (time.Time, error) {
	if isNull(raw) {
		return time.Time{}, fmt.Errorf("null %s", DateKey)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var ms float64
		if err := json.Unmarshal(raw, &ms); err != nil {
			return time.Time{}, fmt.Errorf("unsupported %s value %s", DateKey, raw)
		}
		return time.UnixMilli(int64(ms)).UTC(), nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable %s %q", DateKey, s)
}

func parseValue(raw json.RawMessage) (*float64, error) {
	if isNull(raw) {
		return nil, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unsupported value %s", raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("non-numeric value %q", s)
	}
	return &f, nil
}
