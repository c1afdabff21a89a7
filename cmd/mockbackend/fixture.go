package main

import (
	"math"
	"slices"
	"time"

	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
)

// Value columns as the data workbooks name them.
var valueColumns = map[domain.DataType][]string{
	domain.WaterLevel:   {"WL(m)"},
	domain.Discharge:    {"Discharge(m)3/s"},
	domain.Sediment:     {"Total Sediment Kg/s", "MaxSandConcPPM"},
	domain.Salinity:     {"salinity"},
	domain.WaterQuality: {"wq"},
}

type station struct {
	ID, Name, River, Type string
	Lat, Lon              float64
}

// row is one observation. Cross-section rows carry a survey point instead
// of values.
type row struct {
	station  station
	date     time.Time
	values   map[string]*float64
	distance float64
	rl       float64
}

type dataset struct {
	rows    []row
	columns []string
}

var gaugeStations = []station{
	{ID: "695", Name: "Chatara", River: "Koshi", Type: "Hydrometric", Lat: 26.8656, Lon: 87.1543},
	{ID: "690", Name: "Mulghat", River: "Koshi", Type: "Hydrometric", Lat: 26.9318, Lon: 87.3283},
	{ID: "589", Name: "Sundarijal", River: "Bagmati", Type: "Hydrometric", Lat: 27.7594, Lon: 85.4253},
	{ID: "550", Name: "Pandheradobhan", River: "Bagmati", Lat: 27.0175, Lon: 85.4942},
}

var surveyStations = []station{
	{ID: "KS-01", River: "Koshi", Lat: 26.8701, Lon: 87.1602},
	{ID: "BG-03", River: "Bagmati", Lat: 27.0201, Lon: 85.4901},
}

var (
	seriesYears = []int{2019, 2020, 2021}
	surveyYears = []int{2015, 2019}
)

// buildDataset synthesizes a deterministic dataset for one data type. The
// sub-daily water level regime samples every six hours.
func buildDataset(t domain.DataType, subtype string) dataset {
	if t == domain.CrossSection {
		return buildSurvey()
	}

	step := 24 * time.Hour
	if t == domain.WaterLevel && subtype == domain.SubDailyWaterLevel {
		step = 6 * time.Hour
	}
	columns := valueColumns[t]

	var rows []row
	for si, st := range gaugeStations {
		for _, year := range seriesYears {
			start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(1, 0, 0)
			for d, i := start, 0; d.Before(end); d, i = d.Add(step), i+1 {
				values := make(map[string]*float64, len(columns))
				for ci, col := range columns {
					values[col] = sample(t, si, ci, year, i)
				}
				rows = append(rows, row{station: st, date: d, values: values})
			}
		}
	}
	return dataset{rows: rows, columns: columns}
}

// sample is a seasonal curve. The second sediment column is empty for the
// first year, and every 97th sample is missing.
func sample(t domain.DataType, stationIdx, columnIdx, year, i int) *float64 {
	if i%97 == 96 {
		return nil
	}
	if t == domain.Sediment && columnIdx == 1 && year == seriesYears[0] {
		return nil
	}
	base := 10 * float64(stationIdx+1) * float64(columnIdx+1)
	v := base + base*0.6*math.Sin(float64(i)/58.0) + float64(year-seriesYears[0])
	v = math.Round(v*100) / 100
	return &v
}

func buildSurvey() dataset {
	var rows []row
	for si, st := range surveyStations {
		for yi, year := range surveyYears {
			date := time.Date(year, time.March, 15, 0, 0, 0, 0, time.UTC)
			for p := 0; p <= 20; p++ {
				dist := float64(p * 10)
				depth := 6 * math.Sin(math.Pi*float64(p)/20)
				rl := 100 + float64(si)*12 - depth - float64(yi)*0.8
				rows = append(rows, row{station: st, date: date, distance: dist, rl: math.Round(rl*100) / 100})
			}
		}
	}
	return dataset{rows: rows}
}

func (d dataset) rivers() []string {
	var out []string
	for _, r := range d.rows {
		if !slices.Contains(out, r.station.River) {
			out = append(out, r.station.River)
		}
	}
	return out
}

func (d dataset) filter(keep func(row) bool) []row {
	var out []row
	for _, r := range d.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func years(rows []row) []int {
	var out []int
	for _, r := range rows {
		if y := r.date.Year(); !slices.Contains(out, y) {
			out = append(out, y)
		}
	}
	slices.Sort(out)
	return out
}
