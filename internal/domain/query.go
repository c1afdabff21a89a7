package domain

import "net/url"

// Operation is a backend call a user action can trigger.
type Operation string

const (
	OpLoad         Operation = "load"
	OpListStations Operation = "listStations"
	OpListYears    Operation = "listYears"
	OpPlot         Operation = "plot"
	OpDownload     Operation = "download"
)

// Backend endpoint paths.
const (
	EndpointLoadData         = "/load_data"
	EndpointStations         = "/stations"
	EndpointAvailableYears   = "/available_years"
	EndpointPlotTimeSeries   = "/plot_time_series"
	EndpointPlotCrossSection = "/plot_cross_section"
	EndpointDownloadData     = "/download_data"
)

// DownloadFilename is the attachment name the CSV export is saved under.
const DownloadFilename = "plot_data.csv"

// Query is a fully-resolved backend request.
type Query struct {
	Endpoint string
	Params   url.Values
}

// String renders the request path with its encoded query string.
func (q Query) String() string {
	if len(q.Params) == 0 {
		return q.Endpoint
	}
	return q.Endpoint + "?" + q.Params.Encode()
}

// BuildQuery derives the backend request for op from the selection. It fails
// with InvalidSelection when a field the operation needs is unset.
func BuildQuery(op Operation, sel Selection) (Query, error) {
	switch op {
	case OpLoad:
		return buildLoadQuery(sel)
	case OpListStations:
		return buildStationsQuery(sel)
	case OpListYears:
		return buildYearsQuery(sel)
	case OpPlot:
		return buildPlotQuery(sel)
	case OpDownload:
		return buildDownloadQuery(sel)
	default:
		return Query{}, Errorf(KindInvalidSelection, "unknown operation %q", op)
	}
}

func buildLoadQuery(sel Selection) (Query, error) {
	if sel.DataType == "" {
		return Query{}, Errorf(KindInvalidSelection, "please select a data type")
	}
	p := url.Values{}
	p.Set("data_type", string(sel.DataType))
	if sel.DataType == WaterLevel && sel.WaterLevelSubtype != "" {
		p.Set("water_level_type", sel.WaterLevelSubtype)
	}
	return Query{Endpoint: EndpointLoadData, Params: p}, nil
}

func buildStationsQuery(sel Selection) (Query, error) {
	if sel.DataType == "" {
		return Query{}, Errorf(KindInvalidSelection, "please select a data type")
	}
	if sel.River == "" {
		return Query{}, Errorf(KindInvalidSelection, "please select a river")
	}
	p := url.Values{}
	p.Set("river", sel.River)
	p.Set("data_type", string(sel.DataType))
	return Query{Endpoint: EndpointStations, Params: p}, nil
}

func buildYearsQuery(sel Selection) (Query, error) {
	if sel.Station == "" {
		return Query{}, Errorf(KindInvalidSelection, "please select a station")
	}
	p := url.Values{}
	p.Set("station_id", sel.Station)
	return Query{Endpoint: EndpointAvailableYears, Params: p}, nil
}

func buildPlotQuery(sel Selection) (Query, error) {
	if sel.Station == "" {
		return Query{}, Errorf(KindInvalidSelection, "please select a station")
	}
	if sel.DataType == "" {
		return Query{}, Errorf(KindInvalidSelection, "please select a data type")
	}
	if sel.DataType == CrossSection {
		return Query{Endpoint: EndpointPlotCrossSection, Params: crossSectionParams(sel)}, nil
	}

	p := url.Values{}
	p.Set("station", sel.Station)
	p.Set("data_type", string(sel.DataType))
	if sel.HasYear() {
		p.Set("year", sel.Year)
	} else {
		// Both are sent even when empty; the backend validates them.
		p.Set("start_date", sel.StartDate)
		p.Set("end_date", sel.EndDate)
	}
	if sel.DataType == Sediment && sel.SedimentColumn != "" {
		p.Set("column", sel.SedimentColumn)
	}
	return Query{Endpoint: EndpointPlotTimeSeries, Params: p}, nil
}

// buildDownloadQuery mirrors the plot parameters for cross sections. For time
// series the download endpoint takes year, start_date and end_date together,
// with year set to None when unset.
func buildDownloadQuery(sel Selection) (Query, error) {
	if sel.Station == "" {
		return Query{}, Errorf(KindInvalidSelection, "please select a station")
	}
	if sel.DataType == CrossSection {
		return Query{Endpoint: EndpointDownloadData, Params: crossSectionParams(sel)}, nil
	}

	year := sel.Year
	if year == "" {
		year = None
	}
	p := url.Values{}
	p.Set("station", sel.Station)
	p.Set("year", year)
	p.Set("start_date", sel.StartDate)
	p.Set("end_date", sel.EndDate)
	return Query{Endpoint: EndpointDownloadData, Params: p}, nil
}

func crossSectionParams(sel Selection) url.Values {
	p := url.Values{}
	p.Set("station_id", sel.Station)
	if IsSet(sel.Year1) {
		p.Set("year1", sel.Year1)
	}
	if IsSet(sel.Year2) {
		p.Set("year2", sel.Year2)
	}
	return p
}
