package domain

import "time"

// None is the selectable "no filter chosen" option. It differs from an empty
// field, which means the picker was never populated or was reset.
const None = "None"

// dateLayout is the HTML date input format used for start/end dates.
const dateLayout = "2006-01-02"

// Selection is the user's current narrowing of the data. Station holds a
// station ID for cross-section surveys and a station name for everything else.
type Selection struct {
	DataType          DataType `json:"data_type,omitempty"`
	WaterLevelSubtype string   `json:"water_level_type,omitempty"`
	River             string   `json:"river,omitempty"`
	Station           string   `json:"station,omitempty"`
	Year              string   `json:"year,omitempty"`
	Year1             string   `json:"year1,omitempty"`
	Year2             string   `json:"year2,omitempty"`
	StartDate         string   `json:"start_date,omitempty"`
	EndDate           string   `json:"end_date,omitempty"`
	SedimentColumn    string   `json:"column,omitempty"`
}

// IsSet reports whether a sentinel-aware field carries a real value.
func IsSet(v string) bool {
	return v != "" && v != None
}

// HasYear reports whether the single-year filter is active.
func (s Selection) HasYear() bool { return IsSet(s.Year) }

// HasDateRange reports whether either end of the date range was entered.
func (s Selection) HasDateRange() bool { return s.StartDate != "" || s.EndDate != "" }

// IsSubDaily reports whether the selection is in the 3/6-hourly water-level regime.
func (s Selection) IsSubDaily() bool {
	return s.DataType == WaterLevel && s.WaterLevelSubtype == SubDailyWaterLevel
}

// Visibility tells the browser which dependent pickers to show.
type Visibility struct {
	SedimentColumn       bool `json:"sediment_column"`
	WaterLevelSubtype    bool `json:"water_level_type"`
	CrossSectionControls bool `json:"cross_section_controls"`
	TimeSeriesControls   bool `json:"time_series_controls"`
}

// VisibilityFor derives the picker visibility for a data type.
func VisibilityFor(t DataType) Visibility {
	return Visibility{
		SedimentColumn:       t == Sediment,
		WaterLevelSubtype:    t == WaterLevel,
		CrossSectionControls: t == CrossSection,
		TimeSeriesControls:   t != CrossSection,
	}
}

// Options are the values each picker currently offers.
type Options struct {
	Rivers          []string `json:"rivers"`
	SedimentColumns []string `json:"sediment_columns"`
	Stations        []string `json:"stations"`
	Years           []string `json:"years"`
	ComparisonYears []string `json:"comparison_years"`
}

// Phase is the abstract position of a selection in the narrowing sequence.
type Phase string

const (
	PhaseEmpty             Phase = "Empty"
	PhaseTypeChosen        Phase = "TypeChosen"
	PhaseRiverChosen       Phase = "RiverChosen"
	PhaseStationChosen     Phase = "StationChosen"
	PhaseYearOrRangeChosen Phase = "YearOrRangeChosen"
	PhaseTwoYearsChosen    Phase = "TwoYearsChosen"
)

// PhaseOf classifies a selection. The None river a load leaves selected
// counts as no river.
func PhaseOf(s Selection) Phase {
	switch {
	case s.DataType == "":
		return PhaseEmpty
	case s.Station != "":
		if s.DataType == CrossSection {
			if IsSet(s.Year1) || IsSet(s.Year2) {
				return PhaseTwoYearsChosen
			}
			return PhaseStationChosen
		}
		if s.HasYear() || s.HasDateRange() {
			return PhaseYearOrRangeChosen
		}
		return PhaseStationChosen
	case IsSet(s.River):
		return PhaseRiverChosen
	default:
		return PhaseTypeChosen
	}
}

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
