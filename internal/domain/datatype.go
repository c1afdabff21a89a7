package domain

import "strings"

// DataType is the top-level category of monitored quantity. The values are
// the backend's data folder names and are sent on the wire as-is.
type DataType string

const (
	WaterLevel   DataType = "Water level"
	Discharge    DataType = "Discharge"
	CrossSection DataType = "Cross section"
	Sediment     DataType = "Sediment"
	Salinity     DataType = "Salinity"
	WaterQuality DataType = "Water quality"
)

// DataTypes lists every data type in the order the picker shows them.
var DataTypes = []DataType{WaterLevel, Discharge, CrossSection, Sediment, Salinity, WaterQuality}

// Water-level sub-folders. Only the sub-daily regime changes chart behaviour.
const (
	SubDailyWaterLevel = "3 or 6 Hourly Data"
	DailyWaterLevel    = "Daily Data"
)

// ParseDataType resolves a picker value to a DataType.
func ParseDataType(s string) (DataType, error) {
	s = strings.TrimSpace(s)
	for _, t := range DataTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", Errorf(KindInvalidSelection, "unknown data type %q", s)
}

// IsTimeSeries reports whether the type is plotted against a date axis.
func (t DataType) IsTimeSeries() bool {
	return t != "" && t != CrossSection
}

// StationKey names the station field a type's station picker is keyed on.
// Cross-section surveys only carry station IDs.
func (t DataType) StationKey() string {
	if t == CrossSection {
		return "Station_ID"
	}
	return "Station_Name"
}
