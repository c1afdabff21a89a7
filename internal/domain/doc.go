// Package domain models the hydrological dashboard's selection state and the
// mapping from that state to backend queries and chart configurations.
//
// # Data Source
//
// Monitoring data lives behind a separate backend service, organised in
// folders per data type: "Water level", "Discharge", "Cross section",
// "Sediment", "Salinity" and "Water quality". Water level has sub-folders,
// one of which ("3 or 6 Hourly Data") holds sub-daily readings.
//
// # Selection Narrowing
//
// A user narrows data type, then river, then station, then either a time
// filter (time-series types) or two survey years (cross sections):
//
//	Empty → TypeChosen → RiverChosen → StationChosen → YearOrRangeChosen
//	                                                 ↘ TwoYearsChosen
//
// Changing a level resets every level below it. Changing the data type
// resets everything, including the water-level subtype (unless the new type
// is Water level) and the sediment column. See [Controller].
//
// # Sentinels
//
// "None" is a real option in every year and river picker and means "no
// filter". It is distinct from an empty field, which means the picker has not
// been populated since the last reset. Query building omits both.
//
// # Station Identity
//
// Cross-section surveys identify stations by ID and carry no names. Every
// other data type identifies stations by name; the same Station field holds
// whichever the current type uses.
//
// # Payload Conventions
//
// Time-series rows are flat objects with a "Date" field (RFC 1123, GMT) and
// one or more value columns. Unless a sediment column is chosen, the value
// column is the first non-Date key of the first row, so key order matters
// and is preserved while decoding. See [Record].
//
// Cross-section payloads carry up to two keys, "year1" and "year2", each a
// list of {Distance, RL} survey points: distance across the channel in
// metres and reduced level (elevation). Missing RL values are gaps.
//
// Spreadsheet-sourced values such as station IDs and years arrive as strings
// or numbers interchangeably. See [Text].
package domain
