package domain

import "slices"

// Level is a cascading level whose responses are fenced by a generation token.
type Level int

const (
	LevelLoad Level = iota
	LevelStations
	LevelYears
	LevelPlot
	LevelMap
	levelCount
)

var levelNames = [levelCount]string{"load", "stations", "years", "plot", "map"}

func (l Level) String() string {
	if l < 0 || l >= levelCount {
		return "unknown"
	}
	return levelNames[l]
}

// Token identifies one in-flight request. Only the most recently issued token
// of a level is current; responses carrying an older one are discarded.
type Token struct {
	Level Level
	Gen   uint64
}

// Intent is a backend request the controller wants made on its behalf.
type Intent struct {
	Query Query
	Token Token
}

// Checkpoint is a saved controller state, used to roll back a user action
// whose request failed.
type Checkpoint struct {
	sel  Selection
	vis  Visibility
	opts Options
}

// Controller owns a Selection and applies the cascading reset rules. It is not
// safe for concurrent use; the owning session serializes access.
type Controller struct {
	sel  Selection
	vis  Visibility
	opts Options
	gens [levelCount]uint64
}

// NewController returns a controller with nothing selected.
func NewController() *Controller {
	c := &Controller{}
	c.vis = VisibilityFor("")
	return c
}

func (c *Controller) Selection() Selection   { return c.sel }
func (c *Controller) Visibility() Visibility { return c.vis }
func (c *Controller) Phase() Phase           { return PhaseOf(c.sel) }

// Options returns a copy of the picker options.
func (c *Controller) Options() Options {
	return Options{
		Rivers:          slices.Clone(c.opts.Rivers),
		SedimentColumns: slices.Clone(c.opts.SedimentColumns),
		Stations:        slices.Clone(c.opts.Stations),
		Years:           slices.Clone(c.opts.Years),
		ComparisonYears: slices.Clone(c.opts.ComparisonYears),
	}
}

// Save captures the user-visible state. Generation counters are not saved.
func (c *Controller) Save() Checkpoint {
	o := c.Options()
	return Checkpoint{sel: c.sel, vis: c.vis, opts: o}
}

// Restore returns to a saved state.
func (c *Controller) Restore(cp Checkpoint) {
	c.sel, c.vis, c.opts = cp.sel, cp.vis, cp.opts
}

// Current reports whether tok is the latest token issued for its level.
func (c *Controller) Current(tok Token) bool {
	return tok.Level >= 0 && tok.Level < levelCount && c.gens[tok.Level] == tok.Gen
}

// Issue starts a new request generation for a level, making every earlier
// token of that level stale.
func (c *Controller) Issue(l Level) Token {
	c.gens[l]++
	return Token{Level: l, Gen: c.gens[l]}
}

func (c *Controller) invalidate(levels ...Level) {
	for _, l := range levels {
		c.gens[l]++
	}
}

// OnDataTypeChange resets every dependent level and recomputes visibility.
// In-flight requests for the previous type are invalidated. The caller is
// responsible for releasing the rendered chart and map.
func (c *Controller) OnDataTypeChange(t DataType) {
	subtype := ""
	if t == WaterLevel {
		subtype = c.sel.WaterLevelSubtype
	}
	c.sel = Selection{DataType: t, WaterLevelSubtype: subtype}
	c.opts = Options{}
	c.vis = VisibilityFor(t)
	c.invalidate(LevelLoad, LevelStations, LevelYears, LevelPlot, LevelMap)
}

// SetWaterLevelSubtype picks the water-level regime. It only applies under
// the water-level type; the next load uses it.
func (c *Controller) SetWaterLevelSubtype(subtype string) error {
	if c.sel.DataType != WaterLevel {
		return Errorf(KindInvalidSelection, "water level type only applies to %s data", WaterLevel)
	}
	c.sel.WaterLevelSubtype = subtype
	c.invalidate(LevelPlot)
	return nil
}

// BeginLoad prepares the load request for the current data type.
func (c *Controller) BeginLoad() (Intent, error) {
	q, err := BuildQuery(OpLoad, c.sel)
	if err != nil {
		return Intent{}, err
	}
	return Intent{Query: q, Token: c.Issue(LevelLoad)}, nil
}

// ApplyLoad fills the river picker (with None first and selected) and, for
// sediment, the column picker. Stale results are ignored.
func (c *Controller) ApplyLoad(tok Token, res LoadResult) bool {
	if !c.Current(tok) {
		return false
	}
	rivers := make([]string, 0, len(res.Rivers)+1)
	rivers = append(rivers, None)
	for _, r := range res.Rivers {
		if r != "" {
			rivers = append(rivers, string(r))
		}
	}
	c.opts.Rivers = rivers
	c.opts.Stations, c.opts.Years, c.opts.ComparisonYears = nil, nil, nil
	c.sel.River = None
	c.clearStation()
	if c.sel.DataType == Sediment && res.SedimentColumns != nil {
		c.opts.SedimentColumns = slices.Clone(res.SedimentColumns)
		c.sel.SedimentColumn = ""
	}
	c.invalidate(LevelStations, LevelYears, LevelPlot, LevelMap)
	return true
}

// OnRiverChange selects a river and asks for its station list. An empty river
// is a no-op and yields a nil intent. Plots and maps requested for the
// previous river are invalidated.
func (c *Controller) OnRiverChange(river string) (*Intent, error) {
	if river == "" {
		return nil, nil
	}
	c.sel.River = river
	c.clearStation()
	c.opts.Stations, c.opts.Years, c.opts.ComparisonYears = nil, nil, nil
	c.invalidate(LevelYears, LevelPlot, LevelMap)

	q, err := BuildQuery(OpListStations, c.sel)
	if err != nil {
		return nil, err
	}
	return &Intent{Query: q, Token: c.Issue(LevelStations)}, nil
}

// ApplyStations fills the station picker. Cross-section pickers list station
// IDs; the others list names and skip unnamed stations.
func (c *Controller) ApplyStations(tok Token, stations []StationRecord) bool {
	if !c.Current(tok) {
		return false
	}
	opts := make([]string, 0, len(stations))
	for _, st := range stations {
		v := st.StationName
		if c.sel.DataType == CrossSection {
			v = st.StationID
		}
		if v == "" || slices.Contains(opts, string(v)) {
			continue
		}
		opts = append(opts, string(v))
	}
	c.opts.Stations = opts
	return true
}

// OnStationChange selects a station and asks for its available years. An
// empty station is a no-op and yields a nil intent.
func (c *Controller) OnStationChange(station string) (*Intent, error) {
	if station == "" {
		return nil, nil
	}
	c.sel.Station = station
	c.clearYears()
	c.opts.Years, c.opts.ComparisonYears = nil, nil
	c.invalidate(LevelPlot)

	q, err := BuildQuery(OpListYears, c.sel)
	if err != nil {
		return nil, err
	}
	return &Intent{Query: q, Token: c.Issue(LevelYears)}, nil
}

// ApplyYears fills either the single year picker or both comparison pickers,
// each with None first and selected.
func (c *Controller) ApplyYears(tok Token, years []string) bool {
	if !c.Current(tok) {
		return false
	}
	opts := make([]string, 0, len(years)+1)
	opts = append(opts, None)
	opts = append(opts, years...)
	if c.sel.DataType == CrossSection {
		c.opts.ComparisonYears = opts
		c.opts.Years = nil
		c.sel.Year1, c.sel.Year2 = None, None
	} else {
		c.opts.Years = opts
		c.opts.ComparisonYears = nil
		c.sel.Year = None
	}
	return true
}

// SetYear picks the single-year filter for a time-series plot.
func (c *Controller) SetYear(year string) error {
	if !c.sel.DataType.IsTimeSeries() {
		return Errorf(KindInvalidSelection, "a single year only applies to time-series data")
	}
	if err := checkOption(year, c.opts.Years); err != nil {
		return err
	}
	c.sel.Year = year
	c.invalidate(LevelPlot)
	return nil
}

// SetComparisonYears picks the two survey years of a cross-section plot.
// Either may be None.
func (c *Controller) SetComparisonYears(year1, year2 string) error {
	if c.sel.DataType != CrossSection {
		return Errorf(KindInvalidSelection, "comparison years only apply to %s data", CrossSection)
	}
	if err := checkOption(year1, c.opts.ComparisonYears); err != nil {
		return err
	}
	if err := checkOption(year2, c.opts.ComparisonYears); err != nil {
		return err
	}
	c.sel.Year1, c.sel.Year2 = year1, year2
	c.invalidate(LevelPlot)
	return nil
}

// SetDateRange sets the explicit range used when no single year is chosen.
func (c *Controller) SetDateRange(start, end string) error {
	if !c.sel.DataType.IsTimeSeries() {
		return Errorf(KindInvalidSelection, "a date range only applies to time-series data")
	}
	if !validDate(start) || !validDate(end) {
		return Errorf(KindInvalidSelection, "dates must use the YYYY-MM-DD format")
	}
	c.sel.StartDate, c.sel.EndDate = start, end
	c.invalidate(LevelPlot)
	return nil
}

// SetSedimentColumn picks one of the columns returned by the load step.
func (c *Controller) SetSedimentColumn(column string) error {
	if c.sel.DataType != Sediment {
		return Errorf(KindInvalidSelection, "a column only applies to %s data", Sediment)
	}
	if column != "" && !slices.Contains(c.opts.SedimentColumns, column) {
		return Errorf(KindInvalidSelection, "unknown sediment column %q", column)
	}
	c.sel.SedimentColumn = column
	c.invalidate(LevelPlot)
	return nil
}

func (c *Controller) clearStation() {
	c.sel.Station = ""
	c.clearYears()
}

func (c *Controller) clearYears() {
	c.sel.Year, c.sel.Year1, c.sel.Year2 = "", "", ""
}

func checkOption(v string, opts []string) error {
	if !IsSet(v) || slices.Contains(opts, v) {
		return nil
	}
	return Errorf(KindInvalidSelection, "year %q is not available for this station", v)
}
