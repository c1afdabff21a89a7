package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
	"github.com/couchcryptid/hydro-explorer-service/internal/observability"
)

// ErrSuperseded is returned when a newer request of the same cascade level was
// issued while this one was in flight. The newer request owns the outcome.
var ErrSuperseded = errors.New("superseded by a newer request")

// Backend fetches from the hydrological data backend.
type Backend interface {
	FetchJSON(ctx context.Context, q domain.Query) (json.RawMessage, error)
	FetchFile(ctx context.Context, q domain.Query) ([]byte, error)
}

// Recorder receives one event per user action. Implementations must not block.
type Recorder interface {
	Record(event domain.ActivityEvent)
}

type nopRecorder struct{}

func (nopRecorder) Record(domain.ActivityEvent) {}

// Deps are the collaborators shared by every session.
type Deps struct {
	Backend    Backend
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	Recorder   Recorder
	MapOptions domain.MapOptions
}

// RenderedChart is the content of a session's chart slot.
type RenderedChart struct {
	Title      string
	Chart      domain.Chart
	Config     domain.ChartConfig
	RenderedAt time.Time
}

// State is a snapshot of what the browser needs to draw the pickers.
type State struct {
	SessionID  string            `json:"session_id"`
	Selection  domain.Selection  `json:"selection"`
	Visibility domain.Visibility `json:"visibility"`
	Options    domain.Options    `json:"options"`
	Phase      domain.Phase      `json:"phase"`
	HasChart   bool              `json:"has_chart"`
	HasMap     bool              `json:"has_map"`
}

// Session owns one browser tab's selection and its two rendering slots.
// Backend calls run without holding the lock; their results are applied only
// if no newer request of the same level was issued meanwhile.
type Session struct {
	id        string
	createdAt time.Time

	backend  Backend
	logger   *slog.Logger
	metrics  *observability.Metrics
	recorder Recorder
	mapOpts  domain.MapOptions

	mu    sync.Mutex
	ctrl  *domain.Controller
	rev   uint64 // bumped on every selection change
	chart *Slot[RenderedChart]
	mapv  *Slot[domain.MapConfig]
}

// NewSession creates a session with nothing selected.
func NewSession(id string, deps Deps) *Session {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	logger := deps.Logger.With("session_id", id)
	s := &Session{
		id:        id,
		createdAt: domain.Now(),
		backend:   deps.Backend,
		logger:    logger,
		metrics:   deps.Metrics,
		recorder:  recorder,
		mapOpts:   deps.MapOptions,
		ctrl:      domain.NewController(),
	}
	s.chart = NewSlot(func(c RenderedChart) {
		logger.Debug("chart released", "title", c.Title)
	})
	s.mapv = NewSlot(func(m domain.MapConfig) {
		logger.Debug("map released", "markers", len(m.Markers))
	})
	return s
}

func (s *Session) ID() string           { return s.id }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	_, hasChart := s.chart.Current()
	_, hasMap := s.mapv.Current()
	return State{
		SessionID:  s.id,
		Selection:  s.ctrl.Selection(),
		Visibility: s.ctrl.Visibility(),
		Options:    s.ctrl.Options(),
		Phase:      s.ctrl.Phase(),
		HasChart:   hasChart,
		HasMap:     hasMap,
	}
}

// ChangeDataType switches the data type, resetting everything below it and
// closing the rendered chart and map.
func (s *Session) ChangeDataType(value string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := domain.ParseDataType(value)
	if err != nil {
		return s.stateLocked(), s.done(domain.ActionDataType, err)
	}
	s.ctrl.OnDataTypeChange(t)
	s.rev++
	s.chart.Release()
	s.mapv.Release()
	s.logger.Debug("data type changed", "data_type", t)
	return s.stateLocked(), s.done(domain.ActionDataType, nil)
}

// ChangeWaterLevelType picks the water-level sub-folder for the next load.
func (s *Session) ChangeWaterLevelType(subtype string) (State, error) {
	return s.set(domain.ActionWaterLevelType, func(c *domain.Controller) error {
		return c.SetWaterLevelSubtype(subtype)
	})
}

// SetYear picks the single-year filter.
func (s *Session) SetYear(year string) (State, error) {
	return s.set(domain.ActionYear, func(c *domain.Controller) error {
		return c.SetYear(year)
	})
}

// SetComparisonYears picks the two cross-section survey years.
func (s *Session) SetComparisonYears(year1, year2 string) (State, error) {
	return s.set(domain.ActionComparison, func(c *domain.Controller) error {
		return c.SetComparisonYears(year1, year2)
	})
}

// SetDateRange sets the explicit date range.
func (s *Session) SetDateRange(start, end string) (State, error) {
	return s.set(domain.ActionDateRange, func(c *domain.Controller) error {
		return c.SetDateRange(start, end)
	})
}

// SetSedimentColumn picks the sediment column to plot.
func (s *Session) SetSedimentColumn(column string) (State, error) {
	return s.set(domain.ActionSedimentColumn, func(c *domain.Controller) error {
		return c.SetSedimentColumn(column)
	})
}

func (s *Session) set(action domain.Action, apply func(*domain.Controller) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := apply(s.ctrl); err != nil {
		return s.stateLocked(), s.done(action, err)
	}
	s.rev++
	return s.stateLocked(), s.done(action, nil)
}

// Load fetches the rivers (and sediment columns) for the chosen data type.
func (s *Session) Load(ctx context.Context) (State, error) {
	return s.cascade(ctx, domain.ActionLoad,
		func(c *domain.Controller) (*domain.Intent, error) {
			intent, err := c.BeginLoad()
			if err != nil {
				return nil, err
			}
			return &intent, nil
		},
		func(c *domain.Controller, tok domain.Token, raw json.RawMessage) error {
			res, err := domain.DecodeLoadResult(raw)
			if err != nil {
				return err
			}
			c.ApplyLoad(tok, res)
			return nil
		})
}

// ChangeRiver selects a river and fetches its stations.
func (s *Session) ChangeRiver(ctx context.Context, river string) (State, error) {
	return s.cascade(ctx, domain.ActionRiver,
		func(c *domain.Controller) (*domain.Intent, error) {
			return c.OnRiverChange(river)
		},
		func(c *domain.Controller, tok domain.Token, raw json.RawMessage) error {
			stations, err := domain.DecodeStations(raw)
			if err != nil {
				return err
			}
			c.ApplyStations(tok, stations)
			return nil
		})
}

// ChangeStation selects a station and fetches its available years.
func (s *Session) ChangeStation(ctx context.Context, station string) (State, error) {
	return s.cascade(ctx, domain.ActionStation,
		func(c *domain.Controller) (*domain.Intent, error) {
			return c.OnStationChange(station)
		},
		func(c *domain.Controller, tok domain.Token, raw json.RawMessage) error {
			years, err := domain.DecodeYears(raw)
			if err != nil {
				return err
			}
			c.ApplyYears(tok, years)
			return nil
		})
}

// cascade runs one fetch-then-apply cycle. On failure the selection returns to
// where it was before the action, unless another action changed it meanwhile.
func (s *Session) cascade(
	ctx context.Context,
	action domain.Action,
	begin func(*domain.Controller) (*domain.Intent, error),
	apply func(*domain.Controller, domain.Token, json.RawMessage) error,
) (State, error) {
	s.mu.Lock()
	checkpoint := s.ctrl.Save()
	intent, err := begin(s.ctrl)
	if err != nil || intent == nil {
		if err != nil {
			s.ctrl.Restore(checkpoint)
		}
		defer s.mu.Unlock()
		return s.stateLocked(), s.done(action, err)
	}
	s.rev++
	rev := s.rev
	s.mu.Unlock()

	raw, err := s.backend.FetchJSON(ctx, intent.Query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ctrl.Current(intent.Token) {
		return s.stateLocked(), s.stale(action, intent.Token)
	}
	if err == nil {
		err = apply(s.ctrl, intent.Token, raw)
	}
	if err != nil && s.rev == rev {
		s.ctrl.Restore(checkpoint)
	}
	return s.stateLocked(), s.done(action, err)
}

// Plot fetches and normalizes the plotting payload for the current selection
// and swaps the result into the chart slot. On any failure the previous chart
// stays in place.
func (s *Session) Plot(ctx context.Context) (domain.ChartConfig, error) {
	s.mu.Lock()
	sel := s.ctrl.Selection()
	q, err := domain.BuildQuery(domain.OpPlot, sel)
	if err != nil {
		defer s.mu.Unlock()
		return domain.ChartConfig{}, s.done(domain.ActionPlot, err)
	}
	tok := s.ctrl.Issue(domain.LevelPlot)
	s.mu.Unlock()

	var chart domain.Chart
	raw, err := s.backend.FetchJSON(ctx, q)
	if err == nil {
		chart, err = domain.Normalize(sel.DataType, raw, sel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ctrl.Current(tok) {
		return domain.ChartConfig{}, s.stale(domain.ActionPlot, tok)
	}
	if err != nil {
		return domain.ChartConfig{}, s.done(domain.ActionPlot, err)
	}

	cfg := domain.BuildChartConfig(chart)
	s.chart.Replace(RenderedChart{
		Title:      chartTitle(sel),
		Chart:      chart,
		Config:     cfg,
		RenderedAt: domain.Now(),
	})
	s.metrics.ChartsRendered.Inc()
	s.logger.Info("chart rendered", "data_type", sel.DataType, "station", sel.Station, "series", len(chart.Series))
	return cfg, s.done(domain.ActionPlot, nil)
}

// Chart returns the chart currently in the slot.
func (s *Session) Chart() (RenderedChart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chart.Current()
}

// ShowMap fetches the stations of the chosen river and swaps a station map
// into the map slot. An empty station list leaves the slot untouched.
func (s *Session) ShowMap(ctx context.Context) (domain.MapConfig, error) {
	s.mu.Lock()
	sel := s.ctrl.Selection()
	if sel.River == "" {
		defer s.mu.Unlock()
		return domain.MapConfig{}, s.done(domain.ActionMap, domain.Errorf(domain.KindInvalidSelection, "please select a river"))
	}
	q, err := domain.BuildQuery(domain.OpListStations, sel)
	if err != nil {
		defer s.mu.Unlock()
		return domain.MapConfig{}, s.done(domain.ActionMap, err)
	}
	tok := s.ctrl.Issue(domain.LevelMap)
	s.mu.Unlock()

	var cfg domain.MapConfig
	raw, err := s.backend.FetchJSON(ctx, q)
	if err == nil {
		var stations []domain.StationRecord
		if stations, err = domain.DecodeStations(raw); err == nil {
			cfg, err = domain.BuildMapConfig(sel.DataType, stations, s.mapOpts)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ctrl.Current(tok) {
		return domain.MapConfig{}, s.stale(domain.ActionMap, tok)
	}
	if err != nil {
		return domain.MapConfig{}, s.done(domain.ActionMap, err)
	}

	s.mapv.Replace(cfg)
	s.metrics.MapsRendered.Inc()
	s.logger.Info("map rendered", "river", sel.River, "markers", len(cfg.Markers))
	return cfg, s.done(domain.ActionMap, nil)
}

// Download fetches the CSV export for the current selection.
func (s *Session) Download(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	q, err := domain.BuildQuery(domain.OpDownload, s.ctrl.Selection())
	if err != nil {
		defer s.mu.Unlock()
		return nil, s.done(domain.ActionDownload, err)
	}
	s.mu.Unlock()

	data, err := s.backend.FetchFile(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return nil, s.done(domain.ActionDownload, err)
	}
	s.metrics.Downloads.Inc()
	return data, s.done(domain.ActionDownload, nil)
}

// Close releases both rendering slots.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chart.Release()
	s.mapv.Release()
	s.recorder.Record(domain.NewActivityEvent(s.id, domain.ActionSessionClosed, s.ctrl.Selection(), nil))
}

// done counts and logs a failed action and reports the action on the
// activity feed. It must be called with the lock held.
func (s *Session) done(action domain.Action, err error) error {
	if err != nil {
		category := string(domain.KindOf(err))
		if category == "" {
			category = "Internal"
		}
		s.metrics.ActionErrors.WithLabelValues(string(action), category).Inc()
		s.logger.Warn("action failed", "action", action, "category", category, "error", err)
	}
	s.recorder.Record(domain.NewActivityEvent(s.id, action, s.ctrl.Selection(), err))
	return err
}

func (s *Session) stale(action domain.Action, tok domain.Token) error {
	s.metrics.StaleResponses.WithLabelValues(tok.Level.String()).Inc()
	s.logger.Debug("discarding stale response", "action", action, "level", tok.Level, "generation", tok.Gen)
	return fmt.Errorf("%s: %w", action, ErrSuperseded)
}

func chartTitle(sel domain.Selection) string {
	return fmt.Sprintf("%s - %s", sel.DataType, sel.Station)
}
