// Command mockbackend serves a synthetic hydrological dataset over the same
// endpoints as the data backend, so the explorer can be run and demoed
// without the workbook archive.
//
// Usage:
//
//	go run ./cmd/mockbackend --addr :5000
//	BACKEND_URL=http://127.0.0.1:5000 go run ./cmd/explorer
package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
)

func main() {
	flags := pflag.NewFlagSet("mockbackend", pflag.ExitOnError)
	var addr string
	flags.StringVarP(&addr, "addr", "a", ":5000", "address to listen on")
	flags.Parse(os.Args[1:]) //nolint:errcheck // ExitOnError

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	srv := &http.Server{
		Addr:              addr,
		Handler:           newBackend(logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("mock backend listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("mock backend stopped", "error", err)
		os.Exit(1)
	}
}

// backend holds the most recently loaded dataset, like the real backend's
// process-wide preload.
type backend struct {
	logger *slog.Logger

	mu       sync.RWMutex
	dataType domain.DataType
	data     dataset
}

func newBackend(logger *slog.Logger) *backend {
	return &backend{logger: logger}
}

func (b *backend) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	engine.GET(domain.EndpointLoadData, b.handleLoadData)
	engine.GET(domain.EndpointStations, b.handleStations)
	engine.GET(domain.EndpointAvailableYears, b.handleYears)
	engine.GET(domain.EndpointPlotTimeSeries, b.handleTimeSeries)
	engine.GET(domain.EndpointPlotCrossSection, b.handleCrossSection)
	engine.GET(domain.EndpointDownloadData, b.handleDownload)
	return engine
}

func (b *backend) snapshot() (domain.DataType, dataset) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dataType, b.data
}

func fail(c *gin.Context, status int, format string, args ...any) {
	c.JSON(status, gin.H{"error": fmt.Sprintf(format, args...)})
}

func (b *backend) handleLoadData(c *gin.Context) {
	raw := c.Query("data_type")
	if raw == "" {
		fail(c, http.StatusBadRequest, "No data type provided.")
		return
	}
	t, err := domain.ParseDataType(raw)
	if err != nil {
		fail(c, http.StatusNotFound, "Folder for '%s' does not exist.", raw)
		return
	}

	data := buildDataset(t, c.Query("water_level_type"))
	b.mu.Lock()
	b.dataType, b.data = t, data
	b.mu.Unlock()
	b.logger.Info("dataset loaded", "data_type", t, "rows", len(data.rows))

	resp := gin.H{"rivers": data.rivers()}
	if t == domain.Sediment {
		resp["sediment_columns"] = data.columns
	}
	c.JSON(http.StatusOK, resp)
}

func (b *backend) handleStations(c *gin.Context) {
	_, data := b.snapshot()
	river := c.Query("river")
	rows := data.filter(func(r row) bool {
		return !domain.IsSet(river) || r.station.River == river
	})
	if len(rows) == 0 {
		fail(c, http.StatusNotFound, "No stations found for river '%s'.", river)
		return
	}

	crossSection := c.Query("data_type") == string(domain.CrossSection)
	seen := map[string]bool{}
	stations := []gin.H{}
	for _, r := range rows {
		st := r.station
		if seen[st.ID] {
			continue
		}
		seen[st.ID] = true
		rec := gin.H{"Station_ID": st.ID, "Latitude": st.Lat, "Longitude": st.Lon, "River": st.River}
		if !crossSection {
			rec["Station_Name"] = st.Name
		}
		if st.Type != "" {
			rec["Station_Type"] = st.Type
		}
		stations = append(stations, rec)
	}
	c.JSON(http.StatusOK, gin.H{"stations": stations})
}

func (b *backend) handleYears(c *gin.Context) {
	id := c.Query("station_id")
	if id == "" {
		fail(c, http.StatusBadRequest, "No station ID provided.")
		return
	}
	_, data := b.snapshot()
	rows := data.filter(func(r row) bool { return r.station.ID == id || r.station.Name == id })
	if len(rows) == 0 {
		fail(c, http.StatusNotFound, "No data found for the selected station.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": years(rows)})
}

// dateFilter applies the year and date-range parameters shared by the plot
// and download endpoints.
func dateFilter(c *gin.Context) (func(row) bool, error) {
	year := 0
	if y := c.Query("year"); domain.IsSet(y) {
		var err error
		if year, err = strconv.Atoi(y); err != nil {
			return nil, errors.New("Invalid year format.")
		}
	}
	var start, end time.Time
	if s := c.Query("start_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, errors.New("Invalid date format.")
		}
		start = t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, errors.New("Invalid date format.")
		}
		end = t
	}
	return func(r row) bool {
		if year != 0 && r.date.Year() != year {
			return false
		}
		if !start.IsZero() && r.date.Before(start) {
			return false
		}
		return end.IsZero() || !r.date.After(end)
	}, nil
}

func (b *backend) handleTimeSeries(c *gin.Context) {
	name := c.Query("station")
	if name == "" {
		fail(c, http.StatusBadRequest, "Station not provided.")
		return
	}
	keep, err := dateFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "%s", err.Error())
		return
	}
	_, data := b.snapshot()
	rows := data.filter(func(r row) bool { return r.station.Name == name && keep(r) })
	if len(rows) == 0 {
		fail(c, http.StatusNotFound, "No data found for the selected station and date range.")
		return
	}

	column := c.Query("column")
	if column == "" || c.Query("data_type") != string(domain.Sediment) {
		if len(data.columns) == 0 {
			fail(c, http.StatusNotFound, "No valid data column found for data type '%s'.", c.Query("data_type"))
			return
		}
		column = data.columns[0]
	}

	plot := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		plot = append(plot, gin.H{domain.DateKey: r.date.Format(http.TimeFormat), column: r.values[column]})
	}
	c.JSON(http.StatusOK, gin.H{"plot_data": plot})
}

func (b *backend) handleCrossSection(c *gin.Context) {
	id := c.Query("station_id")
	if id == "" {
		fail(c, http.StatusBadRequest, "Station ID not provided.")
		return
	}
	_, data := b.snapshot()

	resp := gin.H{}
	for _, key := range []string{"year1", "year2"} {
		raw := c.Query(key)
		if !domain.IsSet(raw) {
			continue
		}
		year, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid %s value: %s", key, raw)
			return
		}
		rows := data.filter(func(r row) bool { return r.station.ID == id && r.date.Year() == year })
		if len(rows) == 0 {
			continue
		}
		points := make([]gin.H, 0, len(rows))
		for _, r := range rows {
			points = append(points, gin.H{"Distance": r.distance, "RL": r.rl})
		}
		resp[key] = points
	}
	if len(resp) == 0 {
		fail(c, http.StatusNotFound, "No data found for the selected years.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (b *backend) handleDownload(c *gin.Context) {
	selected := c.Query("station")
	if selected == "" {
		selected = c.Query("station_id")
	}
	if selected == "" {
		fail(c, http.StatusBadRequest, "No station selected.")
		return
	}
	keep, err := dateFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "%s", err.Error())
		return
	}
	t, data := b.snapshot()
	rows := data.filter(func(r row) bool {
		id := r.station.Name
		if t == domain.CrossSection {
			id = r.station.ID
		}
		return id == selected && keep(r)
	})
	if len(rows) == 0 {
		fail(c, http.StatusNotFound, "No data available for the selected criteria.")
		return
	}

	body, err := encodeCSV(t, data.columns, rows)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to export data.")
		return
	}
	c.Header("Content-Disposition", "attachment;filename="+domain.DownloadFilename)
	c.Data(http.StatusOK, "text/csv", body)
}

func encodeCSV(t domain.DataType, columns []string, rows []row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"River", "Station_ID", "Station_Name", "Date"}
	if t == domain.CrossSection {
		header = []string{"River", "Station_ID", "Date", "Distance", "RL"}
	} else {
		header = append(header, columns...)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range rows {
		date := r.date.Format(time.DateTime)
		var rec []string
		if t == domain.CrossSection {
			rec = []string{r.station.River, r.station.ID, date,
				strconv.FormatFloat(r.distance, 'f', -1, 64), strconv.FormatFloat(r.rl, 'f', -1, 64)}
		} else {
			rec = []string{r.station.River, r.station.ID, r.station.Name, date}
			for _, col := range columns {
				v := ""
				if p := r.values[col]; p != nil {
					v = strconv.FormatFloat(*p, 'f', -1, 64)
				}
				rec = append(rec, v)
			}
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
