// Command chartcheck normalizes a saved backend response offline and prints
// the chart (or map) configuration the dashboard would draw for it. It is
// meant for checking new backend payloads without running the service.
//
// Usage:
//
//	go run ./cmd/chartcheck -t Discharge -s Chatara -i plot.json
//	go run ./cmd/chartcheck -t "Cross section" -s 690 --year1 2015 --year2 2019 -i xs.json -f html > xs.html
//	go run ./cmd/chartcheck -t Discharge --map -i stations.json
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/couchcryptid/hydro-explorer-service/internal/adapter/echarts"
	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	flags := pflag.NewFlagSet("chartcheck", pflag.ContinueOnError)
	var (
		dataType, station, subtype, column string
		year1, year2, input, format        string
		showMap                            bool
	)
	flags.StringVarP(&dataType, "data-type", "t", "", "data type of the payload (required)")
	flags.StringVarP(&station, "station", "s", "", "station name, or station ID for cross sections")
	flags.StringVar(&subtype, "water-level-type", "", "water level regime (Hourly switches to hourly axes)")
	flags.StringVar(&column, "column", "", "sediment column, when one was chosen")
	flags.StringVar(&year1, "year1", domain.None, "first comparison year (cross sections)")
	flags.StringVar(&year2, "year2", domain.None, "second comparison year (cross sections)")
	flags.StringVarP(&input, "input", "i", "-", "payload file, - for stdin")
	flags.StringVarP(&format, "format", "f", "json", "output format: json or html")
	flags.BoolVar(&showMap, "map", false, "treat the payload as a station list and print the map configuration")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if dataType == "" {
		return errors.New("--data-type is required")
	}
	t, err := domain.ParseDataType(dataType)
	if err != nil {
		return err
	}

	raw, err := readInput(input, stdin)
	if err != nil {
		return err
	}

	if showMap {
		stations, err := domain.DecodeStations(raw)
		if err != nil {
			return err
		}
		cfg, err := domain.BuildMapConfig(t, stations, domain.MapOptions{})
		if err != nil {
			return err
		}
		return writeJSON(stdout, cfg)
	}

	sel := domain.Selection{
		DataType:          t,
		WaterLevelSubtype: subtype,
		Station:           station,
		Year1:             year1,
		Year2:             year2,
		SedimentColumn:    column,
	}
	chart, err := domain.Normalize(t, raw, sel)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return writeJSON(stdout, domain.BuildChartConfig(chart))
	case "html":
		return echarts.Render(stdout, fmt.Sprintf("%s - %s", t, station), chart, echarts.DefaultOptions())
	default:
		return fmt.Errorf("unknown format %q, want json or html", format)
	}
}

func readInput(path string, stdin io.Reader) (json.RawMessage, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
