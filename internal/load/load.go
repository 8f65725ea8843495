// Package load parses the CSV interchange files produced by the upstream
// modeling run into domain rows for bulk loading.
package load

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/dailyerosion/depserver/internal/model"
)

const dateLayout = "2006-01-02"

// resultHeader is the required column order for a results CSV.
var resultHeader = []string{
	"huc_12", "scenario", "valid",
	"qc_precip", "avg_runoff", "avg_loss", "avg_delivery",
}

// watershedHeader is the required column order for a watersheds CSV.
var watershedHeader = []string{"huc_12", "name"}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return eris.Errorf("load: expected %d columns, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			return eris.Errorf("load: column %d: expected %q, got %q", i+1, want[i], got[i])
		}
	}
	return nil
}

// ParseResults reads a daily results CSV. The header row is mandatory and
// must match resultHeader exactly; value columns are metric, as modeled.
func ParseResults(r io.Reader) ([]model.DailyResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(resultHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "load: read results header")
	}
	if err := checkHeader(header, resultHeader); err != nil {
		return nil, err
	}

	var out []model.DailyResult
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "load: results line %d", line)
		}

		scenario, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, eris.Wrapf(err, "load: results line %d: scenario", line)
		}
		valid, err := time.Parse(dateLayout, rec[2])
		if err != nil {
			return nil, eris.Wrapf(err, "load: results line %d: valid", line)
		}

		var vals [4]float64
		for i, field := range rec[3:] {
			vals[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "load: results line %d: %s", line, resultHeader[3+i])
			}
		}

		out = append(out, model.DailyResult{
			HUC12:       rec[0],
			Scenario:    scenario,
			Valid:       valid,
			QCPrecip:    vals[0],
			AvgRunoff:   vals[1],
			AvgLoss:     vals[2],
			AvgDelivery: vals[3],
		})
	}
	return out, nil
}

// ParseWatersheds reads a huc12 lookup CSV of codes and display names.
func ParseWatersheds(r io.Reader) ([]model.Watershed, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(watershedHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "load: read watersheds header")
	}
	if err := checkHeader(header, watershedHeader); err != nil {
		return nil, err
	}

	var out []model.Watershed
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "load: watersheds line %d", line)
		}
		if rec[0] == "" || rec[1] == "" {
			return nil, eris.Errorf("load: watersheds line %d: empty field", line)
		}
		out = append(out, model.Watershed{HUC12: rec[0], Name: rec[1]})
	}
	return out, nil
}
