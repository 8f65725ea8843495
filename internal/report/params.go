// Package report assembles and renders the HUC12 soil-loss report pages.
package report

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const (
	hucLength  = 12
	dateLayout = "2006-01-02"
)

// Required-parameter failures. The request ends immediately with no body.
var (
	ErrMissingHUC12 = eris.New("missing required parameter huc12")
	ErrMissingDate  = eris.New("missing or unparseable required parameter date")
)

// Params are the validated inputs to the summary report.
type Params struct {
	HUC12    string
	Start    time.Time
	End      time.Time
	Scenario int
}

// ParseParams extracts and coerces the summary parameters from query or form
// fields. An over-long huc12 is truncated, never rejected; date2 is ignored
// unless it parses; a missing or non-numeric scenario coerces to 0.
func ParseParams(r *http.Request) (Params, error) {
	huc := r.FormValue("huc12")
	if huc == "" {
		return Params{}, ErrMissingHUC12
	}
	huc = TruncateHUC(huc)

	start, err := time.Parse(dateLayout, r.FormValue("date"))
	if err != nil {
		return Params{}, ErrMissingDate
	}

	// Absent or unparseable date2 collapses the range to the single date.
	end := start
	if d2, err := time.Parse(dateLayout, r.FormValue("date2")); err == nil {
		end = d2
	}

	return Params{
		HUC12:    huc,
		Start:    start,
		End:      end,
		Scenario: ParseScenario(r),
	}, nil
}

// ParseScenario coerces the scenario field to an integer, defaulting to 0.
func ParseScenario(r *http.Request) int {
	scenario, err := strconv.Atoi(r.FormValue("scenario"))
	if err != nil {
		return 0
	}
	return scenario
}

// TruncateHUC clips an over-long code to the 12-character HUC12 length.
// Shorter codes (notably 8-character HUC8 prefixes) pass through untouched.
func TruncateHUC(huc string) string {
	if len(huc) > hucLength {
		return huc[:hucLength]
	}
	return huc
}
