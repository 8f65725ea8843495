package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyerosion/depserver/internal/model"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2019, 6, 20, 15, 4, 0, 0, time.UTC))
	r, err := NewRenderer("en", "UTC", clock)
	require.NoError(t, err)
	return r
}

func TestNewRenderer_BadLocale(t *testing.T) {
	_, err := NewRenderer("not a locale!", "UTC", nil)
	require.Error(t, err)
}

func TestNewRenderer_BadTimezone(t *testing.T) {
	_, err := NewRenderer("en", "Mars/Olympus", nil)
	require.Error(t, err)
}

func TestFormatDepth(t *testing.T) {
	r := newTestRenderer(t)

	assert.Equal(t, "1.00 in", r.FormatDepth(25.4))
	assert.Equal(t, "0.00 in", r.FormatDepth(0))
	assert.Equal(t, "2.50 in", r.FormatDepth(63.5))
}

func TestFormatMass(t *testing.T) {
	r := newTestRenderer(t)

	assert.Equal(t, "4.46 T/A", r.FormatMass(1.0))
	assert.Equal(t, "0.00 T/A", r.FormatMass(0))
}

func TestFormatDays(t *testing.T) {
	r := newTestRenderer(t)

	assert.Equal(t, "3.0", r.FormatDays(3))
	assert.Equal(t, "1.5", r.FormatDays(1.5))
}

func TestRenderSummary(t *testing.T) {
	r := newTestRenderer(t)

	ws := &model.Watershed{HUC12: "070801050306", Name: "Lake Creek"}
	sum := &model.RangeSummary{Precip: 50.8, Runoff: 25.4, Loss: 1.0, Delivery: 0.5}
	events := []model.LossEvent{
		{Date: time.Date(2019, 6, 12, 0, 0, 0, 0, time.UTC), Loss: 3.4},
		{Date: time.Date(2014, 5, 2, 0, 0, 0, 0, time.UTC), Loss: 2.1},
		{Date: time.Date(2012, 4, 9, 0, 0, 0, 0, time.UTC), Loss: 0.8},
	}
	p := Params{
		HUC12: "070801050306",
		Start: time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2019, 5, 31, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, r.Summary(&buf, r.buildSummaryView(ws, sum, events, p)))
	out := buf.String()

	assert.Contains(t, out, "<h3>Lake Creek</h3>")
	assert.Contains(t, out, `value="070801050306"`)
	assert.Contains(t, out, "2.00 in")
	assert.Contains(t, out, "1.00 in")
	assert.Contains(t, out, "4.46 T/A")
	assert.Contains(t, out, "2.23 T/A")
	assert.Contains(t, out, "May 1, 2019")
	assert.Contains(t, out, "May 31, 2019")
	// Event links carry calendar components for the setDate callback.
	assert.Contains(t, out, "setDate(2019, 6, 12)")
	assert.Contains(t, out, "Jun 12, 2019")
	assert.Contains(t, out, "viewEvents(")
	assert.Contains(t, out, "Generated June 20, 2019")
	assert.NotContains(t, out, "Top events are missing!")
}

func TestRenderSummary_EventRowsChunked(t *testing.T) {
	r := newTestRenderer(t)

	var events []model.LossEvent
	for i := 1; i <= 5; i++ {
		events = append(events, model.LossEvent{
			Date: time.Date(2019, 6, i, 0, 0, 0, 0, time.UTC),
			Loss: float64(6 - i),
		})
	}

	view := r.buildSummaryView(
		&model.Watershed{HUC12: "070801050306", Name: "Lake Creek"},
		&model.RangeSummary{}, events,
		Params{HUC12: "070801050306"},
	)

	// Five events lay out as two full rows plus one remainder.
	require.Len(t, view.EventRows, 3)
	assert.Len(t, view.EventRows[0], 2)
	assert.Len(t, view.EventRows[2], 1)
	assert.Equal(t, 1, view.EventRows[0][0].Rank)
	assert.Equal(t, 5, view.EventRows[2][0].Rank)
}

func TestRenderSummary_NoEvents(t *testing.T) {
	r := newTestRenderer(t)

	view := r.buildSummaryView(
		&model.Watershed{HUC12: "070801050306", Name: "Lake Creek"},
		&model.RangeSummary{}, nil,
		Params{HUC12: "070801050306"},
	)

	var buf bytes.Buffer
	require.NoError(t, r.Summary(&buf, view))
	assert.Contains(t, buf.String(), "Top events are missing!")
	assert.Contains(t, buf.String(), "0.00 in")
}

func TestRenderSummary_SingleDayRange(t *testing.T) {
	r := newTestRenderer(t)

	d := time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)
	view := r.buildSummaryView(
		&model.Watershed{HUC12: "070801050306", Name: "Lake Creek"},
		&model.RangeSummary{}, nil,
		Params{HUC12: "070801050306", Start: d, End: d},
	)

	var buf bytes.Buffer
	require.NoError(t, r.Summary(&buf, view))
	assert.NotContains(t, buf.String(), "through")
}

func TestRenderPeriod_Yearly(t *testing.T) {
	r := newTestRenderer(t)

	years := []model.YearlySummary{
		{Year: 2019, Precip: 38.21, Runoff: 9.1, Loss: 4.7, Delivery: 2.3, HeavyPrecipDays: 3, EventDays: 41},
		{Year: 2020, Precip: 29.5, Runoff: 6.8, Loss: 3.1, Delivery: 1.6, HeavyPrecipDays: 1, EventDays: 30},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Period(&buf, r.buildYearlyView("070801050306", years)))
	out := buf.String()

	assert.Contains(t, out, "Yearly Summary for 070801050306")
	assert.Contains(t, out, "<td>2019</td>")
	assert.Contains(t, out, "38.21")
	assert.Contains(t, out, "41.0")
	assert.NotContains(t, out, "<th>Month</th>")
}

func TestRenderPeriod_Monthly(t *testing.T) {
	r := newTestRenderer(t)

	months := []model.MonthlySummary{
		{Year: 2019, Month: 5, Precip: 6.2, Runoff: 1.4, Loss: 1.1, Delivery: 0.5, HeavyPrecipDays: 1, EventDays: 9},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Period(&buf, r.buildMonthlyView("07080105", months)))
	out := buf.String()

	assert.Contains(t, out, "Monthly Summary for 07080105")
	assert.Contains(t, out, "<th>Month</th>")
	assert.Contains(t, out, "<td>May</td>")
}

func TestRenderPeriod_Empty(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.Period(&buf, r.buildYearlyView("070801050306", nil)))
	assert.Contains(t, buf.String(), "No summary data found.")
}

func TestGenerated_UsesTimezone(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2019, 6, 20, 15, 4, 0, 0, time.UTC))
	r, err := NewRenderer("en", "America/Chicago", clock)
	require.NoError(t, err)

	// 15:04 UTC is 10:04 CDT.
	assert.Equal(t, "June 20, 2019 10:04 AM CDT", r.Generated())
}
