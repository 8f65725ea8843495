package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/dailyerosion/depserver/internal/model"
	"github.com/dailyerosion/depserver/internal/store"
)

// fakeStore satisfies store.Store with canned responses.
type fakeStore struct {
	watershed    *model.Watershed
	watershedErr error
	summary      *model.RangeSummary
	summaryErr   error
	events       []model.LossEvent
	eventsErr    error
	years        []model.YearlySummary
	yearsErr     error
	months       []model.MonthlySummary
	monthsErr    error

	gotHUC      string
	gotScenario int
	gotStart    time.Time
	gotEnd      time.Time
	gotLimit    int
}

func (f *fakeStore) GetWatershed(_ context.Context, huc12 string, scenario int) (*model.Watershed, error) {
	f.gotHUC, f.gotScenario = huc12, scenario
	return f.watershed, f.watershedErr
}

func (f *fakeStore) SummarizeRange(_ context.Context, _ string, _ int, start, end time.Time) (*model.RangeSummary, error) {
	f.gotStart, f.gotEnd = start, end
	return f.summary, f.summaryErr
}

func (f *fakeStore) TopEvents(_ context.Context, _ string, _ int, limit int) ([]model.LossEvent, error) {
	f.gotLimit = limit
	return f.events, f.eventsErr
}

func (f *fakeStore) YearlySummaries(_ context.Context, huc string, scenario int) ([]model.YearlySummary, error) {
	f.gotHUC, f.gotScenario = huc, scenario
	return f.years, f.yearsErr
}

func (f *fakeStore) MonthlySummaries(_ context.Context, huc string, scenario int) ([]model.MonthlySummary, error) {
	f.gotHUC, f.gotScenario = huc, scenario
	return f.months, f.monthsErr
}

func (f *fakeStore) Ping(context.Context) error    { return nil }
func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

var _ store.Store = (*fakeStore)(nil)

func newTestHandler(t *testing.T, fs *fakeStore) *Handler {
	t.Helper()
	return NewHandler(NewReporter(fs, newTestRenderer(t)), zap.NewNop())
}

func happyStore() *fakeStore {
	return &fakeStore{
		watershed: &model.Watershed{HUC12: "070801050306", Name: "Lake Creek"},
		summary:   &model.RangeSummary{Precip: 25.4, Runoff: 12.7, Loss: 1.0, Delivery: 0.5},
		events: []model.LossEvent{
			{Date: time.Date(2019, 6, 12, 0, 0, 0, 0, time.UTC), Loss: 3.4},
		},
	}
}

func TestHandlerSummary(t *testing.T) {
	fs := happyStore()
	h := newTestHandler(t, fs)

	r := httptest.NewRequest("GET", "/report/summary?huc12=070801050306&date=2019-05-01&date2=2019-05-31", nil)
	w := httptest.NewRecorder()
	h.Summary(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Lake Creek")
	assert.Contains(t, w.Body.String(), "1.00 in")

	assert.Equal(t, "070801050306", fs.gotHUC)
	assert.Equal(t, time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC), fs.gotStart)
	assert.Equal(t, time.Date(2019, 5, 31, 0, 0, 0, 0, time.UTC), fs.gotEnd)
	assert.Equal(t, 10, fs.gotLimit)
}

func TestHandlerSummary_MissingParams(t *testing.T) {
	h := newTestHandler(t, happyStore())

	for _, target := range []string{
		"/report/summary",
		"/report/summary?huc12=070801050306",
		"/report/summary?date=2019-05-01",
		"/report/summary?huc12=070801050306&date=bogus",
	} {
		r := httptest.NewRequest("GET", target, nil)
		w := httptest.NewRecorder()
		h.Summary(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Empty(t, w.Body.String(), "bad requests carry no body: %s", target)
	}
}

func TestHandlerSummary_NoTownship(t *testing.T) {
	fs := happyStore()
	fs.watershed = nil
	fs.watershedErr = store.ErrWatershedNotFound
	h := newTestHandler(t, fs)

	r := httptest.NewRequest("GET", "/report/summary?huc12=000000000000&date=2019-05-01", nil)
	w := httptest.NewRecorder()
	h.Summary(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	// Exact legacy body, no trailing newline.
	assert.Equal(t, "No township found!", w.Body.String())
}

func TestHandlerSummary_AmbiguousIsAlsoNoTownship(t *testing.T) {
	fs := happyStore()
	fs.watershed = nil
	fs.watershedErr = store.ErrWatershedAmbiguous
	h := newTestHandler(t, fs)

	r := httptest.NewRequest("GET", "/report/summary?huc12=070801050306&date=2019-05-01", nil)
	w := httptest.NewRecorder()
	h.Summary(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No township found!", w.Body.String())
}

func TestHandlerSummary_WrappedSentinelStillMatches(t *testing.T) {
	fs := happyStore()
	fs.watershed = nil
	fs.watershedErr = eris.Wrap(store.ErrWatershedNotFound, "lookup failed")
	h := newTestHandler(t, fs)

	r := httptest.NewRequest("GET", "/report/summary?huc12=000000000000&date=2019-05-01", nil)
	w := httptest.NewRecorder()
	h.Summary(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No township found!", w.Body.String())
}

func TestHandlerSummary_DatabaseError(t *testing.T) {
	fs := happyStore()
	fs.summaryErr = eris.New("connection reset")
	h := newTestHandler(t, fs)

	r := httptest.NewRequest("GET", "/report/summary?huc12=070801050306&date=2019-05-01", nil)
	w := httptest.NewRecorder()
	h.Summary(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "Lake Creek", "no partial page on failure")
}

func TestHandlerSummary_EmptyEvents(t *testing.T) {
	fs := happyStore()
	fs.events = nil
	h := newTestHandler(t, fs)

	r := httptest.NewRequest("GET", "/report/summary?huc12=070801050306&date=2019-05-01", nil)
	w := httptest.NewRecorder()
	h.Summary(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Top events are missing!")
}

func TestHandlerYearly(t *testing.T) {
	fs := happyStore()
	fs.years = []model.YearlySummary{{Year: 2019, Precip: 38.2, EventDays: 41}}
	h := newTestHandler(t, fs)

	r := httptest.NewRequest("GET", "/report/yearly?huc12=07080105&scenario=0", nil)
	w := httptest.NewRecorder()
	h.Yearly(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Yearly Summary for 07080105")
	assert.Contains(t, w.Body.String(), "<td>2019</td>")
	assert.Equal(t, "07080105", fs.gotHUC)
}

func TestHandlerYearly_MissingHUC(t *testing.T) {
	h := newTestHandler(t, happyStore())

	r := httptest.NewRequest("GET", "/report/yearly", nil)
	w := httptest.NewRecorder()
	h.Yearly(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandlerYearly_TruncatesLongHUC(t *testing.T) {
	fs := happyStore()
	h := newTestHandler(t, fs)

	r := httptest.NewRequest("GET", "/report/yearly?huc12=070801050306TRAILER", nil)
	w := httptest.NewRecorder()
	h.Yearly(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "070801050306", fs.gotHUC)
}

func TestHandlerMonthly(t *testing.T) {
	fs := happyStore()
	fs.months = []model.MonthlySummary{{Year: 2019, Month: 5, Precip: 6.2}}
	h := newTestHandler(t, fs)

	r := httptest.NewRequest("GET", "/report/monthly?huc12=070801050306", nil)
	w := httptest.NewRecorder()
	h.Monthly(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Monthly Summary for 070801050306")
	assert.Contains(t, w.Body.String(), "<td>May</td>")
}

func TestHandlerMonthly_DatabaseError(t *testing.T) {
	fs := happyStore()
	fs.monthsErr = eris.New("disk full")
	h := newTestHandler(t, fs)

	r := httptest.NewRequest("GET", "/report/monthly?huc12=070801050306", nil)
	w := httptest.NewRecorder()
	h.Monthly(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
