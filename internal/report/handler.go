package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/dailyerosion/depserver/internal/store"
)

// noTownshipBody is the exact legacy body emitted when the watershed lookup
// does not match exactly one row. Downstream consumers match on it verbatim,
// so it carries no trailing newline.
const noTownshipBody = "No township found!"

// Handler exposes the report pages over HTTP.
type Handler struct {
	reporter *Reporter
	log      *zap.Logger
}

// NewHandler wires a Reporter to HTTP. A nil logger falls back to the global.
func NewHandler(rp *Reporter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.L()
	}
	return &Handler{reporter: rp, log: log}
}

// Summary serves the HUC12 summary fragment.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	p, err := ParseParams(r)
	if err != nil {
		// Required parameter missing: end the request with an empty body.
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Render to a buffer so a mid-render failure never leaks a partial page.
	var buf bytes.Buffer
	err = h.reporter.Summary(r.Context(), &buf, p)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	case errors.Is(err, store.ErrWatershedNotFound), errors.Is(err, store.ErrWatershedAmbiguous):
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(noTownshipBody))
	default:
		h.log.Error("summary report failed",
			zap.String("huc12", p.HUC12),
			zap.Int("scenario", p.Scenario),
			zap.Error(err))
		http.Error(w, "database error", http.StatusInternalServerError)
	}
}

// Yearly serves the per-year aggregate table.
func (h *Handler) Yearly(w http.ResponseWriter, r *http.Request) {
	h.period(w, r, h.reporter.Yearly, "yearly report failed")
}

// Monthly serves the per-month aggregate table.
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	h.period(w, r, h.reporter.Monthly, "monthly report failed")
}

func (h *Handler) period(w http.ResponseWriter, r *http.Request,
	run func(context.Context, io.Writer, string, int) error, logMsg string,
) {
	huc := r.FormValue("huc12")
	if huc == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	huc = TruncateHUC(huc)
	scenario := ParseScenario(r)

	var buf bytes.Buffer
	if err := run(r.Context(), &buf, huc, scenario); err != nil {
		h.log.Error(logMsg,
			zap.String("huc", huc),
			zap.Int("scenario", scenario),
			zap.Error(err))
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
