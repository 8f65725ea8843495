package report

import (
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Unit conversions applied at render time. The store keeps millimeters and
// metric tons/hectare; the report presents inches and US tons/acre.
const (
	mmPerInch      = 25.4
	tonsAcrePerTha = 4.463
)

// Renderer formats report values and executes the embedded HTML templates.
// Locale, timezone, and clock are injected so rendering carries no process
// globals.
type Renderer struct {
	tmpl    *template.Template
	printer *message.Printer
	loc     *time.Location
	clock   clockwork.Clock
}

// NewRenderer parses the embedded templates and binds the output locale and
// timezone. A nil clock falls back to the real one.
func NewRenderer(locale, timezone string, clock clockwork.Clock) (*Renderer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, eris.Wrapf(err, "report: parse locale %q", locale)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "report: load timezone %q", timezone)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, eris.Wrap(err, "report: parse templates")
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Renderer{
		tmpl:    tmpl,
		printer: message.NewPrinter(tag),
		loc:     loc,
		clock:   clock,
	}, nil
}

// FormatDepth renders a millimeter water depth as inches.
func (r *Renderer) FormatDepth(mm float64) string {
	return r.printer.Sprintf("%.2f in", mm/mmPerInch)
}

// FormatMass renders a metric tons/hectare soil quantity as US tons/acre.
func (r *Renderer) FormatMass(tha float64) string {
	return r.printer.Sprintf("%.2f T/A", tha*tonsAcrePerTha)
}

// FormatConverted renders a value the store already converted to report units.
func (r *Renderer) FormatConverted(v float64) string {
	return r.printer.Sprintf("%.2f", v)
}

// FormatDays renders a day count, which the HUC8 rollup can make fractional.
func (r *Renderer) FormatDays(v float64) string {
	return r.printer.Sprintf("%.1f", v)
}

// FormatDate renders a date for display, e.g. "Jun 12, 2019".
func (r *Renderer) FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// Generated renders the page-footer timestamp in the configured timezone.
func (r *Renderer) Generated() string {
	return r.clock.Now().In(r.loc).Format("January 2, 2006 3:04 PM MST")
}

// Summary writes the summary fragment for the given view.
func (r *Renderer) Summary(w io.Writer, view SummaryView) error {
	if err := r.tmpl.ExecuteTemplate(w, "summary.tmpl", view); err != nil {
		return eris.Wrap(err, "report: render summary")
	}
	return nil
}

// Period writes the yearly or monthly summary table for the given view.
func (r *Renderer) Period(w io.Writer, view PeriodView) error {
	if err := r.tmpl.ExecuteTemplate(w, "period.tmpl", view); err != nil {
		return eris.Wrap(err, "report: render period table")
	}
	return nil
}
